package models

// Customer represents a banked customer in the system
type Customer struct {
	CustomerID string `json:"customer_id"` // canonical form: CUST + 6 zero-padded digits
	Name       string `json:"name"`
	Email      string `json:"email"`
	Persona    string `json:"persona"` // assigned upstream, never classified here
	CreatedAt  string `json:"created_at"`
}
