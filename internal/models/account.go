package models

// Account types as stored in the accounts table.
const (
	AccountTypeDepository = "depository"
	AccountTypeCredit     = "credit"
)

type Account struct {
	AccountID        string  `json:"account_id"`
	CustomerID       string  `json:"customer_id"`
	Type             string  `json:"type"`
	Subtype          string  `json:"subtype"`
	Name             string  `json:"name"`
	CurrentBalance   float64 `json:"current_balance"`
	AvailableBalance float64 `json:"available_balance"`
	CreditLimit      float64 `json:"credit_limit"`
	Currency         string  `json:"currency"`
}
