package models

import "time"

// Transaction represents a single banking transaction. Immutable once ingested.
// Sign convention: negative amount = outflow/purchase, positive = inflow/payment.
type Transaction struct {
	TransactionID    string    `json:"transaction_id"`
	AccountID        string    `json:"account_id"`
	CustomerID       string    `json:"customer_id"`
	Date             time.Time `json:"date"`
	Amount           float64   `json:"amount"`
	MerchantName     string    `json:"merchant_name,omitempty"`
	CategoryPrimary  string    `json:"category_primary,omitempty"`
	CategoryDetailed string    `json:"category_detailed,omitempty"`
}
