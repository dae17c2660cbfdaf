package models

import "time"

// Liability represents a credit-card liability record attached to a credit account.
type Liability struct {
	AccountID            string    `json:"account_id"`
	CustomerID           string    `json:"customer_id"`
	LastStatementBalance float64   `json:"last_statement_balance"`
	APR                  float64   `json:"apr"`
	MinimumPayment       float64   `json:"minimum_payment"`
	NextPaymentDueDate   time.Time `json:"next_payment_due_date"`
	IsOverdue            bool      `json:"is_overdue"`
}
