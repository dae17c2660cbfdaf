package models

import "time"

// Cadence is the inferred repeating interval of a recurring charge.
type Cadence string

const (
	CadenceWeekly    Cadence = "weekly"
	CadenceBiweekly  Cadence = "biweekly"
	CadenceMonthly   Cadence = "monthly"
	CadenceQuarterly Cadence = "quarterly"
	CadenceIrregular Cadence = "irregular"
)

// PeriodDays returns the canonical period length for a cadence, or 0 for irregular.
func (c Cadence) PeriodDays() int {
	switch c {
	case CadenceWeekly:
		return 7
	case CadenceBiweekly:
		return 14
	case CadenceMonthly:
		return 30
	case CadenceQuarterly:
		return 90
	default:
		return 0
	}
}

// RecurringCharge is a detected subscription-like merchant group. Derived on
// each detection call, never persisted. Always has at least two contributing
// transactions; MonthlyRecurringSpend is always derived from the other fields.
type RecurringCharge struct {
	Merchant              string    `json:"merchant"`
	Cadence               Cadence   `json:"cadence"`
	AverageAmount         float64   `json:"average_amount"`
	MonthlyRecurringSpend float64   `json:"monthly_recurring_spend"`
	TransactionCount      int       `json:"transaction_count"`
	FirstTransactionDate  time.Time `json:"first_transaction_date"`
	LastTransactionDate   time.Time `json:"last_transaction_date"`
	IsActive              bool      `json:"is_active"`
	ConfidenceScore       float64   `json:"confidence_score"`
}

// SubscriptionsResult is the subscriptions handler payload: detected groups
// plus aggregate metrics over the lookback window.
type SubscriptionsResult struct {
	Type               string            `json:"type"`
	CustomerID         string            `json:"customer_id"`
	WindowDays         int               `json:"window_days"`
	Subscriptions      []RecurringCharge `json:"subscriptions"`
	SubscriptionCount  int               `json:"subscription_count"`
	ActiveCount        int               `json:"active_count"`
	TotalMonthlySpend  float64           `json:"total_monthly_spend"`
	ActiveMonthlySpend float64           `json:"active_monthly_spend"`
	SubscriptionShare  float64           `json:"subscription_share_pct"`
}
