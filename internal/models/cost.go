package models

import "time"

// CostUsage is one recorded LLM call in the cost ledger.
type CostUsage struct {
	ID           string    `json:"id"`
	Model        string    `json:"model"`
	Operation    string    `json:"operation"`
	InputTokens  int64     `json:"input_tokens"`
	OutputTokens int64     `json:"output_tokens"`
	Cost         string    `json:"cost"` // decimal string, USD
	CreatedAt    time.Time `json:"created_at"`
}

// CostSummary aggregates the ledger over a period.
type CostSummary struct {
	Since        time.Time `json:"since"`
	CallCount    int       `json:"call_count"`
	InputTokens  int64     `json:"input_tokens"`
	OutputTokens int64     `json:"output_tokens"`
	TotalCost    string    `json:"total_cost"`
}
