package models

import "time"

// Result type discriminators carried in every handler payload.
const (
	ResultTypeCustomerList     = "customer_list"
	ResultTypeCustomerInfo     = "customer_info"
	ResultTypeBalances         = "balances"
	ResultTypeDebtInfo         = "debt_info"
	ResultTypeSubscriptions    = "subscriptions"
	ResultTypeTransactions     = "transactions"
	ResultTypeOverdueInfo      = "overdue_info"
	ResultTypeOverdueCount     = "overdue_count"
	ResultTypeOverdueCustomers = "overdue_customers"
	ResultTypeAIGenerated      = "ai_generated"
)

// QueryResult is the uniform envelope returned by every interpreted query.
// Exactly one of Result/Error is set; Success is consistent with the presence
// of Error. Field names are a compatibility contract for API callers.
type QueryResult struct {
	Success   bool        `json:"success"`
	Query     string      `json:"query"`
	Result    interface{} `json:"result,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewSuccess builds a success envelope around a typed result payload.
func NewSuccess(query string, result interface{}) *QueryResult {
	return &QueryResult{
		Success:   true,
		Query:     query,
		Result:    result,
		Timestamp: time.Now().UTC(),
	}
}

// NewFailure builds a failure envelope carrying a human-readable message.
func NewFailure(query, message string) *QueryResult {
	return &QueryResult{
		Success:   false,
		Query:     query,
		Error:     message,
		Timestamp: time.Now().UTC(),
	}
}

// CustomerListResult lists distinct customer identifiers, ascending, capped.
type CustomerListResult struct {
	Type      string   `json:"type"`
	Customers []string `json:"customers"`
	Count     int      `json:"count"`
}

// CustomerInfoResult summarises a single customer's footprint in the store.
type CustomerInfoResult struct {
	Type             string `json:"type"`
	CustomerID       string `json:"customer_id"`
	AccountCount     int    `json:"account_count"`
	TransactionCount int    `json:"transaction_count"`
}

// BalancesResult reports net worth: depository assets minus credit debts.
type BalancesResult struct {
	Type        string  `json:"type"`
	CustomerID  string  `json:"customer_id"`
	TotalAssets float64 `json:"total_assets"`
	TotalDebts  float64 `json:"total_debts"`
	NetWorth    float64 `json:"net_worth"`
}

// DebtAccount is one credit account's balance/limit/utilization line.
type DebtAccount struct {
	AccountID   string  `json:"account_id"`
	Name        string  `json:"name"`
	Balance     float64 `json:"balance"`
	Limit       float64 `json:"limit"`
	Utilization float64 `json:"utilization_pct"`
}

type DebtInfoResult struct {
	Type               string        `json:"type"`
	CustomerID         string        `json:"customer_id"`
	Accounts           []DebtAccount `json:"accounts"`
	TotalDebt          float64       `json:"total_debt"`
	TotalLimit         float64       `json:"total_limit"`
	OverallUtilization float64       `json:"overall_utilization_pct"`
}

// OverdueAccount is one overdue credit account for a single customer.
type OverdueAccount struct {
	AccountID      string  `json:"account_id"`
	Balance        float64 `json:"balance"`
	Limit          float64 `json:"limit"`
	MinimumPayment float64 `json:"minimum_payment"`
	NextDueDate    string  `json:"next_due_date"`
}

type OverdueInfoResult struct {
	Type       string           `json:"type"`
	CustomerID string           `json:"customer_id"`
	Accounts   []OverdueAccount `json:"accounts"`
	Count      int              `json:"count"`
}

type OverdueCountResult struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// OverdueCustomer aggregates one customer's overdue exposure.
type OverdueCustomer struct {
	CustomerID      string  `json:"customer_id"`
	OverdueAccounts int     `json:"overdue_accounts"`
	TotalBalance    float64 `json:"total_balance"`
}

type OverdueCustomersResult struct {
	Type      string            `json:"type"`
	Customers []OverdueCustomer `json:"customers"`
	Count     int               `json:"count"`
}

// TransactionView is the display row for the transactions handler.
type TransactionView struct {
	Date     string  `json:"date"`
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
}

type TransactionsResult struct {
	Type         string            `json:"type"`
	CustomerID   string            `json:"customer_id"`
	Transactions []TransactionView `json:"transactions"`
	Count        int               `json:"count"`
}

// AIGeneratedResult carries rows produced by the AI-SQL fallback path.
type AIGeneratedResult struct {
	Type     string                   `json:"type"`
	SQL      string                   `json:"sql"`
	Columns  []string                 `json:"columns"`
	Rows     []map[string]interface{} `json:"rows"`
	RowCount int                      `json:"row_count"`
}
