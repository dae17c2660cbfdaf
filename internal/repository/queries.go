package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/finwell-io/wellness-service/internal/models"
)

var sqlTxReadOnly = sql.TxOptions{ReadOnly: true}

// CustomerIDs returns distinct customer identifiers, ascending, capped at limit.
func (r *Repository) CustomerIDs(ctx context.Context, limit int) ([]string, error) {
	query := `
		SELECT customer_id
		FROM finwell.customers
		ORDER BY customer_id ASC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, storeErr("list customers", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storeErr("list customers", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list customers", err)
	}
	return ids, nil
}

// CustomerByID returns one customer record, or ErrNotFound when absent.
func (r *Repository) CustomerByID(ctx context.Context, customerID string) (*models.Customer, error) {
	c := &models.Customer{}
	query := `
		SELECT customer_id, name, email, persona, to_char(created_at, 'YYYY-MM-DD')
		FROM finwell.customers
		WHERE customer_id = $1`
	err := r.db.QueryRowContext(ctx, query, customerID).
		Scan(&c.CustomerID, &c.Name, &c.Email, &c.Persona, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeErr("find customer", err)
	}
	return c, nil
}

// CustomerCounts returns the number of accounts and transactions for a customer.
func (r *Repository) CustomerCounts(ctx context.Context, customerID string) (accounts, transactions int, err error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM finwell.accounts WHERE customer_id = $1),
			(SELECT COUNT(*) FROM finwell.transactions WHERE customer_id = $1)`
	if err := r.db.QueryRowContext(ctx, query, customerID).Scan(&accounts, &transactions); err != nil {
		return 0, 0, storeErr("customer counts", err)
	}
	return accounts, transactions, nil
}

// AccountsByCustomer returns all accounts for a customer.
func (r *Repository) AccountsByCustomer(ctx context.Context, customerID string) ([]models.Account, error) {
	query := `
		SELECT account_id, customer_id, type, subtype, name,
		       current_balance, available_balance, credit_limit, currency
		FROM finwell.accounts
		WHERE customer_id = $1
		ORDER BY account_id`
	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, storeErr("accounts by customer", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.AccountID, &a.CustomerID, &a.Type, &a.Subtype, &a.Name,
			&a.CurrentBalance, &a.AvailableBalance, &a.CreditLimit, &a.Currency); err != nil {
			return nil, storeErr("accounts by customer", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("accounts by customer", err)
	}
	return accounts, nil
}

// RecentTransactions returns the newest transactions for a customer, newest first.
func (r *Repository) RecentTransactions(ctx context.Context, customerID string, limit int) ([]models.Transaction, error) {
	query := `
		SELECT transaction_id, account_id, customer_id, date, amount,
		       COALESCE(merchant_name, ''), COALESCE(category_primary, ''), COALESCE(category_detailed, '')
		FROM finwell.transactions
		WHERE customer_id = $1
		ORDER BY date DESC
		LIMIT $2`
	return r.scanTransactions(ctx, query, customerID, limit)
}

// TransactionsSince returns a customer's transactions on or after since, oldest first.
func (r *Repository) TransactionsSince(ctx context.Context, customerID string, since time.Time) ([]models.Transaction, error) {
	query := `
		SELECT transaction_id, account_id, customer_id, date, amount,
		       COALESCE(merchant_name, ''), COALESCE(category_primary, ''), COALESCE(category_detailed, '')
		FROM finwell.transactions
		WHERE customer_id = $1 AND date >= $2
		ORDER BY date ASC`
	return r.scanTransactions(ctx, query, customerID, since)
}

func (r *Repository) scanTransactions(ctx context.Context, query string, args ...interface{}) ([]models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("query transactions", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.TransactionID, &t.AccountID, &t.CustomerID, &t.Date, &t.Amount,
			&t.MerchantName, &t.CategoryPrimary, &t.CategoryDetailed); err != nil {
			return nil, storeErr("query transactions", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("query transactions", err)
	}
	return txs, nil
}

// OverdueAccounts returns a customer's overdue credit accounts with their
// balance, limit, minimum payment and next due date.
func (r *Repository) OverdueAccounts(ctx context.Context, customerID string) ([]models.OverdueAccount, error) {
	query := `
		SELECT a.account_id, a.current_balance, a.credit_limit,
		       l.minimum_payment, COALESCE(to_char(l.next_payment_due_date, 'YYYY-MM-DD'), '')
		FROM finwell.liabilities l
		JOIN finwell.accounts a ON a.account_id = l.account_id
		WHERE l.customer_id = $1 AND l.is_overdue AND a.type = 'credit'
		ORDER BY a.account_id`
	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, storeErr("overdue accounts", err)
	}
	defer rows.Close()

	var out []models.OverdueAccount
	for rows.Next() {
		var o models.OverdueAccount
		if err := rows.Scan(&o.AccountID, &o.Balance, &o.Limit, &o.MinimumPayment, &o.NextDueDate); err != nil {
			return nil, storeErr("overdue accounts", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("overdue accounts", err)
	}
	return out, nil
}

// OverdueCustomerCount counts customers with at least one overdue credit account.
func (r *Repository) OverdueCustomerCount(ctx context.Context) (int, error) {
	query := `
		SELECT COUNT(DISTINCT l.customer_id)
		FROM finwell.liabilities l
		JOIN finwell.accounts a ON a.account_id = l.account_id
		WHERE l.is_overdue AND a.type = 'credit'`
	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, storeErr("overdue customer count", err)
	}
	return count, nil
}

// OverdueCustomers lists customers with overdue credit accounts, sorted by
// total overdue balance descending.
func (r *Repository) OverdueCustomers(ctx context.Context) ([]models.OverdueCustomer, error) {
	query := `
		SELECT l.customer_id, COUNT(*) AS overdue_accounts, SUM(a.current_balance) AS total_balance
		FROM finwell.liabilities l
		JOIN finwell.accounts a ON a.account_id = l.account_id
		WHERE l.is_overdue AND a.type = 'credit'
		GROUP BY l.customer_id
		ORDER BY total_balance DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storeErr("overdue customers", err)
	}
	defer rows.Close()

	var out []models.OverdueCustomer
	for rows.Next() {
		var c models.OverdueCustomer
		if err := rows.Scan(&c.CustomerID, &c.OverdueAccounts, &c.TotalBalance); err != nil {
			return nil, storeErr("overdue customers", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("overdue customers", err)
	}
	return out, nil
}

// CostSummarySince aggregates the cost ledger from since onward.
func (r *Repository) CostSummarySince(ctx context.Context, since time.Time) (*models.CostSummary, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0),
		       COALESCE(SUM(cost), 0)::TEXT
		FROM finwell.cost_usage
		WHERE created_at >= $1`
	s := &models.CostSummary{Since: since}
	if err := r.db.QueryRowContext(ctx, query, since).
		Scan(&s.CallCount, &s.InputTokens, &s.OutputTokens, &s.TotalCost); err != nil {
		return nil, storeErr("cost summary", err)
	}
	return s, nil
}

// RunReadOnly executes an arbitrary SELECT and returns its rows as generic
// maps. The statement is executed inside a read-only transaction so a query
// that slipped past the generator's guard still cannot mutate the store.
func (r *Repository) RunReadOnly(ctx context.Context, query string) ([]string, []map[string]interface{}, error) {
	tx, err := r.db.BeginTx(ctx, &sqlTxReadOnly)
	if err != nil {
		return nil, nil, storeErr("begin read-only tx", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, storeErr("run query", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, storeErr("read columns", err)
	}

	var out []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, storeErr("scan row", err)
		}
		row := make(map[string]interface{}, len(cols))
		for i, col := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, storeErr("iterate rows", err)
	}
	return cols, out, nil
}
