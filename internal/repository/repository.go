package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/finwell-io/wellness-service/internal/models"
)

// ErrStore marks store-connectivity failures. Callers treat errors wrapping
// ErrStore as fatal to the request; everything else is reported in-band.
var ErrStore = errors.New("store unavailable")

// ErrNotFound marks lookups for records that do not exist.
var ErrNotFound = errors.New("not found")

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Ping verifies store connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w: %w", ErrStore, err)
	}
	return nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}

// CreateUser creates a new API user in the database
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO finwell.users (username, email, password_hash, created_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, user.Username, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return storeErr("create user", err)
	}
	return nil
}

// FindUserByEmail retrieves an API user by email
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, created_at
		FROM finwell.users
		WHERE email = $1`
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, storeErr("find user", err)
	}
	return user, nil
}

// InsertCustomer upserts a customer record.
func (r *Repository) InsertCustomer(ctx context.Context, c *models.Customer) error {
	query := `
		INSERT INTO finwell.customers (customer_id, name, email, persona, created_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
		ON CONFLICT (customer_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, c.CustomerID, c.Name, c.Email, c.Persona); err != nil {
		return storeErr("insert customer", err)
	}
	return nil
}

// InsertAccount upserts an account record.
func (r *Repository) InsertAccount(ctx context.Context, a *models.Account) error {
	query := `
		INSERT INTO finwell.accounts
			(account_id, customer_id, type, subtype, name, current_balance, available_balance, credit_limit, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (account_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query,
		a.AccountID, a.CustomerID, a.Type, a.Subtype, a.Name,
		a.CurrentBalance, a.AvailableBalance, a.CreditLimit, a.Currency)
	if err != nil {
		return storeErr("insert account", err)
	}
	return nil
}

// InsertTransaction inserts an immutable transaction record.
func (r *Repository) InsertTransaction(ctx context.Context, t *models.Transaction) error {
	query := `
		INSERT INTO finwell.transactions
			(transaction_id, account_id, customer_id, date, amount, merchant_name, category_primary, category_detailed)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''))
		ON CONFLICT (transaction_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query,
		t.TransactionID, t.AccountID, t.CustomerID, t.Date, t.Amount,
		t.MerchantName, t.CategoryPrimary, t.CategoryDetailed)
	if err != nil {
		return storeErr("insert transaction", err)
	}
	return nil
}

// InsertLiability upserts a credit-card liability record.
func (r *Repository) InsertLiability(ctx context.Context, l *models.Liability) error {
	query := `
		INSERT INTO finwell.liabilities
			(account_id, customer_id, last_statement_balance, apr, minimum_payment, next_payment_due_date, is_overdue)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (account_id) DO UPDATE SET
			last_statement_balance = EXCLUDED.last_statement_balance,
			apr = EXCLUDED.apr,
			minimum_payment = EXCLUDED.minimum_payment,
			next_payment_due_date = EXCLUDED.next_payment_due_date,
			is_overdue = EXCLUDED.is_overdue`
	_, err := r.db.ExecContext(ctx, query,
		l.AccountID, l.CustomerID, l.LastStatementBalance, l.APR,
		l.MinimumPayment, l.NextPaymentDueDate, l.IsOverdue)
	if err != nil {
		return storeErr("insert liability", err)
	}
	return nil
}

// InsertCostUsage appends one entry to the cost ledger.
func (r *Repository) InsertCostUsage(ctx context.Context, u *models.CostUsage) error {
	query := `
		INSERT INTO finwell.cost_usage (id, model, operation, input_tokens, output_tokens, cost, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Model, u.Operation, u.InputTokens, u.OutputTokens, u.Cost, u.CreatedAt)
	if err != nil {
		return storeErr("insert cost usage", err)
	}
	return nil
}
