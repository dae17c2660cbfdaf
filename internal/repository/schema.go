package repository

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE SCHEMA IF NOT EXISTS finwell`,
	`CREATE TABLE IF NOT EXISTS finwell.users (
		id            SERIAL PRIMARY KEY,
		username      TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS finwell.customers (
		customer_id TEXT PRIMARY KEY,
		name        TEXT NOT NULL DEFAULT '',
		email       TEXT NOT NULL DEFAULT '',
		persona     TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS finwell.accounts (
		account_id        TEXT PRIMARY KEY,
		customer_id       TEXT NOT NULL REFERENCES finwell.customers(customer_id),
		type              TEXT NOT NULL,
		subtype           TEXT NOT NULL DEFAULT '',
		name              TEXT NOT NULL DEFAULT '',
		current_balance   NUMERIC(14,2) NOT NULL DEFAULT 0,
		available_balance NUMERIC(14,2) NOT NULL DEFAULT 0,
		credit_limit      NUMERIC(14,2) NOT NULL DEFAULT 0,
		currency          TEXT NOT NULL DEFAULT 'USD'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_accounts_customer ON finwell.accounts(customer_id)`,
	`CREATE TABLE IF NOT EXISTS finwell.transactions (
		transaction_id    TEXT PRIMARY KEY,
		account_id        TEXT NOT NULL REFERENCES finwell.accounts(account_id),
		customer_id       TEXT NOT NULL REFERENCES finwell.customers(customer_id),
		date              TIMESTAMPTZ NOT NULL,
		amount            NUMERIC(14,2) NOT NULL,
		merchant_name     TEXT,
		category_primary  TEXT,
		category_detailed TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_customer_date ON finwell.transactions(customer_id, date DESC)`,
	`CREATE TABLE IF NOT EXISTS finwell.liabilities (
		account_id             TEXT PRIMARY KEY REFERENCES finwell.accounts(account_id),
		customer_id            TEXT NOT NULL REFERENCES finwell.customers(customer_id),
		last_statement_balance NUMERIC(14,2) NOT NULL DEFAULT 0,
		apr                    NUMERIC(6,3) NOT NULL DEFAULT 0,
		minimum_payment        NUMERIC(14,2) NOT NULL DEFAULT 0,
		next_payment_due_date  TIMESTAMPTZ,
		is_overdue             BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_liabilities_overdue ON finwell.liabilities(customer_id) WHERE is_overdue`,
	`CREATE TABLE IF NOT EXISTS finwell.cost_usage (
		id            TEXT PRIMARY KEY,
		model         TEXT NOT NULL,
		operation     TEXT NOT NULL,
		input_tokens  BIGINT NOT NULL DEFAULT 0,
		output_tokens BIGINT NOT NULL DEFAULT 0,
		cost          NUMERIC(12,6) NOT NULL DEFAULT 0,
		created_at    TIMESTAMPTZ NOT NULL
	)`,
}

// InitSchema creates the schema and all tables if they do not exist.
func (r *Repository) InitSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w: %w", ErrStore, err)
		}
	}
	return nil
}

// SchemaDescription describes the queryable tables for the AI-SQL generator's
// system prompt. Kept in sync with schemaStatements by hand.
func SchemaDescription() string {
	return `Tables (Postgres, schema "finwell"):

finwell.customers(customer_id TEXT PK, name TEXT, email TEXT, persona TEXT, created_at TIMESTAMPTZ)
finwell.accounts(account_id TEXT PK, customer_id TEXT FK, type TEXT ('depository' or 'credit'),
  subtype TEXT, name TEXT, current_balance NUMERIC, available_balance NUMERIC,
  credit_limit NUMERIC, currency TEXT)
finwell.transactions(transaction_id TEXT PK, account_id TEXT FK, customer_id TEXT FK,
  date TIMESTAMPTZ, amount NUMERIC (negative = purchase/outflow, positive = payment/inflow),
  merchant_name TEXT NULL, category_primary TEXT NULL, category_detailed TEXT NULL)
finwell.liabilities(account_id TEXT PK/FK, customer_id TEXT FK, last_statement_balance NUMERIC,
  apr NUMERIC, minimum_payment NUMERIC, next_payment_due_date TIMESTAMPTZ, is_overdue BOOLEAN)

Customer identifiers look like CUST000001.`
}
