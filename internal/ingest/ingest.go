// Package ingest loads customer datasets into the store, either from a JSON
// dump or from a synthetic generator used for local development.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/finwell-io/wellness-service/internal/models"
)

// Dataset is the JSON dump format: all four entity lists in one document.
type Dataset struct {
	Customers    []models.Customer    `json:"customers"`
	Accounts     []models.Account     `json:"accounts"`
	Transactions []models.Transaction `json:"transactions"`
	Liabilities  []models.Liability   `json:"liabilities"`
}

// Writer is the insert surface of the store.
type Writer interface {
	InsertCustomer(ctx context.Context, c *models.Customer) error
	InsertAccount(ctx context.Context, a *models.Account) error
	InsertTransaction(ctx context.Context, t *models.Transaction) error
	InsertLiability(ctx context.Context, l *models.Liability) error
}

// Loader writes datasets into the store.
type Loader struct {
	writer Writer
	log    *logrus.Logger
}

func NewLoader(writer Writer, log *logrus.Logger) *Loader {
	return &Loader{writer: writer, log: log}
}

// LoadFile reads a JSON dataset from disk and loads it.
func (l *Loader) LoadFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read dataset: %w", err)
	}
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return fmt.Errorf("failed to parse dataset: %w", err)
	}
	return l.Load(ctx, &ds)
}

// Load inserts every record in entity order: parents before children so the
// foreign keys hold. Inserts are upserts, so re-loading a dataset is safe.
func (l *Loader) Load(ctx context.Context, ds *Dataset) error {
	for i := range ds.Customers {
		if err := l.writer.InsertCustomer(ctx, &ds.Customers[i]); err != nil {
			return fmt.Errorf("customer %s: %w", ds.Customers[i].CustomerID, err)
		}
	}
	for i := range ds.Accounts {
		if err := l.writer.InsertAccount(ctx, &ds.Accounts[i]); err != nil {
			return fmt.Errorf("account %s: %w", ds.Accounts[i].AccountID, err)
		}
	}
	for i := range ds.Transactions {
		if err := l.writer.InsertTransaction(ctx, &ds.Transactions[i]); err != nil {
			return fmt.Errorf("transaction %s: %w", ds.Transactions[i].TransactionID, err)
		}
	}
	for i := range ds.Liabilities {
		if err := l.writer.InsertLiability(ctx, &ds.Liabilities[i]); err != nil {
			return fmt.Errorf("liability %s: %w", ds.Liabilities[i].AccountID, err)
		}
	}
	l.log.WithFields(logrus.Fields{
		"customers":    len(ds.Customers),
		"accounts":     len(ds.Accounts),
		"transactions": len(ds.Transactions),
		"liabilities":  len(ds.Liabilities),
	}).Info("dataset loaded")
	return nil
}
