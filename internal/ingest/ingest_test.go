package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/finwell-io/wellness-service/internal/models"
)

type memWriter struct {
	order   []string
	failOn  string
	inserts int
}

func (m *memWriter) record(kind, id string) error {
	if kind == m.failOn {
		return errors.New("insert failed")
	}
	m.order = append(m.order, kind)
	m.inserts++
	return nil
}

func (m *memWriter) InsertCustomer(_ context.Context, c *models.Customer) error {
	return m.record("customer", c.CustomerID)
}

func (m *memWriter) InsertAccount(_ context.Context, a *models.Account) error {
	return m.record("account", a.AccountID)
}

func (m *memWriter) InsertTransaction(_ context.Context, t *models.Transaction) error {
	return m.record("transaction", t.TransactionID)
}

func (m *memWriter) InsertLiability(_ context.Context, l *models.Liability) error {
	return m.record("liability", l.AccountID)
}

func newTestLoader(w Writer) *Loader {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewLoader(w, log)
}

func sampleDataset() *Dataset {
	return &Dataset{
		Customers: []models.Customer{{CustomerID: "CUST000001", Name: "Ada"}},
		Accounts: []models.Account{
			{AccountID: "a1", CustomerID: "CUST000001", Type: models.AccountTypeDepository},
		},
		Transactions: []models.Transaction{
			{TransactionID: "t1", AccountID: "a1", CustomerID: "CUST000001", Amount: -9.99},
		},
		Liabilities: []models.Liability{{AccountID: "a1", CustomerID: "CUST000001"}},
	}
}

func TestLoadOrdersParentsFirst(t *testing.T) {
	w := &memWriter{}
	if err := newTestLoader(w).Load(context.Background(), sampleDataset()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"customer", "account", "transaction", "liability"}
	if !reflect.DeepEqual(w.order, want) {
		t.Errorf("insert order = %v, want %v", w.order, want)
	}
}

func TestLoadStopsOnInsertFailure(t *testing.T) {
	w := &memWriter{failOn: "account"}
	err := newTestLoader(w).Load(context.Background(), sampleDataset())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "account a1") {
		t.Errorf("error should name the failing record: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.json")
	data, err := json.Marshal(sampleDataset())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	w := &memWriter{}
	if err := newTestLoader(w).LoadFile(context.Background(), path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.inserts != 4 {
		t.Errorf("expected 4 inserts, got %d", w.inserts)
	}
}

func TestLoadFileBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := newTestLoader(&memWriter{}).LoadFile(context.Background(), path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestGenerateShape(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	ds := Generate(GenerateConfig{Customers: 5, WindowDays: 90, Seed: 7}, now)

	if len(ds.Customers) != 5 {
		t.Fatalf("expected 5 customers, got %d", len(ds.Customers))
	}
	if len(ds.Accounts) != 10 {
		t.Fatalf("expected 2 accounts per customer, got %d", len(ds.Accounts))
	}
	if len(ds.Liabilities) != 5 {
		t.Fatalf("expected 1 liability per customer, got %d", len(ds.Liabilities))
	}
	if len(ds.Transactions) == 0 {
		t.Fatal("expected transactions")
	}

	if ds.Customers[0].CustomerID != "CUST000001" {
		t.Errorf("customer ids must use the canonical form, got %s", ds.Customers[0].CustomerID)
	}
	for _, a := range ds.Accounts {
		if a.Type == models.AccountTypeCredit && a.CreditLimit <= 0 {
			t.Errorf("credit account %s has no limit", a.AccountID)
		}
	}
	for _, tx := range ds.Transactions {
		if tx.Date.After(now) {
			t.Errorf("transaction %s dated in the future", tx.TransactionID)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	a := Generate(GenerateConfig{Customers: 3, WindowDays: 60, Seed: 42}, now)
	b := Generate(GenerateConfig{Customers: 3, WindowDays: 60, Seed: 42}, now)
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed must produce identical datasets")
	}
}
