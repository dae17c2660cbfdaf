package ingest

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/finwell-io/wellness-service/internal/models"
)

// GenerateConfig controls the synthetic dataset shape.
type GenerateConfig struct {
	Customers  int
	WindowDays int
	Seed       int64
}

var personas = []string{"saver", "spender", "investor", "rebuilder"}

var subscriptionMerchants = []struct {
	name   string
	amount float64
	period int // days
}{
	{"Netflix", 15.49, 30},
	{"Spotify", 10.99, 30},
	{"Planet Fitness", 24.99, 30},
	{"iCloud Storage", 2.99, 30},
	{"The Daily Herald", 6.50, 7},
	{"AWS", 38.20, 30},
}

var spendMerchants = []struct {
	name     string
	category string
	min, max float64
}{
	{"Whole Foods", "FOOD_AND_DRINK", 20, 140},
	{"Shell", "TRANSPORTATION", 25, 70},
	{"Amazon", "GENERAL_MERCHANDISE", 10, 200},
	{"Starbucks", "FOOD_AND_DRINK", 4, 12},
	{"CVS Pharmacy", "MEDICAL", 8, 60},
}

// Generate builds a deterministic synthetic dataset. The same seed always
// yields the same dataset, which keeps demo environments reproducible.
func Generate(cfg GenerateConfig, now time.Time) *Dataset {
	if cfg.Customers <= 0 {
		cfg.Customers = 20
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 180
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	ds := &Dataset{}

	for i := 1; i <= cfg.Customers; i++ {
		customerID := fmt.Sprintf("CUST%06d", i)
		persona := personas[rng.Intn(len(personas))]
		ds.Customers = append(ds.Customers, models.Customer{
			CustomerID: customerID,
			Name:       fmt.Sprintf("Customer %d", i),
			Email:      fmt.Sprintf("customer%d@example.com", i),
			Persona:    persona,
			CreatedAt:  now.AddDate(0, 0, -cfg.WindowDays).Format("2006-01-02"),
		})

		checkingID := fmt.Sprintf("acc-%06d-chk", i)
		ds.Accounts = append(ds.Accounts, models.Account{
			AccountID:        checkingID,
			CustomerID:       customerID,
			Type:             models.AccountTypeDepository,
			Subtype:          "checking",
			Name:             "Everyday Checking",
			CurrentBalance:   round2f(500 + rng.Float64()*9500),
			AvailableBalance: 0,
			Currency:         "USD",
		})

		creditID := fmt.Sprintf("acc-%06d-cc", i)
		limit := float64(2000 + rng.Intn(9)*1000)
		balance := round2f(limit * (0.05 + rng.Float64()*0.85))
		ds.Accounts = append(ds.Accounts, models.Account{
			AccountID:      creditID,
			CustomerID:     customerID,
			Type:           models.AccountTypeCredit,
			Subtype:        "credit card",
			Name:           "Rewards Card",
			CurrentBalance: balance,
			CreditLimit:    limit,
			Currency:       "USD",
		})

		overdue := rng.Float64() < 0.15
		due := now.AddDate(0, 0, 5+rng.Intn(20))
		if overdue {
			due = now.AddDate(0, 0, -(3 + rng.Intn(25)))
		}
		ds.Liabilities = append(ds.Liabilities, models.Liability{
			AccountID:            creditID,
			CustomerID:           customerID,
			LastStatementBalance: balance,
			APR:                  round2f(17 + rng.Float64()*12),
			MinimumPayment:       round2f(25 + balance*0.02),
			NextPaymentDueDate:   due,
			IsOverdue:            overdue,
		})

		subCount := 1 + rng.Intn(3)
		if persona == "spender" {
			subCount += 2
		}
		picks := rng.Perm(len(subscriptionMerchants))[:subCount]
		for _, p := range picks {
			sub := subscriptionMerchants[p]
			// A slice of subscriptions has lapsed: charges stop partway
			// through the window so the detector sees inactive patterns.
			stopAfter := cfg.WindowDays
			if rng.Float64() < 0.2 {
				stopAfter = cfg.WindowDays / 2
			}
			for offset := rng.Intn(sub.period); offset < stopAfter; offset += sub.period {
				ds.Transactions = append(ds.Transactions, txRecord(rng, customerID, checkingID,
					now.AddDate(0, 0, -offset), -sub.amount, sub.name, "ENTERTAINMENT"))
			}
		}

		everyN := 3
		if persona == "saver" {
			everyN = 6
		}
		for offset := rng.Intn(everyN); offset < cfg.WindowDays; offset += 1 + rng.Intn(everyN) {
			m := spendMerchants[rng.Intn(len(spendMerchants))]
			amount := -round2f(m.min + rng.Float64()*(m.max-m.min))
			ds.Transactions = append(ds.Transactions, txRecord(rng, customerID, checkingID,
				now.AddDate(0, 0, -offset), amount, m.name, m.category))
		}

		// Payroll inflows, twice a month.
		salary := round2f(1800 + rng.Float64()*3200)
		for offset := 0; offset < cfg.WindowDays; offset += 15 {
			ds.Transactions = append(ds.Transactions, txRecord(rng, customerID, checkingID,
				now.AddDate(0, 0, -offset), salary, "Acme Payroll", "INCOME"))
		}
	}
	return ds
}

func txRecord(rng *rand.Rand, customerID, accountID string, date time.Time, amount float64, merchant, category string) models.Transaction {
	id := uuid.Must(uuid.NewRandomFromReader(rng)).String()
	return models.Transaction{
		TransactionID:   id,
		AccountID:       accountID,
		CustomerID:      customerID,
		Date:            date,
		Amount:          amount,
		MerchantName:    merchant,
		CategoryPrimary: category,
	}
}

func round2f(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
