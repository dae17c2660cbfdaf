// Package recommend produces persona-tailored financial-wellness
// recommendations from derived signals. Personas are assigned upstream;
// this package only consumes them.
package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/finwell-io/wellness-service/internal/detector"
	"github.com/finwell-io/wellness-service/internal/models"
)

// Recommendation is one actionable suggestion for a customer.
type Recommendation struct {
	Type             string  `json:"type"`
	Priority         string  `json:"priority"`
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	EstimatedSavings float64 `json:"estimated_savings,omitempty"` // monthly, USD
}

// Store is the read surface the engine needs.
type Store interface {
	AccountsByCustomer(ctx context.Context, customerID string) ([]models.Account, error)
	TransactionsSince(ctx context.Context, customerID string, since time.Time) ([]models.Transaction, error)
	OverdueAccounts(ctx context.Context, customerID string) ([]models.OverdueAccount, error)
}

// RateSource supplies a benchmark credit-card APR for comparisons.
// It may be nil, in which case APR comparisons are skipped.
type RateSource interface {
	BenchmarkAPR() (float64, error)
}

const (
	highUtilizationPct = 70
	detectorWindowDays = 90
)

// Engine derives recommendations from account, liability and subscription signals.
type Engine struct {
	store Store
	det   *detector.Detector
	rates RateSource
	log   *logrus.Logger
	now   func() time.Time
}

func NewEngine(store Store, det *detector.Detector, rates RateSource, log *logrus.Logger) *Engine {
	return &Engine{store: store, det: det, rates: rates, log: log, now: time.Now}
}

// Recommend builds the recommendation list for one customer. persona adjusts
// the ordering emphasis but never gates a safety-relevant suggestion.
func (e *Engine) Recommend(ctx context.Context, customerID, persona string) ([]Recommendation, error) {
	var recs []Recommendation

	overdue, err := e.store.OverdueAccounts(ctx, customerID)
	if err != nil {
		return nil, err
	}
	for _, o := range overdue {
		recs = append(recs, Recommendation{
			Type:     "overdue_payment",
			Priority: "high",
			Title:    fmt.Sprintf("Account %s is overdue", o.AccountID),
			Description: fmt.Sprintf(
				"A minimum payment of %.2f is past due. Paying before the next cycle avoids further penalties.",
				o.MinimumPayment),
		})
	}

	accounts, err := e.store.AccountsByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	recs = append(recs, e.utilizationRecs(accounts)...)

	now := e.now()
	txs, err := e.store.TransactionsSince(ctx, customerID, now.AddDate(0, 0, -detectorWindowDays))
	if err != nil {
		return nil, err
	}
	detection := e.det.Detect(txs, now, detectorWindowDays)
	for _, charge := range detection.Charges {
		if charge.IsActive || charge.Cadence == models.CadenceIrregular || charge.ConfidenceScore < 0.6 {
			continue
		}
		recs = append(recs, Recommendation{
			Type:     "cancel_subscription",
			Priority: "medium",
			Title:    fmt.Sprintf("Review inactive subscription %q", charge.Merchant),
			Description: fmt.Sprintf(
				"No charge since %s despite a %s pattern. Cancelling could free %.2f per month.",
				charge.LastTransactionDate.Format("2006-01-02"), charge.Cadence, charge.MonthlyRecurringSpend),
			EstimatedSavings: charge.MonthlyRecurringSpend,
		})
	}

	if persona == "saver" && detection.ActiveMonthlySpend > 0 {
		recs = append(recs, Recommendation{
			Type:     "subscription_budget",
			Priority: "low",
			Title:    "Subscriptions in your budget",
			Description: fmt.Sprintf(
				"Active subscriptions total %.2f per month (%.1f%% of recent spend). Worth a yearly review.",
				detection.ActiveMonthlySpend, detection.SubscriptionShare),
		})
	}

	return recs, nil
}

func (e *Engine) utilizationRecs(accounts []models.Account) []Recommendation {
	var benchmark float64
	if e.rates != nil {
		apr, err := e.rates.BenchmarkAPR()
		if err != nil {
			e.log.WithError(err).Debug("benchmark APR unavailable, skipping comparison")
		} else {
			benchmark = apr
		}
	}

	var recs []Recommendation
	for _, a := range accounts {
		if a.Type != models.AccountTypeCredit || a.CreditLimit <= 0 {
			continue
		}
		pct := a.CurrentBalance / a.CreditLimit * 100
		if pct < highUtilizationPct {
			continue
		}
		desc := fmt.Sprintf("Card %s is at %.0f%% of its limit. High utilization hurts credit health.", a.AccountID, pct)
		if benchmark > 0 {
			desc += fmt.Sprintf(" At a typical %.1f%% APR this balance is expensive to carry.", benchmark)
		}
		recs = append(recs, Recommendation{
			Type:        "pay_down_debt",
			Priority:    "high",
			Title:       fmt.Sprintf("Pay down card %s", a.AccountID),
			Description: desc,
		})
	}
	return recs
}
