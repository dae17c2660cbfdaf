package detector

import (
	"fmt"
	"testing"
	"time"

	"github.com/finwell-io/wellness-service/internal/models"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func charge(merchant string, amount float64, gapDays int, count int, lastOffset int) []models.Transaction {
	txs := make([]models.Transaction, 0, count)
	date := testNow.AddDate(0, 0, -lastOffset-(count-1)*gapDays)
	for i := 0; i < count; i++ {
		txs = append(txs, models.Transaction{
			TransactionID: fmt.Sprintf("%s-%d", merchant, i),
			AccountID:     "acc-1",
			CustomerID:    "CUST000001",
			Date:          date,
			Amount:        -amount,
			MerchantName:  merchant,
		})
		date = date.AddDate(0, 0, gapDays)
	}
	return txs
}

func TestDetectMonthlyCadence(t *testing.T) {
	d := New(DefaultConfig())
	txs := charge("Netflix", 15.99, 30, 6, 10)

	result := d.Detect(txs, testNow, 365)

	if result.SubscriptionCount != 1 {
		t.Fatalf("expected 1 subscription, got %d", result.SubscriptionCount)
	}
	c := result.Charges[0]
	if c.Cadence != models.CadenceMonthly {
		t.Errorf("expected monthly cadence, got %s", c.Cadence)
	}
	if c.ConfidenceScore <= 0.8 {
		t.Errorf("expected confidence > 0.8, got %f", c.ConfidenceScore)
	}
	if !c.IsActive {
		t.Error("expected charge to be active: last occurrence 10 days ago")
	}
	if c.AverageAmount != 15.99 {
		t.Errorf("expected average amount 15.99, got %f", c.AverageAmount)
	}
	if c.MonthlyRecurringSpend != 15.99 {
		t.Errorf("expected monthly recurring spend 15.99, got %f", c.MonthlyRecurringSpend)
	}
	if result.ActiveCount != 1 {
		t.Errorf("expected 1 active, got %d", result.ActiveCount)
	}
}

func TestDetectActiveTolerance(t *testing.T) {
	d := New(DefaultConfig())

	// Last occurrence 44 days ago: within 30 * 1.5 = 45 days, still active.
	result := d.Detect(charge("Gym", 40, 30, 4, 44), testNow, 365)
	if len(result.Charges) != 1 || !result.Charges[0].IsActive {
		t.Error("expected charge 44 days old to be active")
	}

	// Last occurrence 46 days ago: past the grace window.
	result = d.Detect(charge("Gym", 40, 30, 4, 46), testNow, 365)
	if len(result.Charges) != 1 || result.Charges[0].IsActive {
		t.Error("expected charge 46 days old to be inactive")
	}
}

func TestDetectWeeklyMonthlyNormalization(t *testing.T) {
	d := New(DefaultConfig())
	result := d.Detect(charge("Coffee Club", 7, 7, 8, 3), testNow, 120)

	if len(result.Charges) != 1 {
		t.Fatalf("expected 1 charge, got %d", len(result.Charges))
	}
	c := result.Charges[0]
	if c.Cadence != models.CadenceWeekly {
		t.Fatalf("expected weekly cadence, got %s", c.Cadence)
	}
	want := 30.0 // 7.00 * 30/7
	if c.MonthlyRecurringSpend != want {
		t.Errorf("expected monthly spend %.2f, got %.2f", want, c.MonthlyRecurringSpend)
	}
}

func TestSingleOccurrenceExcluded(t *testing.T) {
	d := New(DefaultConfig())
	txs := []models.Transaction{{
		TransactionID: "one",
		Date:          testNow.AddDate(0, 0, -5),
		Amount:        -9.99,
		MerchantName:  "One Off Shop",
	}}
	result := d.Detect(txs, testNow, 90)
	if result.SubscriptionCount != 0 {
		t.Errorf("single occurrence must not form a group, got %d", result.SubscriptionCount)
	}
}

func TestInflowsAndMerchantlessExcluded(t *testing.T) {
	d := New(DefaultConfig())
	txs := []models.Transaction{
		{TransactionID: "p1", Date: testNow.AddDate(0, 0, -40), Amount: 500, MerchantName: "Payroll Inc"},
		{TransactionID: "p2", Date: testNow.AddDate(0, 0, -10), Amount: 500, MerchantName: "Payroll Inc"},
		{TransactionID: "m1", Date: testNow.AddDate(0, 0, -40), Amount: -20},
		{TransactionID: "m2", Date: testNow.AddDate(0, 0, -10), Amount: -20},
	}
	result := d.Detect(txs, testNow, 90)
	if result.SubscriptionCount != 0 {
		t.Errorf("inflows and merchantless transactions must be excluded, got %d groups", result.SubscriptionCount)
	}
}

func TestIrregularCadence(t *testing.T) {
	d := New(DefaultConfig())
	var txs []models.Transaction
	for i, offset := range []int{170, 150, 85, 40, 2} {
		txs = append(txs, models.Transaction{
			TransactionID: fmt.Sprintf("r-%d", i),
			Date:          testNow.AddDate(0, 0, -offset),
			Amount:        -25,
			MerchantName:  "Random Store",
		})
	}
	result := d.Detect(txs, testNow, 180)

	if len(result.Charges) != 1 {
		t.Fatalf("expected irregular group to still be reported, got %d", len(result.Charges))
	}
	c := result.Charges[0]
	if c.Cadence != models.CadenceIrregular {
		t.Fatalf("expected irregular cadence, got %s", c.Cadence)
	}
	if c.IsActive {
		t.Error("irregular groups are never counted active")
	}
	if result.ActiveCount != 0 {
		t.Errorf("expected 0 active, got %d", result.ActiveCount)
	}
	if c.ConfidenceScore > 0.4 {
		t.Errorf("expected low confidence for irregular cadence, got %f", c.ConfidenceScore)
	}
	// Fallback spend: avg * (occurrences / window * 30).
	want := round2(25 * (5.0 / 180 * 30))
	if c.MonthlyRecurringSpend != want {
		t.Errorf("expected fallback monthly spend %.2f, got %.2f", want, c.MonthlyRecurringSpend)
	}
}

func TestEmptyHistory(t *testing.T) {
	d := New(DefaultConfig())
	result := d.Detect(nil, testNow, 90)
	if result.SubscriptionCount != 0 || result.ActiveCount != 0 ||
		result.TotalMonthlySpend != 0 || result.SubscriptionShare != 0 {
		t.Errorf("empty history must yield zero-valued metrics: %+v", result)
	}
}

func TestWindowFilter(t *testing.T) {
	d := New(DefaultConfig())
	// All six occurrences older than the 90-day window.
	txs := charge("Old Paper", 12, 30, 6, 120)
	result := d.Detect(txs, testNow, 90)
	if result.SubscriptionCount != 0 {
		t.Errorf("transactions outside the window must be ignored, got %d groups", result.SubscriptionCount)
	}
}

func TestNormalizeMerchant(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"NETFLIX *86D2A1", "netflix"},
		{"netflix", "netflix"},
		{"  Spotify  ", "spotify"},
		{"Corner Store 104", "corner store"},
		{"Corner Store #205", "corner store"},
		{"Blue   Bottle  Coffee", "blue bottle coffee"},
	}
	for _, tc := range cases {
		if got := NormalizeMerchant(tc.in); got != tc.want {
			t.Errorf("NormalizeMerchant(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCaseInsensitiveGrouping(t *testing.T) {
	d := New(DefaultConfig())
	txs := append(charge("SPOTIFY", 9.99, 30, 3, 70), charge("Spotify *9F31", 9.99, 30, 3, 10)...)
	result := d.Detect(txs, testNow, 365)
	if result.SubscriptionCount != 1 {
		t.Fatalf("case and suffix variants must group together, got %d groups", result.SubscriptionCount)
	}
	if result.Charges[0].TransactionCount != 6 {
		t.Errorf("expected 6 contributing transactions, got %d", result.Charges[0].TransactionCount)
	}
}

func TestDeterministicOutput(t *testing.T) {
	d := New(DefaultConfig())
	txs := append(charge("Netflix", 15.99, 30, 5, 10), charge("Hulu", 12.99, 30, 5, 12)...)

	a := d.Detect(txs, testNow, 365)
	b := d.Detect(txs, testNow, 365)
	if len(a.Charges) != len(b.Charges) {
		t.Fatal("re-running detection changed the group count")
	}
	for i := range a.Charges {
		if a.Charges[i] != b.Charges[i] {
			t.Errorf("charge %d differs between runs: %+v vs %+v", i, a.Charges[i], b.Charges[i])
		}
	}
}
