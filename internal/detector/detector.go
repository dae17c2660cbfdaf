// Package detector finds recurring charges in a customer's transaction history.
package detector

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/finwell-io/wellness-service/internal/models"
)

// Config holds the detection heuristics. The tolerances, confidence weights
// and the active grace factor are tunable and have not been calibrated
// against labeled data; treat them as starting points.
type Config struct {
	// Tolerance (days) around each canonical period when classifying cadence.
	WeeklyTolerance    float64
	BiweeklyTolerance  float64
	MonthlyTolerance   float64
	QuarterlyTolerance float64

	// ActiveGraceFactor scales the detected period when deciding whether a
	// group is still active; 1.5 absorbs one missed or late cycle.
	ActiveGraceFactor float64

	// Confidence weights. Must sum to 1.
	AmountWeight     float64
	RegularityWeight float64
	SampleWeight     float64

	// SampleSaturation is the occurrence count at which the sample-size
	// component of the confidence score saturates.
	SampleSaturation float64
}

// DefaultConfig returns the standard detection parameters.
func DefaultConfig() Config {
	return Config{
		WeeklyTolerance:    3,
		BiweeklyTolerance:  3,
		MonthlyTolerance:   5,
		QuarterlyTolerance: 10,
		ActiveGraceFactor:  1.5,
		AmountWeight:       0.4,
		RegularityWeight:   0.4,
		SampleWeight:       0.2,
		SampleSaturation:   5,
	}
}

// Result is the outcome of one detection run: the detected groups plus
// aggregate metrics over the window.
type Result struct {
	Charges            []models.RecurringCharge
	SubscriptionCount  int
	ActiveCount        int
	TotalMonthlySpend  float64
	ActiveMonthlySpend float64
	// SubscriptionShare is the fraction of total outflow spend in the window
	// attributable to detected recurring charges, as a percentage.
	SubscriptionShare float64
}

// Detector groups transactions by merchant and infers recurring cadences.
type Detector struct {
	cfg Config
}

func New(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// Detect analyzes the outflow transactions inside the lookback window ending
// at now. A customer with no qualifying transactions yields an empty result,
// not an error.
func (d *Detector) Detect(txs []models.Transaction, now time.Time, windowDays int) Result {
	cutoff := now.AddDate(0, 0, -windowDays)

	// Outflow-sign, merchant-bearing transactions only; transactions without
	// a merchant identity cannot be grouped.
	groups := make(map[string][]models.Transaction)
	totalSpend := 0.0
	for _, tx := range txs {
		if tx.Amount >= 0 || tx.Date.Before(cutoff) || tx.Date.After(now) {
			continue
		}
		totalSpend += -tx.Amount
		if tx.MerchantName == "" {
			continue
		}
		key := NormalizeMerchant(tx.MerchantName)
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], tx)
	}

	var result Result
	subscriptionSpend := 0.0
	for merchant, group := range groups {
		if len(group) < 2 {
			// A single occurrence cannot establish a cadence.
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i].Date.Before(group[j].Date) })
		charge := d.analyzeGroup(merchant, group, now, windowDays)
		result.Charges = append(result.Charges, charge)
		result.TotalMonthlySpend += charge.MonthlyRecurringSpend
		if charge.IsActive {
			result.ActiveCount++
			result.ActiveMonthlySpend += charge.MonthlyRecurringSpend
		}
		for _, tx := range group {
			subscriptionSpend += -tx.Amount
		}
	}
	result.SubscriptionCount = len(result.Charges)
	if totalSpend > 0 {
		result.SubscriptionShare = round2(subscriptionSpend / totalSpend * 100)
	}
	result.TotalMonthlySpend = round2(result.TotalMonthlySpend)
	result.ActiveMonthlySpend = round2(result.ActiveMonthlySpend)

	// Highest recurring spend first, merchant as tiebreak for determinism.
	sort.Slice(result.Charges, func(i, j int) bool {
		if result.Charges[i].MonthlyRecurringSpend != result.Charges[j].MonthlyRecurringSpend {
			return result.Charges[i].MonthlyRecurringSpend > result.Charges[j].MonthlyRecurringSpend
		}
		return result.Charges[i].Merchant < result.Charges[j].Merchant
	})
	return result
}

// analyzeGroup classifies one merchant group. group is sorted ascending by
// date and has at least two entries.
func (d *Detector) analyzeGroup(merchant string, group []models.Transaction, now time.Time, windowDays int) models.RecurringCharge {
	gaps := make([]float64, 0, len(group)-1)
	for i := 1; i < len(group); i++ {
		gaps = append(gaps, group[i].Date.Sub(group[i-1].Date).Hours()/24)
	}
	sort.Float64s(gaps)

	cadence := d.classifyCadence(medianSorted(gaps))

	amounts := make([]float64, len(group))
	total := 0.0
	for i, tx := range group {
		amounts[i] = -tx.Amount
		total += -tx.Amount
	}
	avgAmount := total / float64(len(group))

	confidence := d.confidence(gaps, amounts, avgAmount, cadence)

	first := group[0].Date
	last := group[len(group)-1].Date

	period := cadence.PeriodDays()
	var monthly float64
	var active bool
	if cadence == models.CadenceIrregular {
		monthly = avgAmount * (float64(len(group)) / float64(windowDays) * 30)
		active = false
	} else {
		monthly = avgAmount * 30 / float64(period)
		active = now.Sub(last).Hours()/24 <= float64(period)*d.cfg.ActiveGraceFactor
	}

	return models.RecurringCharge{
		Merchant:              merchant,
		Cadence:               cadence,
		AverageAmount:         round2(avgAmount),
		MonthlyRecurringSpend: round2(monthly),
		TransactionCount:      len(group),
		FirstTransactionDate:  first,
		LastTransactionDate:   last,
		IsActive:              active,
		ConfidenceScore:       confidence,
	}
}

// classifyCadence maps the median inter-transaction gap to the nearest
// canonical period inside its tolerance band.
func (d *Detector) classifyCadence(medianGap float64) models.Cadence {
	bands := []struct {
		cadence   models.Cadence
		tolerance float64
	}{
		{models.CadenceWeekly, d.cfg.WeeklyTolerance},
		{models.CadenceBiweekly, d.cfg.BiweeklyTolerance},
		{models.CadenceMonthly, d.cfg.MonthlyTolerance},
		{models.CadenceQuarterly, d.cfg.QuarterlyTolerance},
	}
	best := models.CadenceIrregular
	bestDist := math.MaxFloat64
	for _, band := range bands {
		dist := math.Abs(medianGap - float64(band.cadence.PeriodDays()))
		if dist <= band.tolerance && dist < bestDist {
			best = band.cadence
			bestDist = dist
		}
	}
	return best
}

// confidence blends gap regularity, amount consistency and sample size into
// a deterministic score in [0, 1]. Irregular cadences are capped low.
func (d *Detector) confidence(gaps, amounts []float64, avgAmount float64, cadence models.Cadence) float64 {
	meanGap := mean(gaps)
	regularity := 1.0
	if meanGap > 0 {
		regularity = 1 - math.Min(stddev(gaps, meanGap)/meanGap, 1)
	}

	consistency := 1.0
	if avgAmount > 0 {
		consistency = 1 - math.Min(stddev(amounts, avgAmount)/avgAmount, 1)
	}

	sample := math.Min(float64(len(amounts))/d.cfg.SampleSaturation, 1)

	score := d.cfg.AmountWeight*consistency + d.cfg.RegularityWeight*regularity + d.cfg.SampleWeight*sample
	if cadence == models.CadenceIrregular && score > 0.4 {
		score = 0.4
	}
	return clamp01(score)
}

var merchantSuffixRe = regexp.MustCompile(`\s*(\*\S*|#?\d+)$`)

// NormalizeMerchant produces the grouping key for a raw merchant name.
// The rule: lowercase, strip one trailing processor token (a "*"-prefixed
// reference or a bare store/reference number), collapse inner whitespace.
// "NETFLIX *86D2A1" and "netflix" group together; "Store 104" and
// "Store 205" collapse to "store".
func NormalizeMerchant(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = merchantSuffixRe.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range vs {
		total += v
	}
	return total / float64(len(vs))
}

func stddev(vs []float64, mean float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range vs {
		diff := v - mean
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(len(vs)))
}

func medianSorted(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
