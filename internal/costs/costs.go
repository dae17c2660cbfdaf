// Package costs records LLM token usage and the money it costs.
package costs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/finwell-io/wellness-service/internal/models"
)

// ModelPrice is the price per 1000 tokens for one model, in USD.
type ModelPrice struct {
	InputPer1K  decimal.Decimal
	OutputPer1K decimal.Decimal
}

// DefaultPricing returns the standard pricing table. Callers pass the table
// into NewTracker; the tracker never mutates it.
func DefaultPricing() map[string]ModelPrice {
	return map[string]ModelPrice{
		"claude-3-5-haiku-latest": {
			InputPer1K:  decimal.RequireFromString("0.0008"),
			OutputPer1K: decimal.RequireFromString("0.004"),
		},
		"claude-sonnet-4-0": {
			InputPer1K:  decimal.RequireFromString("0.003"),
			OutputPer1K: decimal.RequireFromString("0.015"),
		},
	}
}

// Ledger is the persistence surface the tracker writes to.
type Ledger interface {
	InsertCostUsage(ctx context.Context, u *models.CostUsage) error
	CostSummarySince(ctx context.Context, since time.Time) (*models.CostSummary, error)
}

// Tracker prices token usage and appends it to the ledger.
type Tracker struct {
	ledger  Ledger
	pricing map[string]ModelPrice
	log     *logrus.Logger
}

// NewTracker builds a tracker over an immutable pricing map.
func NewTracker(ledger Ledger, pricing map[string]ModelPrice, log *logrus.Logger) *Tracker {
	return &Tracker{ledger: ledger, pricing: pricing, log: log}
}

// Record prices one model call and appends it to the ledger. Unknown models
// are recorded at zero cost so usage is never silently dropped.
func (t *Tracker) Record(ctx context.Context, model, operation string, inputTokens, outputTokens int64) error {
	cost := t.Price(model, inputTokens, outputTokens)
	entry := &models.CostUsage{
		ID:           uuid.NewString(),
		Model:        model,
		Operation:    operation,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Cost:         cost.StringFixed(6),
		CreatedAt:    time.Now().UTC(),
	}
	if err := t.ledger.InsertCostUsage(ctx, entry); err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	t.log.WithFields(logrus.Fields{
		"model":         model,
		"operation":     operation,
		"input_tokens":  inputTokens,
		"output_tokens": outputTokens,
		"cost_usd":      entry.Cost,
	}).Debug("recorded model usage")
	return nil
}

// Price computes the USD cost of a call with exact decimal arithmetic.
func (t *Tracker) Price(model string, inputTokens, outputTokens int64) decimal.Decimal {
	price, ok := t.pricing[model]
	if !ok {
		t.log.WithField("model", model).Warn("no pricing for model, recording zero cost")
		return decimal.Zero
	}
	thousand := decimal.NewFromInt(1000)
	in := decimal.NewFromInt(inputTokens).Mul(price.InputPer1K).Div(thousand)
	out := decimal.NewFromInt(outputTokens).Mul(price.OutputPer1K).Div(thousand)
	return in.Add(out)
}

// Summary aggregates the ledger from since onward.
func (t *Tracker) Summary(ctx context.Context, since time.Time) (*models.CostSummary, error) {
	return t.ledger.CostSummarySince(ctx, since)
}
