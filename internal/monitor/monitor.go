// Package monitor runs scheduled portfolio health checks and raises alerts
// through the dispatcher when thresholds are crossed.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/finwell-io/wellness-service/internal/models"
)

// Store is the read surface the checks need.
type Store interface {
	Ping(ctx context.Context) error
	OverdueCustomerCount(ctx context.Context) (int, error)
}

// Sink receives the alerts the checks raise.
type Sink interface {
	Dispatch(ctx context.Context, a models.Alert, channels []string) error
}

// Config controls scheduling and thresholds.
type Config struct {
	Schedule         string // cron spec, supports @every forms
	OverdueThreshold int    // overdue-customer count that triggers a warning
	CheckTimeout     time.Duration
}

// Monitor owns the cron scheduler and the registered checks.
type Monitor struct {
	store Store
	sink  Sink
	cfg   Config
	log   *logrus.Logger
	cron  *cron.Cron
	now   func() time.Time

	lastOverdueCount int
	hasBaseline      bool
}

func New(store Store, sink Sink, cfg Config, log *logrus.Logger) *Monitor {
	if cfg.CheckTimeout <= 0 {
		cfg.CheckTimeout = 30 * time.Second
	}
	return &Monitor{
		store: store,
		sink:  sink,
		cfg:   cfg,
		log:   log,
		now:   time.Now,
	}
}

// Start schedules the checks and launches the cron scheduler.
func (m *Monitor) Start() error {
	m.cron = cron.New()
	if _, err := m.cron.AddFunc(m.cfg.Schedule, m.RunChecks); err != nil {
		return fmt.Errorf("failed to schedule monitor checks: %w", err)
	}
	m.cron.Start()
	m.log.WithField("schedule", m.cfg.Schedule).Info("monitor started")
	return nil
}

// Stop halts the scheduler and waits for a running check to finish.
func (m *Monitor) Stop() {
	if m.cron == nil {
		return
	}
	<-m.cron.Stop().Done()
	m.log.Info("monitor stopped")
}

// RunChecks executes every check once. Exported so the API can trigger an
// on-demand sweep and so the cron callback stays trivial.
func (m *Monitor) RunChecks() {
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.CheckTimeout)
	defer cancel()

	m.checkStoreHealth(ctx)
	m.checkOverdueCustomers(ctx)
}

func (m *Monitor) checkStoreHealth(ctx context.Context) {
	err := m.store.Ping(ctx)
	if err == nil {
		return
	}
	a := models.Alert{
		ID:        uuid.NewString(),
		Severity:  models.SeverityCritical,
		Source:    "monitor",
		Title:     "Database unreachable",
		Message:   fmt.Sprintf("health check ping failed: %v", err),
		CreatedAt: m.now(),
	}
	if derr := m.sink.Dispatch(ctx, a, nil); derr != nil {
		m.log.WithError(derr).Error("failed to dispatch health alert")
	}
}

func (m *Monitor) checkOverdueCustomers(ctx context.Context) {
	count, err := m.store.OverdueCustomerCount(ctx)
	if err != nil {
		m.log.WithError(err).Error("overdue check failed")
		return
	}

	prev, hadBaseline := m.lastOverdueCount, m.hasBaseline
	m.lastOverdueCount = count
	m.hasBaseline = true

	if count < m.cfg.OverdueThreshold {
		return
	}
	// Re-alert only when the count moves, not every sweep.
	if hadBaseline && prev == count {
		return
	}

	severity := models.SeverityWarning
	if hadBaseline && count > prev*2 && prev > 0 {
		severity = models.SeverityCritical
	}
	a := models.Alert{
		ID:       uuid.NewString(),
		Severity: severity,
		Source:   "monitor",
		Title:    "Overdue customers above threshold",
		Message: fmt.Sprintf("%d customers have overdue accounts (threshold %d)",
			count, m.cfg.OverdueThreshold),
		Metadata: map[string]string{
			"count":     fmt.Sprintf("%d", count),
			"threshold": fmt.Sprintf("%d", m.cfg.OverdueThreshold),
		},
		CreatedAt: m.now(),
	}
	if err := m.sink.Dispatch(ctx, a, nil); err != nil {
		m.log.WithError(err).Error("failed to dispatch overdue alert")
	}
}
