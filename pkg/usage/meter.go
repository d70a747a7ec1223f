package usage

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
	"github.com/dmitrymomot/tenantkit/pkg/tier"
)

// Summary reports one period's consumption against the tenant's caps.
type Summary struct {
	Period   Period           `json:"period"`
	Counters map[Metric]int64 `json:"counters"`
	// TransactionsPercentUsed is the transactions counter as a percentage
	// of the monthly cap, rounded to two decimals. Zero for unlimited caps.
	TransactionsPercentUsed float64 `json:"transaction_percent_used"`
}

// Meter accumulates per-tenant monthly counters.
type Meter struct {
	store     Store
	table     tier.Table
	retention time.Duration
	log       *slog.Logger
	now       func() time.Time
}

// MeterOption configures a Meter.
type MeterOption func(*Meter)

// WithLogger sets the meter's logger.
func WithLogger(log *slog.Logger) MeterOption {
	return func(m *Meter) {
		if log != nil {
			m.log = log
		}
	}
}

// WithClock overrides the meter's time source. Intended for tests.
func WithClock(now func() time.Time) MeterOption {
	return func(m *Meter) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMeter creates a meter over store using the tier table for caps.
func NewMeter(store Store, table tier.Table, cfg Config, opts ...MeterOption) *Meter {
	m := &Meter{
		store:     store,
		table:     table,
		retention: cfg.Retention(),
		log:       slog.Default(),
		now:       time.Now,
	}
	if m.retention <= 0 {
		m.retention = 90 * 24 * time.Hour
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// counterKey addresses one (tenant, period) counter group.
func counterKey(tenantID uuid.UUID, period Period) string {
	return "usage:" + tenantID.String() + ":" + string(period)
}

// Increment atomically adds n to the metric for the current period.
func (m *Meter) Increment(ctx context.Context, tenantID uuid.UUID, metric Metric, n int64) error {
	if n <= 0 {
		n = 1
	}
	period := PeriodOf(m.now())
	if err := m.store.Increment(ctx, counterKey(tenantID, period), string(metric), n, m.retention); err != nil {
		return fmt.Errorf("usage: increment %s for tenant %s: %w", metric, tenantID, err)
	}
	return nil
}

// Track records one API call. It matches the rate limiter's usage recorder
// signature and absorbs store failures with a warning: metering is
// fire-and-forget and must never affect request handling.
func (m *Meter) Track(ctx context.Context, tenantID uuid.UUID) {
	if err := m.Increment(ctx, tenantID, MetricAPICalls, 1); err != nil {
		m.log.WarnContext(ctx, "usage tracking failed",
			slog.String("tenant_id", tenantID.String()),
			slog.Any("error", err))
	}
}

// Summary returns the tenant's counters for the period (current period when
// empty) with the transactions counter expressed against the monthly cap.
func (m *Meter) Summary(ctx context.Context, tn *tenant.Tenant, period Period) (*Summary, error) {
	if period == "" {
		period = PeriodOf(m.now())
	}

	raw, err := m.store.Counters(ctx, counterKey(tn.ID, period))
	if err != nil {
		return nil, fmt.Errorf("usage: summary for tenant %s: %w", tn.ID, err)
	}

	counters := make(map[Metric]int64, len(raw))
	for field, v := range raw {
		counters[Metric(field)] = v
	}

	return &Summary{
		Period:                  period,
		Counters:                counters,
		TransactionsPercentUsed: percentUsed(counters[MetricTransactions], tn.EffectiveLimits(m.table).TransactionsPerMonth),
	}, nil
}

// History walks backward up to months calendar periods from the current one
// and returns summaries for periods that have data, newest first.
func (m *Meter) History(ctx context.Context, tn *tenant.Tenant, months int) ([]*Summary, error) {
	if months <= 0 {
		months = 1
	}

	current := PeriodOf(m.now())
	summaries := make([]*Summary, 0, months)

	for i := range months {
		period := current.Previous(i)
		s, err := m.Summary(ctx, tn, period)
		if err != nil {
			return nil, err
		}
		if len(s.Counters) == 0 {
			continue
		}
		summaries = append(summaries, s)
	}

	return summaries, nil
}

// percentUsed divides used by cap as a percentage rounded to two decimals.
// Unbounded caps report zero rather than dividing by a sentinel.
func percentUsed(used, cap int64) float64 {
	if cap <= 0 {
		return 0
	}
	return math.Round(float64(used)/float64(cap)*10000) / 100
}
