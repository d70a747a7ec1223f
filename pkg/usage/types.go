package usage

import (
	"context"
	"time"
)

// Metric names one tracked consumption counter.
type Metric string

const (
	MetricAPICalls       Metric = "api_calls"
	MetricTransactions   Metric = "transactions"
	MetricStorageBytes   Metric = "storage_bytes"
	MetricBandwidthBytes Metric = "bandwidth_bytes"
)

// Store persists counter groups. Keys address one (tenant, period) pair;
// fields are metric names.
type Store interface {
	// Increment atomically adds n to the named counter and refreshes the
	// group's retention window.
	Increment(ctx context.Context, key string, field string, n int64, retention time.Duration) error

	// Counters returns all counters of a group. A missing group yields an
	// empty map, not an error.
	Counters(ctx context.Context, key string) (map[string]int64, error)
}

// Config holds usage meter settings, loaded from the environment.
type Config struct {
	// RetentionDays bounds how long counter groups are kept past their
	// last increment. Must exceed one month for billing reconciliation.
	RetentionDays int `env:"USAGE_RETENTION_DAYS" envDefault:"90"`
}

// Retention returns the configured retention as a duration.
func (c Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}
