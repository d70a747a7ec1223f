package usage_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
	"github.com/dmitrymomot/tenantkit/pkg/tier"
	"github.com/dmitrymomot/tenantkit/pkg/usage"
)

var meterTable = tier.Table{
	tier.Free:         {TransactionsPerMonth: 500},
	tier.Professional: {TransactionsPerMonth: 50000},
	tier.Enterprise:   {TransactionsPerMonth: tier.Unlimited},
}

func meterTenant(t tier.Tier) *tenant.Tenant {
	return &tenant.Tenant{ID: uuid.New(), Slug: "acme", Tier: t, Active: true}
}

func fixedClock(stamp string) func() time.Time {
	t, err := time.Parse("2006-01-02", stamp)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func newMeter(opts ...usage.MeterOption) *usage.Meter {
	return usage.NewMeter(usage.NewMemoryStore(), meterTable, usage.Config{RetentionDays: 90}, opts...)
}

func TestMeterIncrementAndSummary(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("professional tier percent used", func(t *testing.T) {
		t.Parallel()

		meter := newMeter(usage.WithClock(fixedClock("2024-01-15")))
		tn := meterTenant(tier.Professional)

		for range 892 {
			require.NoError(t, meter.Increment(ctx, tn.ID, usage.MetricTransactions, 1))
		}

		summary, err := meter.Summary(ctx, tn, usage.Period("2024-01"))
		require.NoError(t, err)

		assert.Equal(t, int64(892), summary.Counters[usage.MetricTransactions])
		assert.InDelta(t, 1.78, summary.TransactionsPercentUsed, 0.001)
	})

	t.Run("unlimited cap reports zero percent", func(t *testing.T) {
		t.Parallel()

		meter := newMeter()
		tn := meterTenant(tier.Enterprise)

		require.NoError(t, meter.Increment(ctx, tn.ID, usage.MetricTransactions, 1_000_000))

		summary, err := meter.Summary(ctx, tn, "")
		require.NoError(t, err)
		assert.Zero(t, summary.TransactionsPercentUsed)
	})

	t.Run("defaults to current period", func(t *testing.T) {
		t.Parallel()

		meter := newMeter(usage.WithClock(fixedClock("2024-03-02")))
		tn := meterTenant(tier.Free)

		require.NoError(t, meter.Increment(ctx, tn.ID, usage.MetricAPICalls, 5))

		summary, err := meter.Summary(ctx, tn, "")
		require.NoError(t, err)
		assert.Equal(t, usage.Period("2024-03"), summary.Period)
		assert.Equal(t, int64(5), summary.Counters[usage.MetricAPICalls])
	})

	t.Run("counters accumulate and never decrement", func(t *testing.T) {
		t.Parallel()

		meter := newMeter()
		tn := meterTenant(tier.Free)

		require.NoError(t, meter.Increment(ctx, tn.ID, usage.MetricStorageBytes, 1024))
		require.NoError(t, meter.Increment(ctx, tn.ID, usage.MetricStorageBytes, 2048))

		summary, err := meter.Summary(ctx, tn, "")
		require.NoError(t, err)
		assert.Equal(t, int64(3072), summary.Counters[usage.MetricStorageBytes])
	})

	t.Run("concurrent increments are all counted", func(t *testing.T) {
		t.Parallel()

		meter := newMeter()
		tn := meterTenant(tier.Free)

		var wg sync.WaitGroup
		for range 100 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = meter.Increment(ctx, tn.ID, usage.MetricTransactions, 1)
			}()
		}
		wg.Wait()

		summary, err := meter.Summary(ctx, tn, "")
		require.NoError(t, err)
		assert.Equal(t, int64(100), summary.Counters[usage.MetricTransactions])
	})

	t.Run("tenants do not share counters", func(t *testing.T) {
		t.Parallel()

		meter := newMeter()
		a := meterTenant(tier.Free)
		b := meterTenant(tier.Free)

		require.NoError(t, meter.Increment(ctx, a.ID, usage.MetricTransactions, 7))

		summary, err := meter.Summary(ctx, b, "")
		require.NoError(t, err)
		assert.Zero(t, summary.Counters[usage.MetricTransactions])
	})
}

func TestMeterHistory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	store := usage.NewMemoryStore()
	clock := fixedClock("2024-04-10")
	meter := usage.NewMeter(store, meterTable, usage.Config{RetentionDays: 365},
		usage.WithClock(clock))
	tn := meterTenant(tier.Free)

	// Seed two non-adjacent periods directly through the store.
	require.NoError(t, store.Increment(ctx,
		"usage:"+tn.ID.String()+":2024-04", string(usage.MetricTransactions), 10, 365*24*time.Hour))
	require.NoError(t, store.Increment(ctx,
		"usage:"+tn.ID.String()+":2024-02", string(usage.MetricTransactions), 20, 365*24*time.Hour))

	history, err := meter.History(ctx, tn, 6)
	require.NoError(t, err)

	// Only periods with data, newest first; empty 2024-03 is skipped.
	require.Len(t, history, 2)
	assert.Equal(t, usage.Period("2024-04"), history[0].Period)
	assert.Equal(t, int64(10), history[0].Counters[usage.MetricTransactions])
	assert.Equal(t, usage.Period("2024-02"), history[1].Period)
	assert.Equal(t, int64(20), history[1].Counters[usage.MetricTransactions])
}

func TestMeterTrack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	meter := newMeter()
	tn := meterTenant(tier.Free)

	meter.Track(ctx, tn.ID)
	meter.Track(ctx, tn.ID)

	summary, err := meter.Summary(ctx, tn, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Counters[usage.MetricAPICalls])
}
