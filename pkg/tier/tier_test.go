package tier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/config"
	"github.com/dmitrymomot/tenantkit/pkg/tier"
)

func TestTierOrdering(t *testing.T) {
	t.Parallel()

	assert.True(t, tier.Starter.Rank() > tier.Free.Rank())
	assert.True(t, tier.Professional.Rank() > tier.Starter.Rank())
	assert.True(t, tier.Enterprise.Rank() > tier.Professional.Rank())

	assert.True(t, tier.Enterprise.AtLeast(tier.Free))
	assert.True(t, tier.Starter.AtLeast(tier.Starter))
	assert.False(t, tier.Free.AtLeast(tier.Starter))

	assert.Equal(t, -1, tier.Tier("unknown").Rank())
	assert.False(t, tier.Tier("unknown").Valid())
	assert.True(t, tier.Professional.Valid())
}

func TestTableDefaults(t *testing.T) {
	var cfg tier.Config
	require.NoError(t, config.Load(&cfg))

	table := tier.NewTable(cfg)

	assert.Equal(t, 60, table.For(tier.Starter).RequestsPerMinute)
	assert.Equal(t, int64(50000), table.For(tier.Professional).TransactionsPerMonth)
	assert.Equal(t, tier.Unlimited, table.For(tier.Enterprise).TransactionsPerMonth)
}

func TestTableUnknownTierFallsBackToFree(t *testing.T) {
	t.Parallel()

	table := tier.Table{
		tier.Free:    {RequestsPerMinute: 10},
		tier.Starter: {RequestsPerMinute: 60},
	}

	assert.Equal(t, 10, table.For(tier.Tier("bogus")).RequestsPerMinute)
	assert.Equal(t, 60, table.For(tier.Starter).RequestsPerMinute)
}
