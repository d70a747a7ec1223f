package tenant_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
	"github.com/dmitrymomot/tenantkit/pkg/tier"
)

func TestTenantJSONRoundTrip(t *testing.T) {
	t.Parallel()

	original := &tenant.Tenant{
		ID:      uuid.New(),
		Slug:    "acme",
		Name:    "Acme Corp",
		Tier:    tier.Professional,
		Domains: []string{"pay.acme.com", "billing.acme.com"},
		Settings: tenant.Settings{
			PrimaryColor: "#1a73e8",
			LogoURL:      "https://cdn.acme.com/logo.png",
			Locale:       "en-US",
			Currency:     "USD",
		},
		Limits:    &tier.Limits{Users: 50, TransactionsPerMonth: 100000, RequestsPerMinute: 500},
		Active:    true,
		APIKey:    "pk_live_acme",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	raw, err := json.Marshal(original)
	require.NoError(t, err)

	var restored tenant.Tenant
	require.NoError(t, json.Unmarshal(raw, &restored))

	assert.Equal(t, original.Slug, restored.Slug)
	assert.Equal(t, original.Tier, restored.Tier)
	assert.Equal(t, original.Domains, restored.Domains)
	assert.Equal(t, original.Limits, restored.Limits)
	assert.Equal(t, original.APIKey, restored.APIKey)
}

func TestEffectiveLimits(t *testing.T) {
	t.Parallel()

	table := tier.Table{
		tier.Free:    {RequestsPerMinute: 20},
		tier.Starter: {RequestsPerMinute: 60, TransactionsPerMonth: 5000},
	}

	t.Run("tier limits by default", func(t *testing.T) {
		t.Parallel()

		tn := &tenant.Tenant{Tier: tier.Starter}
		assert.Equal(t, 60, tn.EffectiveLimits(table).RequestsPerMinute)
	})

	t.Run("overrides win", func(t *testing.T) {
		t.Parallel()

		tn := &tenant.Tenant{
			Tier:   tier.Starter,
			Limits: &tier.Limits{RequestsPerMinute: 120},
		}
		assert.Equal(t, 120, tn.EffectiveLimits(table).RequestsPerMinute)
	})

	t.Run("unknown tier falls back to free", func(t *testing.T) {
		t.Parallel()

		tn := &tenant.Tenant{Tier: tier.Tier("legacy")}
		assert.Equal(t, 20, tn.EffectiveLimits(table).RequestsPerMinute)
	})
}

func TestMethodRank(t *testing.T) {
	t.Parallel()

	assert.Greater(t, tenant.MethodClaim.Rank(), tenant.MethodHeader.Rank())
	assert.Greater(t, tenant.MethodHeader.Rank(), tenant.MethodSubdomain.Rank())
	assert.Greater(t, tenant.MethodSubdomain.Rank(), tenant.MethodDomain.Rank())
	assert.Equal(t, 0, tenant.Method("bogus").Rank())
}
