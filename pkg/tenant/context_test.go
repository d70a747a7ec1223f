package tenant_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

func TestContextCarrier(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		tn := activeTenant("acme")
		res := &tenant.Resolution{Tenant: tn, Method: tenant.MethodHeader, ResolvedAt: time.Now()}
		ctx := tenant.WithResolution(context.Background(), res)

		got, ok := tenant.FromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, tn.ID, got.ID)

		gotRes, ok := tenant.ResolutionFromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, tenant.MethodHeader, gotRes.Method)

		id, ok := tenant.IDFromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, tn.ID, id)

		assert.True(t, tenant.HasContext(ctx))
	})

	t.Run("empty outside scope", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()

		_, ok := tenant.FromContext(ctx)
		assert.False(t, ok)
		_, ok = tenant.IDFromContext(ctx)
		assert.False(t, ok)
		assert.False(t, tenant.HasContext(ctx))
	})

	t.Run("nil resolution is no scope", func(t *testing.T) {
		t.Parallel()

		ctx := tenant.WithResolution(context.Background(), nil)
		assert.False(t, tenant.HasContext(ctx))
	})

	t.Run("must panics outside scope", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			tenant.MustFromContext(context.Background())
		})
	})

	t.Run("scope survives suspension points", func(t *testing.T) {
		t.Parallel()

		tn := activeTenant("acme")
		ctx := tenant.WithResolution(context.Background(),
			&tenant.Resolution{Tenant: tn, Method: tenant.MethodClaim, ResolvedAt: time.Now()})

		done := make(chan struct{})
		go func() {
			defer close(done)
			time.Sleep(5 * time.Millisecond) // simulate async continuation
			got, ok := tenant.FromContext(ctx)
			assert.True(t, ok)
			assert.Equal(t, tn.ID, got.ID)
		}()
		<-done
	})
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	extract := tenant.LoggerExtractor()

	tn := activeTenant("acme")
	ctx := tenant.WithResolution(context.Background(),
		&tenant.Resolution{Tenant: tn, Method: tenant.MethodHeader, ResolvedAt: time.Now()})

	attr, ok := extract(ctx)
	require.True(t, ok)
	assert.Equal(t, "tenant_id", attr.Key)
	assert.Equal(t, tn.ID.String(), attr.Value.String())

	_, ok = extract(context.Background())
	assert.False(t, ok)
}
