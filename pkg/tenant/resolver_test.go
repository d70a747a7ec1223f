package tenant_test

import (
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

func newResolver(dir tenant.Directory, opts ...tenant.ResolverOption) *tenant.Resolver {
	cfg := tenant.Config{
		BaseDomain: "paylane.io",
		Header:     "X-Tenant-ID",
		CacheTTL:   300 * time.Second,
	}
	return tenant.NewResolver(dir, cfg, opts...)
}

func TestResolverStrategies(t *testing.T) {
	t.Parallel()

	t.Run("claim set wins over conflicting header", func(t *testing.T) {
		t.Parallel()

		claimed := activeTenant("claimed")
		other := activeTenant("other")
		resolver := newResolver(newFakeDirectory(claimed, other))

		req := httptest.NewRequest("GET", "http://api.paylane.io/payments", nil)
		req.Header.Set("X-Tenant-ID", other.Slug)
		req = req.WithContext(tenant.WithClaims(req.Context(), jwt.MapClaims{
			"tenant_id": claimed.ID.String(),
		}))

		res, err := resolver.Resolve(req)
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Equal(t, claimed.ID, res.Tenant.ID)
		assert.Equal(t, tenant.MethodClaim, res.Method)
	})

	t.Run("tid claim field accepted", func(t *testing.T) {
		t.Parallel()

		claimed := activeTenant("tid-claimed")
		resolver := newResolver(newFakeDirectory(claimed))

		req := httptest.NewRequest("GET", "http://api.paylane.io/", nil)
		req = req.WithContext(tenant.WithClaims(req.Context(), jwt.MapClaims{
			"tid": claimed.ID.String(),
		}))

		res, err := resolver.Resolve(req)
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Equal(t, claimed.ID, res.Tenant.ID)
	})

	t.Run("header resolves id then api key then slug", func(t *testing.T) {
		t.Parallel()

		byKey := activeTenant("by-key")
		byKey.APIKey = "pk_live_12345"
		bySlug := activeTenant("by-slug")
		resolver := newResolver(newFakeDirectory(byKey, bySlug))

		for header, want := range map[string]*tenant.Tenant{
			byKey.ID.String(): byKey,
			"pk_live_12345":   byKey,
			"by-slug":         bySlug,
		} {
			req := httptest.NewRequest("GET", "http://api.paylane.io/", nil)
			req.Header.Set("X-Tenant-ID", header)

			res, err := resolver.Resolve(req)
			require.NoError(t, err)
			require.NotNil(t, res, "header %q", header)
			assert.Equal(t, want.ID, res.Tenant.ID)
			assert.Equal(t, tenant.MethodHeader, res.Method)
		}
	})

	t.Run("subdomain resolves slug", func(t *testing.T) {
		t.Parallel()

		acme := activeTenant("acme")
		resolver := newResolver(newFakeDirectory(acme))

		req := httptest.NewRequest("GET", "http://acme.paylane.io/", nil)
		req.Host = "acme.paylane.io"

		res, err := resolver.Resolve(req)
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Equal(t, acme.ID, res.Tenant.ID)
		assert.Equal(t, tenant.MethodSubdomain, res.Method)
	})

	t.Run("custom domain matched last", func(t *testing.T) {
		t.Parallel()

		branded := activeTenant("branded")
		branded.Domains = []string{"pay.branded.com"}
		resolver := newResolver(newFakeDirectory(branded))

		req := httptest.NewRequest("GET", "http://pay.branded.com/", nil)
		req.Host = "pay.branded.com:443"

		res, err := resolver.Resolve(req)
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Equal(t, branded.ID, res.Tenant.ID)
		assert.Equal(t, tenant.MethodDomain, res.Method)
	})

	t.Run("no strategy matched is not an error", func(t *testing.T) {
		t.Parallel()

		resolver := newResolver(newFakeDirectory())
		req := httptest.NewRequest("GET", "http://paylane.io/", nil)
		req.Host = "paylane.io"

		res, err := resolver.Resolve(req)
		require.NoError(t, err)
		assert.Nil(t, res)
	})

	t.Run("inactive tenant does not resolve", func(t *testing.T) {
		t.Parallel()

		dormant := activeTenant("dormant")
		dormant.Active = false
		resolver := newResolver(newFakeDirectory(dormant))

		req := httptest.NewRequest("GET", "http://dormant.paylane.io/", nil)
		req.Host = "dormant.paylane.io"

		res, err := resolver.Resolve(req)
		require.NoError(t, err)
		assert.Nil(t, res)
	})
}

func TestSubdomain(t *testing.T) {
	t.Parallel()

	t.Run("strips www and port for any slug and port", func(t *testing.T) {
		t.Parallel()

		for _, slug := range []string{"bank1", "acme", "a", "multi-word-slug"} {
			for _, port := range []string{"80", "443", "8080", "65535"} {
				host := fmt.Sprintf("www.%s.paylane.io:%s", slug, port)
				assert.Equal(t, slug, tenant.Subdomain(host, "paylane.io"), "host %q", host)
			}
		}
	})

	tests := []struct {
		name string
		host string
		base string
		want string
	}{
		{"plain subdomain", "acme.paylane.io", "paylane.io", "acme"},
		{"bare base domain", "paylane.io", "paylane.io", ""},
		{"www on base domain", "www.paylane.io", "paylane.io", ""},
		{"unrelated host", "acme.other.io", "paylane.io", ""},
		{"empty base disables strategy", "acme.paylane.io", "", ""},
		{"deepest label before base wins", "extra.acme.paylane.io", "paylane.io", "acme"},
		{"uppercase host normalized", "ACME.PAYLANE.IO", "paylane.io", "acme"},
		{"invalid label rejected", "-bad.paylane.io", "paylane.io", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tenant.Subdomain(tt.host, tt.base))
		})
	}
}

func TestResolverCaching(t *testing.T) {
	t.Parallel()

	t.Run("second resolution served from cache", func(t *testing.T) {
		t.Parallel()

		acme := activeTenant("acme")
		dir := newFakeDirectory(acme)
		resolver := newResolver(dir)

		req := httptest.NewRequest("GET", "http://acme.paylane.io/", nil)
		req.Host = "acme.paylane.io"

		for range 3 {
			res, err := resolver.Resolve(req)
			require.NoError(t, err)
			require.NotNil(t, res)
		}

		assert.Equal(t, int64(1), dir.lookups.Load())
	})

	t.Run("stale credential fails after invalidation", func(t *testing.T) {
		t.Parallel()

		bank := activeTenant("bank1")
		bank.APIKey = "pk_old_credential"
		dir := newFakeDirectory(bank)
		resolver := newResolver(dir)

		req := httptest.NewRequest("GET", "http://api.paylane.io/", nil)
		req.Header.Set("X-Tenant-ID", "pk_old_credential")

		res, err := resolver.Resolve(req)
		require.NoError(t, err)
		require.NotNil(t, res)

		// Admin rotates the credential: directory changes, old keys are
		// invalidated with the pre-mutation snapshot.
		old := *bank
		bank.APIKey = "pk_new_credential"
		resolver.Invalidate(req.Context(), &old)

		res, err = resolver.Resolve(req)
		require.NoError(t, err)
		assert.Nil(t, res, "old credential must not resolve after rotation")

		req.Header.Set("X-Tenant-ID", "pk_new_credential")
		res, err = resolver.Resolve(req)
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Equal(t, bank.ID, res.Tenant.ID)
	})

	t.Run("noop cache always hits the directory", func(t *testing.T) {
		t.Parallel()

		acme := activeTenant("acme")
		dir := newFakeDirectory(acme)
		resolver := newResolver(dir, tenant.WithCache(tenant.NewNoopCache()))

		req := httptest.NewRequest("GET", "http://acme.paylane.io/", nil)
		req.Host = "acme.paylane.io"

		for range 2 {
			_, err := resolver.Resolve(req)
			require.NoError(t, err)
		}
		assert.Equal(t, int64(2), dir.lookups.Load())
	})
}
