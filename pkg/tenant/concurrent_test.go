package tenant_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// Concurrent requests for different tenants must never observe each other's
// scope, including across suspension points inside a single request.
func TestConcurrentScopeIsolation(t *testing.T) {
	t.Parallel()

	const tenants = 20
	const requestsPerTenant = 10

	dir := newFakeDirectory()
	slugs := make([]string, tenants)
	for i := range tenants {
		slug := fmt.Sprintf("tenant-%d", i)
		slugs[i] = slug
		dir.add(activeTenant(slug))
	}
	resolver := newResolver(dir)

	handler := tenant.Middleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		before := tenant.MustFromContext(r.Context())

		// Suspend between two reads of the scope, giving interleaved
		// requests every chance to clobber it if isolation were broken.
		time.Sleep(time.Millisecond)

		after := tenant.MustFromContext(r.Context())
		if before.ID != after.ID {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("X-Resolved-Slug", after.Slug)
		w.WriteHeader(http.StatusOK)
	}))

	var wg sync.WaitGroup
	errs := make(chan string, tenants*requestsPerTenant)

	for _, slug := range slugs {
		for range requestsPerTenant {
			wg.Add(1)
			go func(slug string) {
				defer wg.Done()

				req := httptest.NewRequest("GET", "http://"+slug+".paylane.io/", nil)
				req.Host = slug + ".paylane.io"
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, req)

				if rec.Code != http.StatusOK {
					errs <- fmt.Sprintf("scope swapped mid-request for %s", slug)
					return
				}
				if got := rec.Header().Get("X-Resolved-Slug"); got != slug {
					errs <- fmt.Sprintf("request for %s observed %s", slug, got)
				}
			}(slug)
		}
	}

	wg.Wait()
	close(errs)

	for msg := range errs {
		require.Fail(t, msg)
	}
}

func TestConcurrentCacheAccess(t *testing.T) {
	t.Parallel()

	cache := tenant.NewMemoryCache(50)
	ctx := t.Context()

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("tenant:slug:t%d", i%10)
			cache.Set(ctx, key, activeTenant(fmt.Sprintf("t%d", i%10)), time.Minute)
			cache.Get(ctx, key)
			cache.Delete(ctx, key)
		}(i)
	}
	wg.Wait()

	// The cache must stay usable after concurrent churn.
	cache.Set(ctx, "tenant:slug:final", activeTenant("final"), time.Minute)
	_, ok := cache.Get(ctx, "tenant:slug:final")
	assert.True(t, ok)
}
