package ratelimit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
	"github.com/dmitrymomot/tenantkit/pkg/tier"
)

// KeyFunc derives the endpoint scope of a request for per-endpoint limits.
type KeyFunc func(r *http.Request) string

// GlobalScope applies one shared window per tenant regardless of endpoint.
func GlobalScope(*http.Request) string { return "global" }

// EndpointScope applies a separate window per method and path.
func EndpointScope(r *http.Request) string { return r.Method + " " + r.URL.Path }

// UsageRecorder receives a fire-and-forget notification for every request
// that passed the limiter, typically wired to the usage meter. Failures are
// the recorder's problem; admission never waits on it.
type UsageRecorder func(ctx context.Context, tenantID uuid.UUID)

// windowKey builds the store key for one (tenant, endpoint-scope) pair.
func windowKey(tenantID uuid.UUID, scope string) string {
	return "ratelimit:" + tenantID.String() + ":" + scope
}

type middlewareConfig struct {
	keyFunc KeyFunc
	record  UsageRecorder
	log     *slog.Logger
}

// MiddlewareOption configures the tenant rate limit middleware.
type MiddlewareOption func(*middlewareConfig)

// WithKeyFunc sets the endpoint scoping. Defaults to GlobalScope.
func WithKeyFunc(fn KeyFunc) MiddlewareOption {
	return func(c *middlewareConfig) {
		if fn != nil {
			c.keyFunc = fn
		}
	}
}

// WithUsageRecorder wires fire-and-forget usage metering.
func WithUsageRecorder(fn UsageRecorder) MiddlewareOption {
	return func(c *middlewareConfig) { c.record = fn }
}

// WithLogger sets the middleware logger.
func WithLogger(log *slog.Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// Middleware enforces the tenant's requests-per-minute ceiling. It must run
// inside an established tenant scope; requests without one pass through
// untouched (public routes are not rate limited per tenant).
//
// Every limited response carries X-RateLimit-Limit, X-RateLimit-Remaining,
// and X-RateLimit-Reset (unix seconds); rejections additionally carry
// Retry-After and answer 429.
//
// When the backing store is unreachable the middleware fails open: the
// request proceeds and the outage is logged at error level, because during
// the outage limits are silently unenforced.
func Middleware(limiter *SlidingWindow, table tier.Table, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		keyFunc: GlobalScope,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tn, ok := tenant.FromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			limit := tn.EffectiveLimits(table).RequestsPerMinute
			key := windowKey(tn.ID, cfg.keyFunc(r))

			result, err := limiter.Allow(r.Context(), key, limit)
			if err != nil {
				cfg.log.ErrorContext(r.Context(),
					"rate limit store unreachable, failing open: limits are not enforced",
					slog.String("tenant_id", tn.ID.String()),
					slog.Any("error", err))
				cfg.track(r.Context(), tn.ID)
				next.ServeHTTP(w, r)
				return
			}

			// An unlimited tier has no window to report; headers saying
			// "limit -1, remaining 0" read as exhausted to clients.
			if result.Limit > 0 {
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(0, result.Remaining)))
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
			}

			if !result.Allowed {
				retryAfter := max(1, int(result.RetryAfter().Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}

			cfg.track(r.Context(), tn.ID)
			next.ServeHTTP(w, r)
		})
	}
}

// track hands the admitted request to the usage recorder without blocking
// the response path. The context is detached so a client disconnect does not
// cancel the increment mid-flight.
func (c *middlewareConfig) track(ctx context.Context, tenantID uuid.UUID) {
	if c.record == nil {
		return
	}
	go c.record(context.WithoutCancel(ctx), tenantID)
}
