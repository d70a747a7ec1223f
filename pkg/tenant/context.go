package tenant

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// contextKey is a private type so no other package can collide with or
// overwrite the stored resolution.
type contextKey struct{}

// WithResolution binds a resolution to the context. Everything executing
// under the returned context — including goroutines it spawns — observes the
// same tenant; concurrent requests each own their context chain, so scopes
// can never bleed across requests. The scope ends when the request's context
// tree is released; no explicit teardown exists or is needed.
func WithResolution(ctx context.Context, res *Resolution) context.Context {
	return context.WithValue(ctx, contextKey{}, res)
}

// ResolutionFromContext retrieves the full resolution, including the method
// the tenant was identified by, for trust-sensitive decisions and auditing.
func ResolutionFromContext(ctx context.Context) (*Resolution, bool) {
	res, ok := ctx.Value(contextKey{}).(*Resolution)
	return res, ok && res != nil && res.Tenant != nil
}

// FromContext retrieves the resolved tenant. Returns nil, false outside any
// established scope.
func FromContext(ctx context.Context) (*Tenant, bool) {
	res, ok := ResolutionFromContext(ctx)
	if !ok {
		return nil, false
	}
	return res.Tenant, true
}

// HasContext reports whether a tenant scope is established.
func HasContext(ctx context.Context) bool {
	_, ok := FromContext(ctx)
	return ok
}

// IDFromContext retrieves the resolved tenant's id.
func IDFromContext(ctx context.Context) (uuid.UUID, bool) {
	t, ok := FromContext(ctx)
	if !ok {
		return uuid.UUID{}, false
	}
	return t.ID, true
}

// MustFromContext retrieves the resolved tenant or panics. Calling it
// outside an established scope is a programming error, not a runtime
// condition, so it fails loudly.
func MustFromContext(ctx context.Context) *Tenant {
	t, ok := FromContext(ctx)
	if !ok {
		panic(ErrNoTenantInContext)
	}
	return t
}

// LoggerExtractor returns a logger context extractor that attaches the
// resolved tenant id to every log record emitted within a tenant scope.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return slog.String("tenant_id", id.String()), true
		}
		return slog.Attr{}, false
	}
}
