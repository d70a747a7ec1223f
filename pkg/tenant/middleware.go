package tenant

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// ErrorHandler converts a resolution failure into an HTTP response.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// DefaultErrorHandler answers unresolved tenants with 404 rather than 401 or
// 403 so callers cannot distinguish "bad credential" from "no such tenant".
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrTenantNotFound), errors.Is(err, ErrNoTenantInContext):
		http.Error(w, "Not Found", http.StatusNotFound)
	case errors.Is(err, ErrInactiveTenant):
		http.Error(w, "Not Found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidIdentifier):
		http.Error(w, "Bad Request", http.StatusBadRequest)
	default:
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

type middlewareConfig struct {
	skipPaths    []string
	errorHandler ErrorHandler
	log          *slog.Logger
}

// MiddlewareOption configures the resolution middleware.
type MiddlewareOption func(*middlewareConfig)

// WithSkipPaths lists path prefixes that bypass tenant resolution entirely.
// Resolved at registration time, not per request by reflection.
func WithSkipPaths(paths ...string) MiddlewareOption {
	return func(c *middlewareConfig) { c.skipPaths = append(c.skipPaths, paths...) }
}

// WithErrorHandler overrides how resolver failures are answered.
func WithErrorHandler(h ErrorHandler) MiddlewareOption {
	return func(c *middlewareConfig) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// WithMiddlewareLogger sets the middleware logger.
func WithMiddlewareLogger(log *slog.Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// Middleware resolves the tenant for each request and establishes the tenant
// scope on the request context. Requests no strategy matches continue
// without a scope; protect routes that need one with RequireTenant.
func Middleware(resolver *Resolver, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		errorHandler: DefaultErrorHandler,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			res, err := resolver.Resolve(r)
			if err != nil {
				cfg.log.ErrorContext(r.Context(), "tenant resolution failed",
					slog.Any("error", err))
				cfg.errorHandler(w, r, err)
				return
			}

			if res == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithResolution(r.Context(), res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireTenant rejects requests that reach it without an established tenant
// scope. Apply it to protected route groups at registration time.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = DefaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !HasContext(r.Context()) {
				errorHandler(w, r, ErrNoTenantInContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
