package tenant

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantkit/pkg/slug"
)

// Resolver attributes requests to tenants using cache-assisted lookups
// against the Directory.
type Resolver struct {
	dir        Directory
	cache      Cache
	ttl        time.Duration
	baseDomain string
	header     string
	claims     ClaimsFunc
	log        *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithCache sets the tenant snapshot cache. Defaults to an in-memory cache.
func WithCache(cache Cache) ResolverOption {
	return func(r *Resolver) {
		if cache != nil {
			r.cache = cache
		}
	}
}

// WithClaimsFunc overrides how the verified claim set is extracted from a
// request. The default reads claims stored by WithClaims.
func WithClaimsFunc(fn ClaimsFunc) ResolverOption {
	return func(r *Resolver) {
		if fn != nil {
			r.claims = fn
		}
	}
}

// WithLogger sets the resolver's logger.
func WithLogger(log *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// NewResolver creates a resolver backed by dir.
func NewResolver(dir Directory, cfg Config, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		dir:        dir,
		cache:      NewMemoryCache(DefaultCacheSize),
		ttl:        cfg.CacheTTL,
		baseDomain: strings.ToLower(strings.TrimSpace(cfg.BaseDomain)),
		header:     cfg.Header,
		claims:     defaultClaimsFunc,
		log:        slog.Default(),
	}
	if r.ttl <= 0 {
		r.ttl = 300 * time.Second
	}
	if r.header == "" {
		r.header = "X-Tenant-ID"
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve attributes the request to a tenant, trying each strategy in
// priority order. A nil resolution with a nil error means no strategy
// matched — a normal outcome, not an error. Errors are reserved for
// directory failures.
func (r *Resolver) Resolve(req *http.Request) (*Resolution, error) {
	ctx := req.Context()

	// 1. Verified claim set: highest trust, cryptographic verification
	// already happened upstream.
	if claims := r.claims(req); claims != nil {
		if raw := tenantIDClaim(claims); raw != "" {
			t, err := r.byID(ctx, raw)
			if err != nil {
				return nil, err
			}
			if t != nil {
				return newResolution(t, MethodClaim), nil
			}
		}
	}

	// 2. Explicit header: id, API key, or slug through one preference chain.
	if token := strings.TrimSpace(req.Header.Get(r.header)); token != "" {
		t, err := r.byToken(ctx, token)
		if err != nil {
			return nil, err
		}
		if t != nil {
			return newResolution(t, MethodHeader), nil
		}
	}

	// 3. Subdomain of the base domain.
	if slug := Subdomain(req.Host, r.baseDomain); slug != "" {
		t, err := r.bySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		if t != nil {
			return newResolution(t, MethodSubdomain), nil
		}
	}

	// 4. Exact custom-domain match.
	if host := stripPort(strings.ToLower(req.Host)); host != "" {
		t, err := r.byDomain(ctx, host)
		if err != nil {
			return nil, err
		}
		if t != nil {
			return newResolution(t, MethodDomain), nil
		}
	}

	return nil, nil
}

// Invalidate removes every cache entry keyed by the tenant's identifiers.
func (r *Resolver) Invalidate(ctx context.Context, t *Tenant) {
	Invalidate(ctx, r.cache, t)
}

func newResolution(t *Tenant, m Method) *Resolution {
	return &Resolution{Tenant: t, Method: m, ResolvedAt: time.Now().UTC()}
}

func (r *Resolver) byID(ctx context.Context, raw string) (*Tenant, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, nil
	}
	return r.lookup(ctx, KeyByID(id), func(ctx context.Context) (*Tenant, error) {
		return r.dir.FindByID(ctx, id)
	})
}

func (r *Resolver) byToken(ctx context.Context, token string) (*Tenant, error) {
	return r.lookup(ctx, KeyByToken(token), func(ctx context.Context) (*Tenant, error) {
		if id, err := uuid.Parse(token); err == nil {
			if t, err := r.dir.FindByID(ctx, id); err == nil {
				return t, nil
			} else if !errors.Is(err, ErrTenantNotFound) {
				return nil, err
			}
		}
		if t, err := r.dir.FindByAPIKey(ctx, token); err == nil {
			return t, nil
		} else if !errors.Is(err, ErrTenantNotFound) {
			return nil, err
		}
		return r.dir.FindBySlug(ctx, token)
	})
}

func (r *Resolver) bySlug(ctx context.Context, slug string) (*Tenant, error) {
	return r.lookup(ctx, KeyBySlug(slug), func(ctx context.Context) (*Tenant, error) {
		return r.dir.FindBySlug(ctx, slug)
	})
}

func (r *Resolver) byDomain(ctx context.Context, domain string) (*Tenant, error) {
	return r.lookup(ctx, KeyByDomain(domain), func(ctx context.Context) (*Tenant, error) {
		return r.dir.FindByDomain(ctx, domain)
	})
}

// lookup is the cache-then-directory path shared by all strategies. Inactive
// tenants are treated as misses so a deactivated account simply stops
// resolving. Not-found is a miss, not an error.
func (r *Resolver) lookup(ctx context.Context, key string, fetch func(context.Context) (*Tenant, error)) (*Tenant, error) {
	if t, ok := r.cache.Get(ctx, key); ok {
		if !t.Active {
			return nil, nil
		}
		return t, nil
	}

	t, err := fetch(ctx)
	if err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !t.Active {
		return nil, nil
	}

	r.cache.Set(ctx, key, t, r.ttl)
	return t, nil
}

// Subdomain extracts the tenant slug from a request host: strips any port,
// ignores a literal "www" label, and returns the label immediately preceding
// baseDomain. Returns "" when the host is the bare base domain, does not
// belong to it, or the label is not slug-shaped.
func Subdomain(host, baseDomain string) string {
	if baseDomain == "" {
		return ""
	}

	host = stripPort(strings.ToLower(host))
	host = strings.TrimPrefix(host, "www.")

	suffix := "." + baseDomain
	if !strings.HasSuffix(host, suffix) {
		return ""
	}

	rest := strings.TrimSuffix(host, suffix)
	if rest == "" {
		return ""
	}

	labels := strings.Split(rest, ".")
	label := labels[len(labels)-1]
	if label == "www" || !slug.Valid(label) {
		return ""
	}
	return label
}

func stripPort(host string) string {
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		return host[:idx]
	}
	return host
}
