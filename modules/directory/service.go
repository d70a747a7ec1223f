package directory

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/slug"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
	"github.com/dmitrymomot/tenantkit/pkg/tier"
)

// maxSlugLength bounds slugs derived from tenant names. Explicit slugs are
// taken as given.
const maxSlugLength = 40

// Storage is what the admin service needs from the registry. *Store
// satisfies it.
type Storage interface {
	tenant.Directory
	Insert(ctx context.Context, t *tenant.Tenant) error
	Replace(ctx context.Context, t *tenant.Tenant) error
}

// Service wraps tenant administration with cache invalidation. Mutations
// drop every cache entry keyed by the tenant's pre-mutation identifiers
// before the write, so a rotated API key or removed domain cannot keep
// resolving from cache.
type Service struct {
	store Storage
	cache tenant.Cache
	log   *slog.Logger
	now   func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithCache sets the cache that mutations invalidate. Without it mutations
// are not broadcast and resolvers serve stale snapshots until TTL expiry.
func WithCache(cache tenant.Cache) ServiceOption {
	return func(s *Service) {
		if cache != nil {
			s.cache = cache
		}
	}
}

// WithLogger sets the service's logger.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides the service's time source. Intended for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a tenant administration service over store.
func NewService(store Storage, opts ...ServiceOption) *Service {
	s := &Service{
		store: store,
		log:   slog.Default(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateParams describes a new tenant.
type CreateParams struct {
	Slug     string
	Name     string
	Tier     tier.Tier
	Domains  []string
	APIKey   string
	Limits   *tier.Limits
	Settings tenant.Settings
}

// UpdateParams carries partial tenant mutations; nil fields are left
// untouched.
type UpdateParams struct {
	Slug     *string
	Name     *string
	Tier     *tier.Tier
	Domains  *[]string
	APIKey   *string
	Limits   *tier.Limits
	Settings *tenant.Settings
}

// Create registers a new active tenant. An empty slug is derived from the
// name; slugs and domains are normalized to lowercase. A slug that ends up
// malformed is rejected with tenant.ErrInvalidIdentifier and an unknown tier
// degrades to Free.
func (s *Service) Create(ctx context.Context, p CreateParams) (*tenant.Tenant, error) {
	handle := normalizeSlug(p.Slug)
	if handle == "" && p.Name != "" {
		handle = slug.Make(p.Name, slug.MaxLength(maxSlugLength))
	}
	if !slug.Valid(handle) {
		return nil, tenant.ErrInvalidIdentifier
	}

	now := s.now().UTC()
	t := &tenant.Tenant{
		ID:        uuid.New(),
		Slug:      handle,
		Name:      strings.TrimSpace(p.Name),
		Tier:      p.Tier,
		Domains:   normalizeDomains(p.Domains),
		Settings:  p.Settings,
		Limits:    p.Limits,
		Active:    true,
		APIKey:    p.APIKey,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if !t.Tier.Valid() {
		t.Tier = tier.Free
	}

	if err := s.store.Insert(ctx, t); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "tenant created",
		logger.TenantID(t.ID),
		slog.String("slug", t.Slug),
		slog.String("tier", string(t.Tier)))
	return t, nil
}

// Update applies p to the tenant and returns the new record. The cache is
// invalidated with the pre-mutation snapshot before the write commits.
func (s *Service) Update(ctx context.Context, id uuid.UUID, p UpdateParams) (*tenant.Tenant, error) {
	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *current
	if p.Slug != nil {
		handle := normalizeSlug(*p.Slug)
		if !slug.Valid(handle) {
			return nil, tenant.ErrInvalidIdentifier
		}
		updated.Slug = handle
	}
	if p.Name != nil {
		updated.Name = strings.TrimSpace(*p.Name)
	}
	if p.Tier != nil {
		updated.Tier = *p.Tier
	}
	if p.Domains != nil {
		updated.Domains = normalizeDomains(*p.Domains)
	}
	if p.APIKey != nil {
		updated.APIKey = *p.APIKey
	}
	if p.Limits != nil {
		updated.Limits = p.Limits
	}
	if p.Settings != nil {
		updated.Settings = *p.Settings
	}
	updated.UpdatedAt = s.now().UTC()

	tenant.Invalidate(ctx, s.cache, current)

	if err := s.store.Replace(ctx, &updated); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "tenant updated",
		logger.TenantID(id),
		slog.String("slug", updated.Slug))
	return &updated, nil
}

// RotateAPIKey issues a fresh API key for the tenant and returns it. The old
// key's cache entry is dropped before the write, so it stops resolving
// immediately rather than at TTL expiry.
func (s *Service) RotateAPIKey(ctx context.Context, id uuid.UUID) (string, error) {
	key, err := generateAPIKey()
	if err != nil {
		return "", err
	}
	if _, err := s.Update(ctx, id, UpdateParams{APIKey: &key}); err != nil {
		return "", err
	}
	return key, nil
}

// generateAPIKey produces an opaque credential: 24 random bytes, URL-safe
// base64, with a recognizable prefix for log scrubbing and support triage.
func generateAPIKey() (string, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return "tk_" + base64.RawURLEncoding.EncodeToString(raw), nil
}

// Deactivate suspends the tenant. Its credentials stop resolving as soon as
// the pre-mutation cache entries are gone.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.setActive(ctx, id, false)
}

// Activate lifts a suspension.
func (s *Service) Activate(ctx context.Context, id uuid.UUID) error {
	return s.setActive(ctx, id, true)
}

func (s *Service) setActive(ctx context.Context, id uuid.UUID, active bool) error {
	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}

	updated := *current
	updated.Active = active
	updated.UpdatedAt = s.now().UTC()

	tenant.Invalidate(ctx, s.cache, current)

	if err := s.store.Replace(ctx, &updated); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "tenant activation changed",
		logger.TenantID(id),
		slog.Bool("active", active))
	return nil
}

func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

func normalizeDomains(domains []string) []string {
	if len(domains) == 0 {
		return nil
	}
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}
