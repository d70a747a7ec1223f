package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantkit/pkg/tier"
)

// Tenant is one isolated customer account sharing the platform.
type Tenant struct {
	ID        uuid.UUID    `json:"id" bson:"_id"`
	Slug      string       `json:"slug" bson:"slug"`
	Name      string       `json:"name" bson:"name"`
	Tier      tier.Tier    `json:"tier" bson:"tier"`
	Domains   []string     `json:"domains,omitempty" bson:"domains,omitempty"`
	Settings  Settings     `json:"settings" bson:"settings"`
	Limits    *tier.Limits `json:"limits,omitempty" bson:"limits,omitempty"`
	Active    bool         `json:"active" bson:"active"`
	APIKey    string       `json:"api_key,omitempty" bson:"api_key,omitempty"`
	CreatedAt time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" bson:"updated_at"`
}

// Settings holds per-tenant branding preferences. None of these fields have
// isolation relevance.
type Settings struct {
	PrimaryColor   string `json:"primary_color,omitempty" bson:"primary_color,omitempty"`
	SecondaryColor string `json:"secondary_color,omitempty" bson:"secondary_color,omitempty"`
	LogoURL        string `json:"logo_url,omitempty" bson:"logo_url,omitempty"`
	Locale         string `json:"locale,omitempty" bson:"locale,omitempty"`
	Currency       string `json:"currency,omitempty" bson:"currency,omitempty"`
}

// EffectiveLimits returns the tenant's limit overrides when present,
// otherwise the limits of its tier.
func (t *Tenant) EffectiveLimits(table tier.Table) tier.Limits {
	if t.Limits != nil {
		return *t.Limits
	}
	return table.For(t.Tier)
}

// Directory is the durable source of truth for tenant records. All Find
// methods return ErrTenantNotFound when no record matches.
type Directory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	FindBySlug(ctx context.Context, slug string) (*Tenant, error)
	FindByAPIKey(ctx context.Context, key string) (*Tenant, error)
	FindByDomain(ctx context.Context, domain string) (*Tenant, error)
}
