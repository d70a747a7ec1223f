package tenant_test

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
	"github.com/dmitrymomot/tenantkit/pkg/tier"
)

// fakeDirectory is an in-memory Directory with lookup counting for cache
// assertions.
type fakeDirectory struct {
	mu      sync.RWMutex
	tenants []*tenant.Tenant
	lookups atomic.Int64
}

func newFakeDirectory(tenants ...*tenant.Tenant) *fakeDirectory {
	return &fakeDirectory{tenants: tenants}
}

func (d *fakeDirectory) add(t *tenant.Tenant) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tenants = append(d.tenants, t)
}

func (d *fakeDirectory) find(match func(*tenant.Tenant) bool) (*tenant.Tenant, error) {
	d.lookups.Add(1)
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, t := range d.tenants {
		if match(t) {
			clone := *t
			return &clone, nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

func (d *fakeDirectory) FindByID(_ context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return d.find(func(t *tenant.Tenant) bool { return t.ID == id })
}

func (d *fakeDirectory) FindBySlug(_ context.Context, slug string) (*tenant.Tenant, error) {
	return d.find(func(t *tenant.Tenant) bool { return t.Slug == slug })
}

func (d *fakeDirectory) FindByAPIKey(_ context.Context, key string) (*tenant.Tenant, error) {
	return d.find(func(t *tenant.Tenant) bool { return t.APIKey != "" && t.APIKey == key })
}

func (d *fakeDirectory) FindByDomain(_ context.Context, domain string) (*tenant.Tenant, error) {
	return d.find(func(t *tenant.Tenant) bool {
		for _, dom := range t.Domains {
			if dom == domain {
				return true
			}
		}
		return false
	})
}

func activeTenant(slug string) *tenant.Tenant {
	return &tenant.Tenant{
		ID:     uuid.New(),
		Slug:   slug,
		Name:   slug,
		Tier:   tier.Starter,
		Active: true,
	}
}
