package tenantdb

import "errors"

var (
	// ErrNoTenant is returned when a scoped operation runs outside an
	// established tenant scope.
	ErrNoTenant = errors.New("no tenant scope for data access")

	// ErrCrossTenantAccess is returned when a caller filter explicitly names
	// a tenant other than the one in scope. The query is never sent.
	ErrCrossTenantAccess = errors.New("filter targets another tenant")

	// ErrNotFound is returned when no document matches a scoped lookup.
	ErrNotFound = errors.New("document not found")

	// ErrMissingActor is returned when an unscoped handle is requested
	// without an accountable actor.
	ErrMissingActor = errors.New("unscoped access requires an actor")
)
