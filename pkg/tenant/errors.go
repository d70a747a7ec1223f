package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when no tenant matches a lookup.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrInactiveTenant is returned when a matched tenant is deactivated.
	ErrInactiveTenant = errors.New("tenant is inactive")

	// ErrNoTenantInContext is returned when a code path that requires an
	// established tenant scope runs outside of one.
	ErrNoTenantInContext = errors.New("no tenant in context")

	// ErrInvalidIdentifier is returned for malformed tenant identifiers.
	ErrInvalidIdentifier = errors.New("invalid tenant identifier")

	// ErrDuplicateTenant is returned when a slug, domain, or API key is
	// already taken by another tenant.
	ErrDuplicateTenant = errors.New("tenant identifier already in use")
)
