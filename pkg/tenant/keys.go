package tenant

import "github.com/google/uuid"

// Cache key namespaces, one per lookup type. Keeping them distinct lets
// invalidation target exactly the entries a mutation can stale.
const (
	keyPrefixID     = "tenant:id:"
	keyPrefixSlug   = "tenant:slug:"
	keyPrefixToken  = "tenant:key:"
	keyPrefixDomain = "tenant:domain:"
)

// KeyByID returns the cache key for an id lookup.
func KeyByID(id uuid.UUID) string { return keyPrefixID + id.String() }

// KeyBySlug returns the cache key for a slug lookup.
func KeyBySlug(slug string) string { return keyPrefixSlug + slug }

// KeyByToken returns the cache key for a header token lookup. The token may
// be an internal id, an API key, or a slug; all three share one namespace
// because the header strategy resolves them through one preference chain.
func KeyByToken(token string) string { return keyPrefixToken + token }

// KeyByDomain returns the cache key for a custom-domain lookup.
func KeyByDomain(domain string) string { return keyPrefixDomain + domain }
