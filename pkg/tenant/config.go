package tenant

import "time"

// Config holds resolver settings, loaded from the environment.
type Config struct {
	// BaseDomain is the platform domain subdomains hang off, e.g. "paylane.io".
	// Empty disables the subdomain strategy.
	BaseDomain string `env:"TENANT_BASE_DOMAIN"`
	// Header is the explicit tenant identification header.
	Header string `env:"TENANT_HEADER" envDefault:"X-Tenant-ID"`
	// CacheTTL bounds how long resolved tenant snapshots stay cached.
	CacheTTL time.Duration `env:"TENANT_CACHE_TTL" envDefault:"300s"`
}
