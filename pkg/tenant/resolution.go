package tenant

import "time"

// Method identifies how a request was attributed to a tenant.
type Method string

const (
	// MethodClaim means the tenant id came from a verified claim set.
	MethodClaim Method = "claim"
	// MethodHeader means the caller supplied an explicit tenant header.
	MethodHeader Method = "header"
	// MethodSubdomain means the tenant slug came from the request host's
	// subdomain of the base domain.
	MethodSubdomain Method = "subdomain"
	// MethodDomain means the request host matched a tenant's custom domain.
	MethodDomain Method = "domain"
)

// Rank orders methods by trust: cryptographically verified claims rank
// highest, host-derived attribution lowest. Unknown methods rank zero.
func (m Method) Rank() int {
	switch m {
	case MethodClaim:
		return 4
	case MethodHeader:
		return 3
	case MethodSubdomain:
		return 2
	case MethodDomain:
		return 1
	default:
		return 0
	}
}

// Resolution is the outcome of attributing one request to a tenant. It lives
// only for the request that produced it and is never persisted.
type Resolution struct {
	Tenant     *Tenant
	Method     Method
	ResolvedAt time.Time
}
