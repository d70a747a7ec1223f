package tenant

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
)

// Claim field names accepted for the tenant identifier. Token verification
// happens upstream; this package only consumes the decoded claim set.
var claimFields = []string{"tenant_id", "tid"}

// claimsKey is the context key under which upstream auth middleware stores
// the verified claim set.
type claimsKey struct{}

// WithClaims stores a verified claim set in the context. Intended for the
// authentication middleware that sits in front of the resolver.
func WithClaims(ctx context.Context, claims jwt.MapClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext retrieves the verified claim set, if any.
func ClaimsFromContext(ctx context.Context) (jwt.MapClaims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(jwt.MapClaims)
	return claims, ok
}

// ClaimsFunc extracts the verified claim set from a request. Returning nil
// means the request carries no usable claims.
type ClaimsFunc func(r *http.Request) jwt.MapClaims

// defaultClaimsFunc reads claims previously stored by WithClaims.
func defaultClaimsFunc(r *http.Request) jwt.MapClaims {
	claims, _ := ClaimsFromContext(r.Context())
	return claims
}

// tenantIDClaim extracts the tenant identifier from a claim set, trying the
// accepted field names in order.
func tenantIDClaim(claims jwt.MapClaims) string {
	for _, field := range claimFields {
		if v, ok := claims[field].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
