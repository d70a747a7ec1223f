// Package tenant attributes every inbound request to exactly one tenant and
// carries that attribution through the request's context.
//
// # Resolution
//
// The Resolver tries four strategies in strict priority order, stopping at
// the first success:
//
//  1. Verified claim set (tenant id under "tenant_id" or "tid")
//  2. Explicit header (internal id, API key, or slug — in that order)
//  3. Subdomain of the configured base domain (slug lookup)
//  4. Exact custom-domain match
//
// Every lookup consults the cache first by a stable per-lookup-type key
// (tenant:id:, tenant:slug:, tenant:key:, tenant:domain:) and falls back to
// the Directory on a miss, populating the cache with the configured TTL.
// A failing cache degrades to direct directory reads without failing the
// request. Only active tenants resolve; an inactive match is a miss.
//
// The resolution records how the tenant was identified. Methods are ranked
// so callers can apply stricter policy to lower-trust strategies:
//
//	res, _ := tenant.ResolutionFromContext(ctx)
//	if res.Method.Rank() < tenant.MethodHeader.Rank() {
//		// host-derived attribution, require re-auth for sensitive ops
//	}
//
// # Context carrier
//
// Middleware stores the resolution in the request context. FromContext,
// IDFromContext, and MustFromContext read it anywhere downstream; two
// concurrent requests never observe each other's tenant because each request
// owns its context chain. RequireTenant guards protected routes, answering
// 404 for unresolved tenants so probing cannot distinguish "bad credential"
// from "no such tenant".
//
// # Cache invalidation
//
// Any mutation that changes a tenant's id, slug, API key, or domains must
// call Invalidate with the pre-mutation snapshot before committing, so stale
// routing entries cannot outlive the change.
package tenant
