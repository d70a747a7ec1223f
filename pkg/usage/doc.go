// Package usage accumulates monthly per-tenant consumption counters for
// billing and limit checks, independent of the rate limiter's short window.
//
// Counters are grouped by (tenant, calendar month). The month stamp is
// computed in UTC so tenants in different zones see their period roll over
// at the same instant. Counter groups outlive the month they describe —
// retention is measured in days (90 by default) to support billing
// reconciliation after month-end — and are never decremented.
//
// Increments are single atomic store operations (a hash-field add with an
// expiry refresh); the application layer never reads, modifies, and writes
// a counter in separate round trips.
package usage
