// Package payment is a tenant-owned payment ledger built on the tenantdb
// gateway. It shows the intended shape of a domain module: an entity
// embedding tenantdb.Owned, a repository composed over the fenced generic
// repository, and tenant-scoped aggregation for reporting. No query in this
// package can cross a tenant boundary.
package payment
