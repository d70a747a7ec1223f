// Package tenantdb is the single data-access path for tenant-owned MongoDB
// collections. Every read merges the owning tenant and the soft-delete state
// into the caller's filter, every write stamps or preserves the owner, and
// aggregation pipelines are fenced before they reach the server. Application
// code goes through Repository; reaching around it to a raw collection is how
// cross-tenant leaks happen.
//
// Entities embed Owned to participate:
//
//	type Payment struct {
//	    tenantdb.Owned `bson:",inline"`
//	    ID             uuid.UUID `bson:"_id"`
//	    Amount         int64     `bson:"amount"`
//	}
//
//	payments := tenantdb.NewRepository[Payment](db.Collection("payments"))
//	doc, err := payments.FindOne(ctx, bson.M{"_id": id})
//
// The owning tenant is taken from the request context established by the
// tenant resolution middleware; calls outside a tenant scope fail with
// ErrNoTenant. Cross-tenant administration goes through the audited
// Unscoped handle.
package tenantdb
