package tenantdb

import (
	"time"

	"github.com/google/uuid"
)

// Owned carries the fields the gateway manages on every tenant-owned
// document. Embed it inline in entity structs; the repository stamps and
// enforces these fields, application code never writes them directly.
type Owned struct {
	TenantID  uuid.UUID  `json:"tenant_id" bson:"tenant_id"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" bson:"deleted_at,omitempty"`
	DeletedBy *uuid.UUID `json:"deleted_by,omitempty" bson:"deleted_by,omitempty"`
}

func (o *Owned) stampOwner(id uuid.UUID) { o.TenantID = id }

// Owner returns the owning tenant's id.
func (o *Owned) Owner() uuid.UUID { return o.TenantID }

// Deleted reports whether the document is soft-deleted.
func (o *Owned) Deleted() bool { return o.DeletedAt != nil }

// Document is the constraint for repository entities. The unexported method
// means it can only be satisfied by embedding Owned.
type Document interface {
	stampOwner(uuid.UUID)
	Owner() uuid.UUID
	Deleted() bool
}
