package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/tenantkit/pkg/tenantdb"
)

// Collection is the Mongo collection holding payments.
const Collection = "payments"

// Repository provides tenant-scoped access to payments. Every operation
// inherits the fence from the underlying gateway.
type Repository struct {
	db  *tenantdb.Repository[Payment, *Payment]
	now func() time.Time
}

// NewRepository creates a payment repository over coll.
func NewRepository(coll tenantdb.Collection, opts ...tenantdb.Option) *Repository {
	return &Repository{
		db:  tenantdb.NewRepository[Payment](coll, opts...),
		now: time.Now,
	}
}

// Create stores a new payment for the tenant in scope. Missing fields get
// their defaults: a fresh id and StatusPending.
func (r *Repository) Create(ctx context.Context, p *Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = StatusPending
	}
	now := r.now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	return r.db.Insert(ctx, p)
}

// ByID returns the tenant's payment with the given id.
func (r *Repository) ByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return r.db.FindOne(ctx, bson.M{"_id": id})
}

// ByReference returns the tenant's payment with the given reference.
func (r *Repository) ByReference(ctx context.Context, ref string) (*Payment, error) {
	return r.db.FindOne(ctx, bson.M{"reference": ref})
}

// ListByStatus returns the tenant's payments in the given state.
func (r *Repository) ListByStatus(ctx context.Context, status Status) ([]Payment, error) {
	return r.db.Find(ctx, bson.M{"status": status})
}

// SetStatus transitions one payment to status.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	return r.db.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": r.now().UTC(),
	}})
}

// Delete soft-deletes one payment, attributed to actor.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID, actor uuid.UUID) error {
	_, err := r.db.SoftDelete(ctx, bson.M{"_id": id}, actor)
	return err
}

// Restore brings a soft-deleted payment back.
func (r *Repository) Restore(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Restore(ctx, bson.M{"_id": id})
	return err
}

// StatusTotal is one row of the per-status report.
type StatusTotal struct {
	Status Status `bson:"_id"`
	Count  int64  `bson:"count"`
	Amount int64  `bson:"amount"`
}

// StatusTotals aggregates the tenant's live payments into per-status counts
// and amount sums. The gateway injects the tenant fence as stage zero.
func (r *Repository) StatusTotals(ctx context.Context) ([]StatusTotal, error) {
	pipeline := []bson.M{
		{"$group": bson.M{
			"_id":    "$status",
			"count":  bson.M{"$sum": 1},
			"amount": bson.M{"$sum": "$amount"},
		}},
		{"$sort": bson.M{"_id": 1}},
	}

	var totals []StatusTotal
	if err := r.db.Aggregate(ctx, pipeline, &totals); err != nil {
		return nil, err
	}
	return totals, nil
}
