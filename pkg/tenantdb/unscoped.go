package tenantdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
)

// Unscoped is a deliberate bypass of the tenant fence for cross-tenant
// administration and migrations. Every call is attributed to the actor that
// requested it and logged at warn.
type Unscoped[T any, PT docPtr[T]] struct {
	repo  *Repository[T, PT]
	actor uuid.UUID
}

// Unscoped returns a bypass handle attributed to actor. An anonymous bypass
// is refused: the audit trail is the entire point.
func (r *Repository[T, PT]) Unscoped(actor uuid.UUID) (*Unscoped[T, PT], error) {
	if actor == uuid.Nil {
		return nil, ErrMissingActor
	}
	return &Unscoped[T, PT]{repo: r, actor: actor}, nil
}

func (u *Unscoped[T, PT]) audit(ctx context.Context, op string) {
	u.repo.log.WarnContext(ctx, "tenant fence bypassed",
		logger.SecurityEvent("unscoped_access"),
		logger.ActorID(u.actor),
		logger.Operation(op),
		slog.String("collection", u.repo.coll.Name()))
}

// FindOne returns the first document matching the raw filter across all
// tenants, or ErrNotFound.
func (u *Unscoped[T, PT]) FindOne(ctx context.Context, filter bson.M) (PT, error) {
	u.audit(ctx, "find_one")

	var (
		zero PT
		doc  T
	)
	if err := u.repo.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return zero, ErrNotFound
		}
		return zero, fmt.Errorf("unscoped find in %s: %w", u.repo.coll.Name(), err)
	}
	return &doc, nil
}

// Find returns all documents matching the raw filter across all tenants.
func (u *Unscoped[T, PT]) Find(ctx context.Context, filter bson.M) ([]T, error) {
	u.audit(ctx, "find")

	cur, err := u.repo.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("unscoped find in %s: %w", u.repo.coll.Name(), err)
	}

	var docs []T
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode from %s: %w", u.repo.coll.Name(), err)
	}
	return docs, nil
}

// Count counts documents matching the raw filter across all tenants.
func (u *Unscoped[T, PT]) Count(ctx context.Context, filter bson.M) (int64, error) {
	u.audit(ctx, "count")

	n, err := u.repo.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("unscoped count in %s: %w", u.repo.coll.Name(), err)
	}
	return n, nil
}

// UpdateMany applies update to every document matching the raw filter. The
// payload is passed through untouched; moving documents between tenants is a
// legitimate unscoped operation.
func (u *Unscoped[T, PT]) UpdateMany(ctx context.Context, filter, update bson.M) (int64, error) {
	u.audit(ctx, "update_many")

	res, err := u.repo.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("unscoped update in %s: %w", u.repo.coll.Name(), err)
	}
	return res.ModifiedCount, nil
}

// HardDelete permanently removes documents matching the raw filter.
func (u *Unscoped[T, PT]) HardDelete(ctx context.Context, filter bson.M) (int64, error) {
	u.audit(ctx, "hard_delete")

	res, err := u.repo.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("unscoped delete in %s: %w", u.repo.coll.Name(), err)
	}
	return res.DeletedCount, nil
}
