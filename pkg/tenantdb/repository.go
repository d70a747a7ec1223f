package tenantdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// Collection is the slice of *mongo.Collection the repository drives,
// narrowed to an interface so tests can run against a recording fake.
type Collection interface {
	Name() string
	InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
	FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult
	Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (*mongo.Cursor, error)
	UpdateOne(ctx context.Context, filter any, update any, opts ...options.Lister[options.UpdateOneOptions]) (*mongo.UpdateResult, error)
	UpdateMany(ctx context.Context, filter any, update any, opts ...options.Lister[options.UpdateManyOptions]) (*mongo.UpdateResult, error)
	DeleteMany(ctx context.Context, filter any, opts ...options.Lister[options.DeleteManyOptions]) (*mongo.DeleteResult, error)
	CountDocuments(ctx context.Context, filter any, opts ...options.Lister[options.CountOptions]) (int64, error)
	Aggregate(ctx context.Context, pipeline any, opts ...options.Lister[options.AggregateOptions]) (*mongo.Cursor, error)
}

// docPtr constrains PT to *T implementing Document, which entities get by
// embedding Owned. The compiler infers PT, so call sites name only T:
// NewRepository[Payment](coll).
type docPtr[T any] interface {
	*T
	Document
}

// Option configures a repository.
type Option func(*repoConfig)

type repoConfig struct {
	log *slog.Logger
	now func() time.Time
}

// WithLogger sets the repository's logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *repoConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// WithClock overrides the repository's time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(c *repoConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// Repository is a tenant-fenced accessor for one collection of T documents.
type Repository[T any, PT docPtr[T]] struct {
	coll Collection
	log  *slog.Logger
	now  func() time.Time
}

// NewRepository creates a fenced repository over coll.
func NewRepository[T any, PT docPtr[T]](coll Collection, opts ...Option) *Repository[T, PT] {
	cfg := repoConfig{log: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Repository[T, PT]{coll: coll, log: cfg.log, now: cfg.now}
}

func (r *Repository[T, PT]) scope(ctx context.Context) (uuid.UUID, error) {
	id, ok := tenant.IDFromContext(ctx)
	if !ok {
		return uuid.UUID{}, ErrNoTenant
	}
	return id, nil
}

// fence merges the tenant scope into filter. A filter naming a foreign
// tenant is a security event: it is logged and the query never runs.
func (r *Repository[T, PT]) fence(ctx context.Context, tenantID uuid.UUID, filter bson.M, opts []QueryOption) (bson.M, error) {
	var q querySettings
	for _, opt := range opts {
		opt(&q)
	}

	scoped, err := scopeFilter(tenantID, filter, q.withDeleted)
	if err != nil {
		r.log.ErrorContext(ctx, "cross-tenant filter blocked",
			logger.SecurityEvent("cross_tenant_access"),
			logger.TenantID(tenantID),
			slog.String("collection", r.coll.Name()))
		return nil, err
	}
	return scoped, nil
}

// Insert stamps the document with the tenant in scope and writes it. Any
// owner the caller pre-filled is overwritten.
func (r *Repository[T, PT]) Insert(ctx context.Context, doc PT) error {
	tenantID, err := r.scope(ctx)
	if err != nil {
		return err
	}

	doc.stampOwner(tenantID)
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert into %s: %w", r.coll.Name(), err)
	}
	return nil
}

// FindOne returns the first document matching the fenced filter, or
// ErrNotFound.
func (r *Repository[T, PT]) FindOne(ctx context.Context, filter bson.M, opts ...QueryOption) (PT, error) {
	var zero PT

	tenantID, err := r.scope(ctx)
	if err != nil {
		return zero, err
	}
	scoped, err := r.fence(ctx, tenantID, filter, opts)
	if err != nil {
		return zero, err
	}

	var doc T
	if err := r.coll.FindOne(ctx, scoped).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return zero, ErrNotFound
		}
		return zero, fmt.Errorf("find in %s: %w", r.coll.Name(), err)
	}
	return &doc, nil
}

// Find returns all documents matching the fenced filter.
func (r *Repository[T, PT]) Find(ctx context.Context, filter bson.M, opts ...QueryOption) ([]T, error) {
	tenantID, err := r.scope(ctx)
	if err != nil {
		return nil, err
	}
	scoped, err := r.fence(ctx, tenantID, filter, opts)
	if err != nil {
		return nil, err
	}

	cur, err := r.coll.Find(ctx, scoped)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", r.coll.Name(), err)
	}

	var docs []T
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode from %s: %w", r.coll.Name(), err)
	}
	return docs, nil
}

// Count returns the number of documents matching the fenced filter.
func (r *Repository[T, PT]) Count(ctx context.Context, filter bson.M, opts ...QueryOption) (int64, error) {
	tenantID, err := r.scope(ctx)
	if err != nil {
		return 0, err
	}
	scoped, err := r.fence(ctx, tenantID, filter, opts)
	if err != nil {
		return 0, err
	}

	n, err := r.coll.CountDocuments(ctx, scoped)
	if err != nil {
		return 0, fmt.Errorf("count in %s: %w", r.coll.Name(), err)
	}
	return n, nil
}

// UpdateOne applies update to the first document matching the fenced filter.
// Attempts to rewrite the owner are silently stripped from the payload.
// Returns ErrNotFound when nothing matches.
func (r *Repository[T, PT]) UpdateOne(ctx context.Context, filter, update bson.M) error {
	tenantID, err := r.scope(ctx)
	if err != nil {
		return err
	}
	scoped, err := r.fence(ctx, tenantID, filter, nil)
	if err != nil {
		return err
	}

	res, err := r.coll.UpdateOne(ctx, scoped, sanitizeUpdate(update))
	if err != nil {
		return fmt.Errorf("update in %s: %w", r.coll.Name(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateMany applies update to every document matching the fenced filter and
// returns the modified count.
func (r *Repository[T, PT]) UpdateMany(ctx context.Context, filter, update bson.M) (int64, error) {
	tenantID, err := r.scope(ctx)
	if err != nil {
		return 0, err
	}
	scoped, err := r.fence(ctx, tenantID, filter, nil)
	if err != nil {
		return 0, err
	}

	res, err := r.coll.UpdateMany(ctx, scoped, sanitizeUpdate(update))
	if err != nil {
		return 0, fmt.Errorf("update in %s: %w", r.coll.Name(), err)
	}
	return res.ModifiedCount, nil
}

// SoftDelete marks matching live documents deleted, attributed to actor.
// Already-deleted documents keep their original deletion stamp: the fence
// excludes them from the match, so repeat calls modify nothing and return no
// error.
func (r *Repository[T, PT]) SoftDelete(ctx context.Context, filter bson.M, actor uuid.UUID) (int64, error) {
	tenantID, err := r.scope(ctx)
	if err != nil {
		return 0, err
	}
	scoped, err := r.fence(ctx, tenantID, filter, nil)
	if err != nil {
		return 0, err
	}

	set := bson.M{deletedField: r.now().UTC()}
	if actor != uuid.Nil {
		set[deletedByField] = actor
	}

	res, err := r.coll.UpdateMany(ctx, scoped, bson.M{"$set": set})
	if err != nil {
		return 0, fmt.Errorf("soft delete in %s: %w", r.coll.Name(), err)
	}
	return res.ModifiedCount, nil
}

// Restore clears the deletion stamp from matching soft-deleted documents.
func (r *Repository[T, PT]) Restore(ctx context.Context, filter bson.M) (int64, error) {
	tenantID, err := r.scope(ctx)
	if err != nil {
		return 0, err
	}
	scoped, err := r.fence(ctx, tenantID, filter, []QueryOption{WithDeleted()})
	if err != nil {
		return 0, err
	}
	scoped[deletedField] = bson.M{"$ne": nil}

	update := bson.M{"$unset": bson.M{deletedField: "", deletedByField: ""}}
	res, err := r.coll.UpdateMany(ctx, scoped, update)
	if err != nil {
		return 0, fmt.Errorf("restore in %s: %w", r.coll.Name(), err)
	}
	return res.ModifiedCount, nil
}

// HardDelete permanently removes matching documents, soft-deleted ones
// included. Still tenant-fenced; the name is the safety interlock.
func (r *Repository[T, PT]) HardDelete(ctx context.Context, filter bson.M) (int64, error) {
	tenantID, err := r.scope(ctx)
	if err != nil {
		return 0, err
	}
	scoped, err := r.fence(ctx, tenantID, filter, []QueryOption{WithDeleted()})
	if err != nil {
		return 0, err
	}

	res, err := r.coll.DeleteMany(ctx, scoped)
	if err != nil {
		return 0, fmt.Errorf("hard delete in %s: %w", r.coll.Name(), err)
	}
	return res.DeletedCount, nil
}

// Aggregate runs the pipeline with the tenant fence injected as stage zero
// and into every nested pipeline that pulls in outside documents, then
// decodes all results into results (a pointer to a slice).
func (r *Repository[T, PT]) Aggregate(ctx context.Context, pipeline []bson.M, results any) error {
	tenantID, err := r.scope(ctx)
	if err != nil {
		return err
	}

	cur, err := r.coll.Aggregate(ctx, scopedPipeline(tenantID, pipeline, r.log, r.coll.Name()))
	if err != nil {
		return fmt.Errorf("aggregate in %s: %w", r.coll.Name(), err)
	}
	if err := cur.All(ctx, results); err != nil {
		return fmt.Errorf("decode from %s: %w", r.coll.Name(), err)
	}
	return nil
}
