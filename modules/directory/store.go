package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// Collection is the Mongo collection holding tenant records.
const Collection = "tenants"

// Store is the Mongo-backed tenant registry. It implements tenant.Directory
// for the resolution path and the write operations the admin Service needs.
type Store struct {
	coll *mongo.Collection
}

// NewStore creates a store over the tenants collection of db.
func NewStore(db *mongo.Database) *Store {
	return &Store{coll: db.Collection(Collection)}
}

// EnsureIndexes creates the uniqueness indexes the registry depends on:
// slugs and custom domains are globally unique, API keys are unique where
// present. Call once at startup.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "api_key", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "domains", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	})
	if err != nil {
		return fmt.Errorf("create tenant indexes: %w", err)
	}
	return nil
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*tenant.Tenant, error) {
	var t tenant.Tenant
	if err := s.coll.FindOne(ctx, filter).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("tenant lookup: %w", err)
	}
	return &t, nil
}

// FindByID implements tenant.Directory.
func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// FindBySlug implements tenant.Directory.
func (s *Store) FindBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	return s.findOne(ctx, bson.M{"slug": strings.ToLower(strings.TrimSpace(slug))})
}

// FindByAPIKey implements tenant.Directory. Keys are matched verbatim.
func (s *Store) FindByAPIKey(ctx context.Context, key string) (*tenant.Tenant, error) {
	return s.findOne(ctx, bson.M{"api_key": key})
}

// FindByDomain implements tenant.Directory.
func (s *Store) FindByDomain(ctx context.Context, domain string) (*tenant.Tenant, error) {
	return s.findOne(ctx, bson.M{"domains": strings.ToLower(strings.TrimSpace(domain))})
}

// Insert writes a new tenant record. A slug, domain, or API key already held
// by another tenant maps to tenant.ErrDuplicateTenant.
func (s *Store) Insert(ctx context.Context, t *tenant.Tenant) error {
	if _, err := s.coll.InsertOne(ctx, t); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return tenant.ErrDuplicateTenant
		}
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

// Replace overwrites the stored record for t.ID with t.
func (s *Store) Replace(ctx context.Context, t *tenant.Tenant) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": t.ID}, t)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return tenant.ErrDuplicateTenant
		}
		return fmt.Errorf("replace tenant: %w", err)
	}
	if res.MatchedCount == 0 {
		return tenant.ErrTenantNotFound
	}
	return nil
}
