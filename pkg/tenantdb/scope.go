package tenantdb

import (
	"log/slog"
	"maps"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	ownerField     = "tenant_id"
	deletedField   = "deleted_at"
	deletedByField = "deleted_by"
)

// querySettings collects per-call read options.
type querySettings struct {
	withDeleted bool
}

// QueryOption adjusts a single scoped read.
type QueryOption func(*querySettings)

// WithDeleted includes soft-deleted documents in the result set. The tenant
// fence still applies.
func WithDeleted() QueryOption {
	return func(q *querySettings) {
		q.withDeleted = true
	}
}

// scopeFilter returns the caller's filter fenced to the tenant. The fence
// keys overwrite whatever the caller supplied, and a filter that explicitly
// names a foreign tenant is rejected before any data access.
func scopeFilter(tenantID uuid.UUID, filter bson.M, withDeleted bool) (bson.M, error) {
	if err := guardFilter(tenantID, filter); err != nil {
		return nil, err
	}
	out := make(bson.M, len(filter)+2)
	maps.Copy(out, filter)
	out[ownerField] = tenantID
	if !withDeleted {
		out[deletedField] = nil
	}
	return out, nil
}

// guardFilter rejects filters that target a foreign tenant_id, at the top
// level or nested inside logical operators.
func guardFilter(tenantID uuid.UUID, filter bson.M) error {
	for key, value := range filter {
		switch key {
		case ownerField:
			if !sameTenant(tenantID, value) {
				return ErrCrossTenantAccess
			}
		case "$and", "$or", "$nor":
			for _, clause := range asFilterList(value) {
				if err := guardFilter(tenantID, clause); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// sameTenant compares a caller-supplied tenant_id value against the scope,
// accepting uuid and string encodings.
func sameTenant(tenantID uuid.UUID, value any) bool {
	switch v := value.(type) {
	case uuid.UUID:
		return v == tenantID
	case string:
		return v == tenantID.String()
	default:
		return false
	}
}

func asFilterList(value any) []bson.M {
	switch v := value.(type) {
	case []bson.M:
		return v
	case bson.A:
		out := make([]bson.M, 0, len(v))
		for _, item := range v {
			if m, ok := asFilterDoc(item); ok {
				out = append(out, m)
			}
		}
		return out
	case []any:
		out := make([]bson.M, 0, len(v))
		for _, item := range v {
			if m, ok := asFilterDoc(item); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

// asFilterDoc normalizes a filter clause to bson.M. The driver accepts both
// its ordered and unordered document encodings, so the guard must too.
func asFilterDoc(value any) (bson.M, bool) {
	switch v := value.(type) {
	case bson.M:
		return v, true
	case map[string]any:
		return bson.M(v), true
	case bson.D:
		out := make(bson.M, len(v))
		for _, e := range v {
			out[e.Key] = e.Value
		}
		return out, true
	default:
		return nil, false
	}
}

// sanitizeUpdate strips attempts to rewrite the owner out of update
// payloads. The strip is silent: owner immutability is a gateway guarantee,
// and failing the whole update over it would turn every bulk payload
// assembled from user input into an error path.
func sanitizeUpdate(update bson.M) bson.M {
	out := make(bson.M, len(update))
	for op, value := range update {
		switch op {
		case "$set", "$setOnInsert", "$unset":
			out[op] = stripOwner(value)
		default:
			out[op] = value
		}
	}
	return out
}

// stripOwner drops the owner field from an operator payload, preserving the
// payload's document encoding.
func stripOwner(payload any) any {
	switch doc := payload.(type) {
	case bson.M:
		clean := make(bson.M, len(doc))
		for field, v := range doc {
			if field == ownerField {
				continue
			}
			clean[field] = v
		}
		return clean
	case map[string]any:
		clean := make(bson.M, len(doc))
		for field, v := range doc {
			if field == ownerField {
				continue
			}
			clean[field] = v
		}
		return clean
	case bson.D:
		clean := make(bson.D, 0, len(doc))
		for _, e := range doc {
			if e.Key == ownerField {
				continue
			}
			clean = append(clean, e)
		}
		return clean
	default:
		return payload
	}
}

// scopedPipeline prepends the tenant fence as stage zero and pushes it into
// nested pipelines that pull documents in from other collections.
func scopedPipeline(tenantID uuid.UUID, pipeline []bson.M, log *slog.Logger, collection string) []bson.M {
	out := make([]bson.M, 0, len(pipeline)+1)
	out = append(out, bson.M{"$match": bson.M{ownerField: tenantID, deletedField: nil}})
	out = append(out, fenceStages(tenantID, pipeline, log, collection)...)
	return out
}

// fenceStages walks pipeline stages and fences the ones that introduce
// documents from outside the already-matched input. $facet sub-pipelines
// operate on input the top-level $match has already fenced (and may have
// reshaped past recognition), so they are recursed into but get no $match of
// their own.
func fenceStages(tenantID uuid.UUID, stages []bson.M, log *slog.Logger, collection string) []bson.M {
	out := make([]bson.M, 0, len(stages))
	for _, stage := range stages {
		out = append(out, fenceStage(tenantID, stage, log, collection))
	}
	return out
}

func fenceStage(tenantID uuid.UUID, stage bson.M, log *slog.Logger, collection string) bson.M {
	for op, spec := range stage {
		switch op {
		case "$lookup":
			doc, ok := spec.(bson.M)
			if !ok {
				continue
			}
			sub, ok := asStageList(doc["pipeline"])
			if !ok {
				// The localField/foreignField form joins the foreign
				// collection without a pipeline to fence.
				log.Warn("lookup without pipeline cannot be tenant-scoped",
					slog.String("collection", collection),
					slog.Any("from", doc["from"]))
				continue
			}
			fenced := make(bson.M, len(doc))
			maps.Copy(fenced, doc)
			fenced["pipeline"] = scopedPipeline(tenantID, sub, log, collection)
			return bson.M{op: fenced}
		case "$unionWith":
			doc, ok := spec.(bson.M)
			if !ok {
				log.Warn("unionWith without pipeline cannot be tenant-scoped",
					slog.String("collection", collection),
					slog.Any("from", spec))
				continue
			}
			sub, _ := asStageList(doc["pipeline"])
			fenced := make(bson.M, len(doc))
			maps.Copy(fenced, doc)
			fenced["pipeline"] = scopedPipeline(tenantID, sub, log, collection)
			return bson.M{op: fenced}
		case "$facet":
			doc, ok := spec.(bson.M)
			if !ok {
				continue
			}
			fenced := make(bson.M, len(doc))
			for name, facetPipe := range doc {
				if sub, ok := asStageList(facetPipe); ok {
					fenced[name] = fenceStages(tenantID, sub, log, collection)
				} else {
					fenced[name] = facetPipe
				}
			}
			return bson.M{op: fenced}
		}
	}
	return stage
}

func asStageList(value any) ([]bson.M, bool) {
	switch v := value.(type) {
	case []bson.M:
		return v, true
	case bson.A:
		out := make([]bson.M, 0, len(v))
		for _, item := range v {
			m, ok := item.(bson.M)
			if !ok {
				return nil, false
			}
			out = append(out, m)
		}
		return out, true
	default:
		return nil, false
	}
}
