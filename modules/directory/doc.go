// Package directory provides the durable tenant registry: a Mongo-backed
// implementation of tenant.Directory for the resolution path, and an admin
// Service for creating and mutating tenant records.
//
// Every Service mutation drops the cache entries keyed by the tenant's
// pre-mutation identifiers before the write lands, so revoked credentials
// (rotated API keys, removed domains, deactivation) stop resolving within
// one cache round instead of lingering until TTL expiry.
package directory
