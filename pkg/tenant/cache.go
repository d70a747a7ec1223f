package tenant

import (
	"context"
	"sync"
	"time"
)

// Cache stores tenant snapshots keyed by lookup type. Implementations must
// absorb backend failures: a broken cache is a miss, never a request error.
type Cache interface {
	Get(ctx context.Context, key string) (*Tenant, bool)
	Set(ctx context.Context, key string, t *Tenant, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
	Close() error
}

// Invalidate removes every cache entry keyed by the tenant's current
// identifiers: id, slug, API key (under both the token and its own
// namespaces), and each custom domain. Call it with the pre-mutation
// snapshot before committing any change to those fields.
func Invalidate(ctx context.Context, cache Cache, t *Tenant) {
	if cache == nil || t == nil {
		return
	}

	keys := []string{
		KeyByID(t.ID),
		KeyBySlug(t.Slug),
		KeyByToken(t.ID.String()),
		KeyByToken(t.Slug),
	}
	if t.APIKey != "" {
		keys = append(keys, KeyByToken(t.APIKey))
	}
	for _, d := range t.Domains {
		keys = append(keys, KeyByDomain(d))
	}

	cache.Delete(ctx, keys...)
}

// DefaultCacheSize bounds the in-memory cache.
const DefaultCacheSize = 1000

// memoryCache is a TTL cache with LRU eviction for single-process use and
// tests. Shared deployments should use the Redis cache instead.
type memoryCache struct {
	mu      sync.Mutex
	items   map[string]memoryItem
	order   []string // least recently used first
	maxSize int
}

type memoryItem struct {
	tenant    *Tenant
	expiresAt time.Time
}

// NewMemoryCache creates an in-memory cache holding at most size entries.
// A non-positive size falls back to DefaultCacheSize.
func NewMemoryCache(size int) Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &memoryCache{
		items:   make(map[string]memoryItem),
		order:   make([]string, 0, size),
		maxSize: size,
	}
}

func (c *memoryCache) Get(ctx context.Context, key string) (*Tenant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(item.expiresAt) {
		delete(c.items, key)
		c.forget(key)
		return nil, false
	}

	c.touch(key)
	return item.tenant, true
}

func (c *memoryCache) Set(ctx context.Context, key string, t *Tenant, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxSize {
		if len(c.order) > 0 {
			evicted := c.order[0]
			c.order = c.order[1:]
			delete(c.items, evicted)
		}
	}

	c.items[key] = memoryItem{tenant: t, expiresAt: time.Now().Add(ttl)}
	c.touch(key)
}

func (c *memoryCache) Delete(ctx context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		delete(c.items, key)
		c.forget(key)
	}
}

func (c *memoryCache) Close() error { return nil }

func (c *memoryCache) touch(key string) {
	c.forget(key)
	c.order = append(c.order, key)
}

func (c *memoryCache) forget(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// noopCache disables caching entirely.
type noopCache struct{}

// NewNoopCache returns a cache that never stores anything. Useful in tests
// and for deployments that want every resolution to hit the directory.
func NewNoopCache() Cache { return noopCache{} }

func (noopCache) Get(context.Context, string) (*Tenant, bool)          { return nil, false }
func (noopCache) Set(context.Context, string, *Tenant, time.Duration)  {}
func (noopCache) Delete(context.Context, ...string)                    {}
func (noopCache) Close() error                                         { return nil }
