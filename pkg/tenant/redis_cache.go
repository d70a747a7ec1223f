package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisCache stores JSON tenant snapshots in Redis so every application
// instance shares one resolution cache. All backend failures are logged at
// warn and reported as misses; the caller falls through to the directory.
type redisCache struct {
	client redis.UniversalClient
	log    *slog.Logger
}

// NewRedisCache creates a Redis-backed tenant cache. The client's lifecycle
// belongs to the caller; Close is a no-op.
func NewRedisCache(client redis.UniversalClient, log *slog.Logger) Cache {
	if log == nil {
		log = slog.Default()
	}
	return &redisCache{client: client, log: log}
}

func (c *redisCache) Get(ctx context.Context, key string) (*Tenant, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WarnContext(ctx, "tenant cache read failed, falling back to directory",
				slog.String("key", key), slog.Any("error", err))
		}
		return nil, false
	}

	var t Tenant
	if err := json.Unmarshal(raw, &t); err != nil {
		c.log.WarnContext(ctx, "tenant cache entry corrupted, dropping",
			slog.String("key", key), slog.Any("error", err))
		c.Delete(ctx, key)
		return nil, false
	}

	return &t, true
}

func (c *redisCache) Set(ctx context.Context, key string, t *Tenant, ttl time.Duration) {
	raw, err := json.Marshal(t)
	if err != nil {
		c.log.WarnContext(ctx, "tenant cache encode failed",
			slog.String("key", key), slog.Any("error", err))
		return
	}

	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.log.WarnContext(ctx, "tenant cache write failed",
			slog.String("key", key), slog.Any("error", err))
	}
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.WarnContext(ctx, "tenant cache invalidation failed",
			slog.Any("keys", keys), slog.Any("error", err))
	}
}

func (c *redisCache) Close() error { return nil }
