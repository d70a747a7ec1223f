package usage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one hash of named counters per (tenant, period) key.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a Redis-backed counter store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Increment implements Store. HINCRBY is atomic on the server; the expiry
// refresh rides the same pipeline so the group's retention window restarts
// with every increment.
func (s *RedisStore) Increment(ctx context.Context, key, field string, n int64, retention time.Duration) error {
	pipe := s.client.TxPipeline()
	pipe.HIncrBy(ctx, key, field, n)
	pipe.Expire(ctx, key, retention)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("usage: redis increment failed: %w", err)
	}
	return nil
}

// Counters implements Store.
func (s *RedisStore) Counters(ctx context.Context, key string) (map[string]int64, error) {
	raw, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("usage: redis read failed: %w", err)
	}

	counters := make(map[string]int64, len(raw))
	for field, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue // foreign field in the hash, not a counter
		}
		counters[field] = n
	}
	return counters, nil
}
