package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// addIfBelowScript runs the whole prune-count-admit sequence server-side so
// concurrent checks against one key serialize inside Redis. Scores and
// arguments are unix milliseconds.
var addIfBelowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call("ZREMRANGEBYSCORE", key, 0, now - window)
local count = redis.call("ZCARD", key)
local allowed = 0
if count < limit then
	redis.call("ZADD", key, now, member)
	allowed = 1
	count = count + 1
end
local oldest = 0
local first = redis.call("ZRANGE", key, 0, 0, "WITHSCORES")
if first[2] then
	oldest = tonumber(first[2])
end
redis.call("PEXPIRE", key, window * 2)
return {allowed, count, oldest}
`)

// RedisStore keeps one sorted set of timestamp-scored unique members per
// key. Entries expire after twice the window at the store level, bounding
// memory without active pruning.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a Redis-backed sliding window store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// AddIfBelow implements Store as a single script execution.
func (s *RedisStore) AddIfBelow(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (bool, int64, time.Time, error) {
	member := fmt.Sprintf("%d-%s", now.UnixMilli(), uuid.NewString())

	raw, err := addIfBelowScript.Run(ctx, s.client,
		[]string{key},
		now.UnixMilli(), window.Milliseconds(), limit, member,
	).Slice()
	if err != nil {
		return false, 0, time.Time{}, fmt.Errorf("ratelimit: redis check failed: %w", err)
	}
	if len(raw) != 3 {
		return false, 0, time.Time{}, fmt.Errorf("ratelimit: unexpected script reply of length %d", len(raw))
	}

	allowed, _ := raw[0].(int64)
	count, _ := raw[1].(int64)
	oldestMillis, _ := raw[2].(int64)

	var oldest time.Time
	if oldestMillis > 0 {
		oldest = time.UnixMilli(oldestMillis)
	}

	return allowed == 1, count, oldest, nil
}

// Reset implements Store.
func (s *RedisStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
