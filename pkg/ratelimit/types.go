package ratelimit

import (
	"context"
	"time"
)

// Result reports the outcome of one admission check.
type Result struct {
	// Allowed indicates whether the request was admitted.
	Allowed bool
	// Limit is the ceiling applied to this check.
	Limit int
	// Remaining is the number of further requests admissible in the
	// current window.
	Remaining int
	// ResetAt is when the oldest surviving entry leaves the window.
	ResetAt time.Time
}

// RetryAfter returns how long the caller should wait before retrying.
// Zero when the request was admitted.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Store is the storage backend for sliding window entries. Implementations
// must execute AddIfBelow as one atomic unit; splitting the prune, count,
// and add into separate round trips reintroduces the check-then-act race
// the limiter exists to prevent.
type Store interface {
	// AddIfBelow prunes entries older than now−window for key, counts the
	// survivors, and records a new entry timestamped now when the count is
	// below limit. It returns whether the entry was recorded, the surviving
	// count (including the new entry when added), and the timestamp of the
	// oldest surviving entry (zero when the window is empty). Stored
	// entries expire after twice the window regardless of pruning.
	AddIfBelow(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (allowed bool, count int64, oldest time.Time, err error)

	// Reset drops all entries for key.
	Reset(ctx context.Context, key string) error
}
