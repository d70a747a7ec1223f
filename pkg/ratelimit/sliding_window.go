package ratelimit

import (
	"context"
	"time"
)

// SlidingWindow counts individual request timestamps in a continuously
// moving trailing interval. The per-check limit is a parameter because each
// tenant carries its own ceiling.
type SlidingWindow struct {
	store  Store
	window time.Duration
}

// NewSlidingWindow creates a sliding window limiter over store.
func NewSlidingWindow(store Store, window time.Duration) (*SlidingWindow, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if window <= 0 {
		return nil, ErrInvalidWindow
	}
	return &SlidingWindow{store: store, window: window}, nil
}

// Window returns the configured window length.
func (sw *SlidingWindow) Window() time.Duration { return sw.window }

// Allow checks and, when admissible, consumes one slot for key under the
// given limit. A non-positive limit means unlimited: the check succeeds
// without touching the store.
func (sw *SlidingWindow) Allow(ctx context.Context, key string, limit int) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}

	now := time.Now()

	if limit <= 0 {
		return &Result{Allowed: true, Limit: limit, Remaining: -1, ResetAt: now.Add(sw.window)}, nil
	}

	allowed, count, oldest, err := sw.store.AddIfBelow(ctx, key, now, sw.window, limit)
	if err != nil {
		return nil, err
	}

	resetAt := now.Add(sw.window)
	if !oldest.IsZero() {
		resetAt = oldest.Add(sw.window)
	}

	return &Result{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: max(0, limit-int(count)),
		ResetAt:   resetAt,
	}, nil
}

// Reset clears all recorded entries for key.
func (sw *SlidingWindow) Reset(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	return sw.store.Reset(ctx, key)
}
