package ratelimit

import "errors"

var (
	// ErrStoreRequired is returned when a limiter is built without a store.
	ErrStoreRequired = errors.New("ratelimit: store is required")

	// ErrInvalidWindow is returned for non-positive window durations.
	ErrInvalidWindow = errors.New("ratelimit: window must be positive")

	// ErrKeyRequired is returned when a check is attempted with an empty key.
	ErrKeyRequired = errors.New("ratelimit: key is required")
)
