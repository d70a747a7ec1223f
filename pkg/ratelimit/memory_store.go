package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sliding window entries in process memory. Suitable for
// tests and single-instance deployments; multi-instance deployments need the
// Redis store so all workers see one window.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*entryLog
}

type entryLog struct {
	entries []time.Time
	touched time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]*entryLog)}
}

// AddIfBelow implements Store. The whole prune-count-admit sequence runs
// under one mutex, which is the in-process equivalent of the Redis script's
// atomicity.
func (s *MemoryStore) AddIfBelow(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (bool, int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log, ok := s.windows[key]
	if !ok {
		log = &entryLog{}
		s.windows[key] = log
	}

	// Drop expired keys opportunistically, mirroring store-level expiry of
	// twice the window.
	s.sweep(now, window)

	cutoff := now.Add(-window)
	survivors := log.entries[:0]
	for _, ts := range log.entries {
		if ts.After(cutoff) {
			survivors = append(survivors, ts)
		}
	}
	log.entries = survivors
	log.touched = now

	count := int64(len(log.entries))
	allowed := false
	if count < int64(limit) {
		log.entries = append(log.entries, now)
		count++
		allowed = true
	}

	var oldest time.Time
	if len(log.entries) > 0 {
		oldest = log.entries[0]
	}

	return allowed, count, oldest, nil
}

// Reset implements Store.
func (s *MemoryStore) Reset(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, key)
	return nil
}

// sweep removes keys idle for more than twice the window. Caller holds the
// lock.
func (s *MemoryStore) sweep(now time.Time, window time.Duration) {
	expiry := now.Add(-2 * window)
	for key, log := range s.windows {
		if !log.touched.IsZero() && log.touched.Before(expiry) {
			delete(s.windows, key)
		}
	}
}
