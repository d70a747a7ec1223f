package usage

import (
	"context"
	"maps"
	"sync"
	"time"
)

// MemoryStore keeps counter groups in process memory. For tests and
// single-instance deployments.
type MemoryStore struct {
	mu     sync.Mutex
	groups map[string]*counterGroup
}

type counterGroup struct {
	counters  map[string]int64
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory counter store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{groups: make(map[string]*counterGroup)}
}

// Increment implements Store.
func (s *MemoryStore) Increment(ctx context.Context, key, field string, n int64, retention time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[key]
	if !ok || time.Now().After(g.expiresAt) {
		g = &counterGroup{counters: make(map[string]int64)}
		s.groups[key] = g
	}

	g.counters[field] += n
	g.expiresAt = time.Now().Add(retention)
	return nil
}

// Counters implements Store.
func (s *MemoryStore) Counters(ctx context.Context, key string) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[key]
	if !ok || time.Now().After(g.expiresAt) {
		return map[string]int64{}, nil
	}

	out := make(map[string]int64, len(g.counters))
	maps.Copy(out, g.counters)
	return out, nil
}
