package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps a log of hit times per key. Counters are lost on
// restart and are not shared between instances.
type MemoryStore struct {
	mu   sync.Mutex
	hits map[string][]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{hits: make(map[string][]time.Time)}
}

func (s *MemoryStore) Allow(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (bool, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := prune(s.hits[key], now.Add(-window))
	if len(kept) >= limit {
		s.hits[key] = kept
		return false, kept[0].Add(window).Sub(now), nil
	}
	s.hits[key] = append(kept, now)
	return true, 0, nil
}

// Sweep drops keys with no hit inside the window.
func (s *MemoryStore) Sweep(window time.Duration, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range s.hits {
		kept := prune(v, now.Add(-window))
		if len(kept) == 0 {
			delete(s.hits, k)
			continue
		}
		s.hits[k] = kept
	}
}

func prune(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}
