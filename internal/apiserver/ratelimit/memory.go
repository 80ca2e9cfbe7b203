package ratelimit

import (
	"context"
	"sync"
	"time"
)

// sweepEvery is the number of hits between scans for expired windows
const sweepEvery = 1024

type memoryWindow struct {
	count   int64
	resetAt time.Time
}

// MemoryStore keeps counters in process memory. Counters are per instance.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
	hits    int
	now     func() time.Time
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*memoryWindow),
		now:     time.Now,
	}
}

func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.hits++
	if s.hits%sweepEvery == 0 {
		for k, w := range s.windows {
			if !now.Before(w.resetAt) {
				delete(s.windows, k)
			}
		}
	}

	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &memoryWindow{resetAt: now.Add(window)}
		s.windows[key] = w
	}
	w.count++
	return w.count, w.resetAt.Sub(now), nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.windows = make(map[string]*memoryWindow)
	return nil
}
