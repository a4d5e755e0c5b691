package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int64
	resetAt time.Time
}

// MemoryStore keeps counters in process. It is only correct for a single instance.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
	ops     int
	Now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]*window), Now: time.Now}
}

func (s *MemoryStore) Incr(ctx context.Context, key string, length time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Now()
	s.ops++
	if s.ops%1024 == 0 {
		s.sweep(now)
	}

	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(length)}
		s.windows[key] = w
	}
	w.count++
	return w.count, w.resetAt.Sub(now), nil
}

func (s *MemoryStore) sweep(now time.Time) {
	for k, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, k)
		}
	}
}
