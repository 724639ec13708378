package lockout

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps per-key failure timestamps in a sliding window.
type MemoryStore struct {
	mu       sync.Mutex
	window   time.Duration
	failures map[string][]time.Time
	clock    func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewMemoryStore(window time.Duration, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		window:   window,
		failures: make(map[string][]time.Time),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) RecordFailure(_ context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	kept := s.prune(key, now)
	kept = append(kept, now)
	s.failures[key] = kept
	return len(kept), nil
}

func (s *MemoryStore) Failures(_ context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.prune(key, s.clock())
	s.failures[key] = kept
	return len(kept), nil
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, key)
	return nil
}

// prune drops timestamps outside the window. Caller holds the lock.
func (s *MemoryStore) prune(key string, now time.Time) []time.Time {
	cutoff := now.Add(-s.window)
	stamps := s.failures[key]
	i := 0
	for ; i < len(stamps); i++ {
		if stamps[i].After(cutoff) {
			break
		}
	}
	return stamps[i:]
}
