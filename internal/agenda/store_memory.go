package agenda

import (
	"context"
	"sort"
	"sync"
	"time"

	"clubdesk/pkg/platform/sentinel"
)

// MemoryStore is a mutex-guarded map store mirroring the Postgres
// semantics.
type MemoryStore struct {
	mu     sync.Mutex
	events map[int64]*Event
	nextID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[int64]*Event), nextID: 1}
}

func (s *MemoryStore) Insert(_ context.Context, event *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	event.ID = s.nextID
	s.nextID++
	clone := *event
	s.events[event.ID] = &clone
	return nil
}

func (s *MemoryStore) Update(_ context.Context, event *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[event.ID]; !ok {
		return sentinel.ErrNotFound
	}
	clone := *event
	s.events[event.ID] = &clone
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.events, id)
	return nil
}

// ListUpcoming returns events on or after the given time, soonest first.
func (s *MemoryStore) ListUpcoming(_ context.Context, from time.Time) ([]*Event, error) {
	s.mu.Lock()
	var upcoming []*Event
	for _, e := range s.events {
		if e.Date.Before(from) {
			continue
		}
		clone := *e
		upcoming = append(upcoming, &clone)
	}
	s.mu.Unlock()

	sort.Slice(upcoming, func(i, j int) bool {
		if upcoming[i].Date.Equal(upcoming[j].Date) {
			return upcoming[i].ID < upcoming[j].ID
		}
		return upcoming[i].Date.Before(upcoming[j].Date)
	})
	return upcoming, nil
}
