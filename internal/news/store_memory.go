package news

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"clubdesk/pkg/platform/sentinel"
)

// MemoryStore is a mutex-guarded map store mirroring the Postgres
// semantics.
type MemoryStore struct {
	mu     sync.Mutex
	items  map[int64]*Item
	nextID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[int64]*Item), nextID: 1}
}

func (s *MemoryStore) Insert(_ context.Context, item *Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.ID = s.nextID
	s.nextID++
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	clone := *item
	s.items[item.ID] = &clone
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id int64) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *item
	return &clone, nil
}

func (s *MemoryStore) List(_ context.Context, params ListParams) ([]*Item, int, error) {
	params.Normalize()

	s.mu.Lock()
	var all []*Item
	for _, item := range s.items {
		if params.OnlyActive && !item.Active {
			continue
		}
		if params.Search != "" &&
			!strings.Contains(strings.ToLower(item.Title), strings.ToLower(params.Search)) {
			continue
		}
		clone := *item
		all = append(all, &clone)
	}
	s.mu.Unlock()

	// Newest first, matching the board.
	sort.Slice(all, func(i, j int) bool {
		if all[i].Date.Equal(all[j].Date) {
			return all[i].ID > all[j].ID
		}
		return all[i].Date.After(all[j].Date)
	})

	total := len(all)
	start := params.Offset()
	if start >= total {
		return nil, total, nil
	}
	end := start + params.Limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (s *MemoryStore) SetActive(_ context.Context, id int64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	item.Active = active
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.items, id)
	return nil
}
