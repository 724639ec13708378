// Package store provides the member persistence implementations: an
// in-memory store for tests and local runs, and the PostgreSQL store.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"clubdesk/internal/member/models"
	"clubdesk/pkg/platform/sentinel"
)

// Memory is a mutex-guarded map store mirroring the Postgres semantics,
// including email/phone uniqueness.
type Memory struct {
	mu      sync.RWMutex
	members map[int64]*models.Member
	nextID  int64
}

func NewMemory() *Memory {
	return &Memory{members: make(map[int64]*models.Member), nextID: 1}
}

func (s *Memory) Create(_ context.Context, m *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.members {
		if m.Email != "" && strings.EqualFold(existing.Email, m.Email) {
			return sentinel.ErrConflict
		}
		if m.Phone != "" && existing.Phone == m.Phone {
			return sentinel.ErrConflict
		}
	}

	m.ID = s.nextID
	s.nextID++
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	m.UpdatedAt = m.CreatedAt
	clone := *m
	s.members[m.ID] = &clone
	return nil
}

func (s *Memory) FindByID(_ context.Context, id int64) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *m
	return &clone, nil
}

func (s *Memory) FindByEmail(_ context.Context, email string) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.members {
		if m.Email != "" && strings.EqualFold(m.Email, email) {
			clone := *m
			return &clone, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *Memory) FindByPhone(_ context.Context, phone string) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.members {
		if m.Phone != "" && m.Phone == phone {
			clone := *m
			return &clone, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *Memory) FindByResetToken(_ context.Context, token string) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.members {
		if m.ResetToken != "" && m.ResetToken == token {
			clone := *m
			return &clone, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *Memory) List(_ context.Context, params models.ListParams) ([]*models.Member, int, error) {
	params.Normalize()

	s.mu.RLock()
	all := make([]*models.Member, 0, len(s.members))
	for _, m := range s.members {
		clone := *m
		all = append(all, &clone)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		less := memberLess(all[i], all[j], params.OrderBy)
		if params.Order == "DESC" {
			return !less
		}
		return less
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

func memberLess(a, b *models.Member, column string) bool {
	switch column {
	case "email":
		return a.Email < b.Email
	case "username":
		return a.Username < b.Username
	case "fullname":
		return a.FullName < b.FullName
	case "user_type":
		return a.Role < b.Role
	case "created_at":
		return a.CreatedAt.Before(b.CreatedAt)
	default:
		return a.ID < b.ID
	}
}

func (s *Memory) Update(_ context.Context, m *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[m.ID]; !ok {
		return sentinel.ErrNotFound
	}
	for id, existing := range s.members {
		if id == m.ID {
			continue
		}
		if m.Email != "" && strings.EqualFold(existing.Email, m.Email) {
			return sentinel.ErrConflict
		}
		if m.Phone != "" && existing.Phone == m.Phone {
			return sentinel.ErrConflict
		}
	}
	m.UpdatedAt = time.Now()
	clone := *m
	s.members[m.ID] = &clone
	return nil
}

func (s *Memory) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.members, id)
	return nil
}

func (s *Memory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members), nil
}
