// Package store provides the entry persistence implementations: an
// in-memory store for tests and local runs, and the PostgreSQL store.
package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"clubdesk/internal/access/models"
	membermodels "clubdesk/internal/member/models"
	"clubdesk/pkg/platform/sentinel"
)

// MemberDirectory resolves member identity for the dashboard join. The
// member store satisfies it.
type MemberDirectory interface {
	FindByID(ctx context.Context, id int64) (*membermodels.Member, error)
}

// Memory is a mutex-guarded entry store mirroring the Postgres semantics,
// including the cool-down guard inside Insert.
type Memory struct {
	mu      sync.Mutex
	entries map[int64]*models.Entry
	members MemberDirectory
	nextID  int64
}

func NewMemory(members MemberDirectory) *Memory {
	return &Memory{entries: make(map[int64]*models.Entry), members: members, nextID: 1}
}

// Insert records an entry unless the member already has one inside the
// cool-down window ending at the given time.
func (s *Memory) Insert(_ context.Context, memberID int64, at time.Time, window time.Duration) (*models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := at.Add(-window)
	for _, e := range s.entries {
		// Inclusive: an entry exactly one window old still blocks.
		if e.MemberID == memberID && !e.EntryTime.Before(cutoff) {
			return nil, sentinel.ErrConflict
		}
	}

	entry := &models.Entry{ID: s.nextID, MemberID: memberID, EntryTime: at}
	s.nextID++
	clone := *entry
	s.entries[entry.ID] = &clone
	return entry, nil
}

// PendingIDs returns the subset of ids that exist and are not validated.
func (s *Memory) PendingIDs(_ context.Context, ids []int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []int64
	for _, id := range ids {
		if e, ok := s.entries[id]; ok && !e.Validated() {
			pending = append(pending, id)
		}
	}
	return pending, nil
}

// ValidatePending marks the still-pending entries among ids as validated
// and returns how many rows changed.
func (s *Memory) ValidatePending(_ context.Context, ids []int64, adminID int64, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, id := range ids {
		e, ok := s.entries[id]
		if !ok || e.Validated() {
			continue
		}
		admin := adminID
		stamp := at
		e.ValidatedBy = &admin
		e.ValidatedAt = &stamp
		count++
	}
	return count, nil
}

func (s *Memory) Exists(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	return ok, nil
}

func (s *Memory) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

func (s *Memory) DeleteByMember(_ context.Context, memberID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		if e.MemberID == memberID {
			delete(s.entries, id)
		}
	}
	return nil
}

// Count returns the number of entries, optionally filtered by validation
// state.
func (s *Memory) Count(_ context.Context, validated *bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, e := range s.entries {
		if validated == nil || e.Validated() == *validated {
			count++
		}
	}
	return count, nil
}

func (s *Memory) List(ctx context.Context, params models.EntryListParams) ([]*models.EntryDetails, int, error) {
	params.Normalize()

	s.mu.Lock()
	snapshot := make([]*models.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		clone := *e
		snapshot = append(snapshot, &clone)
	}
	s.mu.Unlock()

	var all []*models.EntryDetails
	for _, e := range snapshot {
		if params.Validated != nil && e.Validated() != *params.Validated {
			continue
		}
		details, err := s.join(ctx, e)
		if err != nil {
			return nil, 0, err
		}
		if params.Search != "" && !matchesSearch(details, params.Search) {
			continue
		}
		all = append(all, details)
	}

	sort.Slice(all, func(i, j int) bool {
		less := entryLess(all[i], all[j], params.OrderBy)
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

func (s *Memory) join(ctx context.Context, e *models.Entry) (*models.EntryDetails, error) {
	details := &models.EntryDetails{Entry: *e}
	member, err := s.members.FindByID(ctx, e.MemberID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return details, nil
		}
		return nil, err
	}
	details.MemberName = member.FullName
	details.MemberEmail = member.Email
	details.MemberPhone = member.Phone
	details.MemberUsername = member.Username

	if e.ValidatedBy != nil {
		validator, err := s.members.FindByID(ctx, *e.ValidatedBy)
		if err == nil {
			details.ValidatorName = validator.FullName
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, err
		}
	}
	return details, nil
}

func matchesSearch(d *models.EntryDetails, search string) bool {
	needle := strings.ToLower(search)
	for _, hay := range []string{d.MemberEmail, d.MemberPhone, d.MemberUsername, d.MemberName} {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}

func entryLess(a, b *models.EntryDetails, column string) bool {
	switch column {
	case "entry_id":
		return a.ID < b.ID
	case "fullname":
		return a.MemberName < b.MemberName
	default:
		if a.EntryTime.Equal(b.EntryTime) {
			return a.ID < b.ID
		}
		return a.EntryTime.Before(b.EntryTime)
	}
}
