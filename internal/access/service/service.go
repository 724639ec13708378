// Package service implements the check-in desk: entry recording under the
// cool-down rule, admin batch validation, removal and the dashboard views.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"clubdesk/internal/access/models"
	"clubdesk/internal/audit"
	membermodels "clubdesk/internal/member/models"
	"clubdesk/internal/platform/metrics"
	dErrors "clubdesk/pkg/domain-errors"
	"clubdesk/pkg/platform/sentinel"
	"clubdesk/pkg/requestcontext"
)

// Store is the entry persistence contract the service depends on.
type Store interface {
	Insert(ctx context.Context, memberID int64, at time.Time, window time.Duration) (*models.Entry, error)
	PendingIDs(ctx context.Context, ids []int64) ([]int64, error)
	ValidatePending(ctx context.Context, ids []int64, adminID int64, at time.Time) (int, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context, validated *bool) (int, error)
	List(ctx context.Context, params models.EntryListParams) ([]*models.EntryDetails, int, error)
}

// MemberDirectory resolves contact references to members. The member store
// satisfies it.
type MemberDirectory interface {
	FindByEmail(ctx context.Context, email string) (*membermodels.Member, error)
	FindByPhone(ctx context.Context, phone string) (*membermodels.Member, error)
	Count(ctx context.Context) (int, error)
}

// AuditPublisher records durable audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store    Store
	members  MemberDirectory
	cooldown time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	auditor  AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.auditor = p }
}

func New(store Store, members MemberDirectory, cooldown time.Duration, opts ...Option) *Service {
	s := &Service{
		store:    store,
		members:  members,
		cooldown: cooldown,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordEntry resolves the contact to a member and records a pending entry
// unless one exists inside the cool-down window.
func (s *Service) RecordEntry(ctx context.Context, ref models.ContactRef) (*models.Entry, error) {
	member, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	entry, err := s.store.Insert(ctx, member.ID, now, s.cooldown)
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			if s.metrics != nil {
				s.metrics.EntriesRejected.Inc()
			}
			s.logger.InfoContext(ctx, "entry rejected by cool-down", "member_id", member.ID)
			return nil, dErrors.New(dErrors.CodePolicy,
				"O utilizador já registou uma entrada nos últimos 10 minutos.")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Não foi possível registar a entrada.")
	}

	s.logger.InfoContext(ctx, "entry recorded",
		"entry_id", entry.ID,
		"member_id", member.ID,
	)
	if s.metrics != nil {
		s.metrics.EntriesRecorded.Inc()
	}
	if s.auditor != nil {
		actor, _ := requestcontext.ActorFrom(ctx)
		_ = s.auditor.Emit(ctx, audit.Event{
			ActorID: actor.ID,
			Action:  audit.ActionEntryRecorded,
			Subject: audit.EntrySubject(entry.ID),
		})
	}
	return entry, nil
}

func (s *Service) resolve(ctx context.Context, ref models.ContactRef) (*membermodels.Member, error) {
	var (
		member *membermodels.Member
		err    error
	)
	switch ref.Kind() {
	case models.ContactEmail:
		member, err = s.members.FindByEmail(ctx, ref.Value())
	case models.ContactPhone:
		member, err = s.members.FindByPhone(ctx, ref.Value())
	default:
		return nil, dErrors.New(dErrors.CodeValidation,
			"O email ou o telefone do utilizador são obrigatórios.")
	}
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Utilizador não encontrado.")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Não foi possível registar a entrada.")
	}
	return member, nil
}

// ValidateEntries marks the pending subset of ids as validated by the
// acting admin. Unknown or already validated ids are skipped and reported,
// never an error on their own.
func (s *Service) ValidateEntries(ctx context.Context, ids []int64) (*models.ValidationResult, error) {
	if len(ids) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "Parâmetros inválidos.")
	}
	actor, ok := requestcontext.ActorFrom(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Sessão inválida.")
	}

	pending, err := s.store.PendingIDs(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Não foi possível validar as entradas.")
	}
	skipped := missingIDs(ids, pending)
	if len(pending) == 0 {
		return nil, dErrors.New(dErrors.CodePolicy, "Todas as entradas fornecidas já foram validadas.")
	}

	count, err := s.store.ValidatePending(ctx, pending, actor.ID, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Não foi possível validar as entradas.")
	}

	s.logger.InfoContext(ctx, "entries validated",
		"validated", count,
		"skipped", len(skipped),
		"admin_id", actor.ID,
	)
	if s.metrics != nil {
		s.metrics.EntriesValidated.Add(float64(count))
	}
	if s.auditor != nil {
		_ = s.auditor.Emit(ctx, audit.Event{
			ActorID: actor.ID,
			Action:  audit.ActionEntryValidated,
			Detail:  "validated entries batch",
		})
	}
	return &models.ValidationResult{Validated: count, SkippedIDs: skipped}, nil
}

// missingIDs returns the requested ids absent from the pending subset,
// preserving request order and dropping duplicates.
func missingIDs(requested, pending []int64) []int64 {
	pendingSet := make(map[int64]struct{}, len(pending))
	for _, id := range pending {
		pendingSet[id] = struct{}{}
	}
	seen := make(map[int64]struct{}, len(requested))
	var missing []int64
	for _, id := range requested {
		if _, ok := pendingSet[id]; ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		missing = append(missing, id)
	}
	return missing
}

// RemoveEntry deletes an entry regardless of validation state.
func (s *Service) RemoveEntry(ctx context.Context, id int64) error {
	exists, err := s.store.Exists(ctx, id)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "Não foi possível remover a entrada.")
	}
	if !exists {
		return dErrors.New(dErrors.CodeNotFound, "Entrada não encontrada.")
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "Entrada não encontrada.")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "Não foi possível remover a entrada.")
	}

	s.logger.InfoContext(ctx, "entry removed", "entry_id", id)
	if s.metrics != nil {
		s.metrics.EntriesRemoved.Inc()
	}
	if s.auditor != nil {
		actor, _ := requestcontext.ActorFrom(ctx)
		_ = s.auditor.Emit(ctx, audit.Event{
			ActorID: actor.ID,
			Action:  audit.ActionEntryRemoved,
			Subject: audit.EntrySubject(id),
		})
	}
	return nil
}

// ListEntries returns a dashboard page plus the total matching count.
func (s *Service) ListEntries(ctx context.Context, params models.EntryListParams) ([]*models.EntryDetails, int, error) {
	entries, total, err := s.store.List(ctx, params)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "Não foi possível listar as entradas.")
	}
	return entries, total, nil
}

// Stats aggregates the dashboard counters, fanning the four counts out
// concurrently.
func (s *Service) Stats(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	pending, validated := false, true

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := s.store.Count(ctx, nil)
		stats.TotalEntries = total
		return err
	})
	g.Go(func() error {
		count, err := s.store.Count(ctx, &pending)
		stats.PendingEntries = count
		return err
	})
	g.Go(func() error {
		count, err := s.store.Count(ctx, &validated)
		stats.ValidatedEntries = count
		return err
	})
	g.Go(func() error {
		count, err := s.members.Count(ctx)
		stats.TotalMembers = count
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Não foi possível obter as estatísticas.")
	}
	return &stats, nil
}
