package agenda

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	dErrors "clubdesk/pkg/domain-errors"
	"clubdesk/pkg/platform/sentinel"
	"clubdesk/pkg/requestcontext"
)

// Store is the agenda persistence contract.
type Store interface {
	Insert(ctx context.Context, event *Event) error
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id int64) error
	ListUpcoming(ctx context.Context, from time.Time) ([]*Event, error)
}

type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{store: store, logger: logger}
}

// Add schedules an event.
func (s *Service) Add(ctx context.Context, req UpsertRequest) (*Event, error) {
	if !req.Validate() {
		return nil, dErrors.New(dErrors.CodeValidation,
			"O título, a data e o local do evento são obrigatórios.")
	}

	event := &Event{Title: req.Title, Date: *req.Date, Location: req.Location}
	if err := s.store.Insert(ctx, event); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Não foi possível criar o evento.")
	}
	s.logger.InfoContext(ctx, "event created", "event_id", event.ID)
	return event, nil
}

// Update replaces an existing event.
func (s *Service) Update(ctx context.Context, id int64, req UpsertRequest) (*Event, error) {
	if !req.Validate() {
		return nil, dErrors.New(dErrors.CodeValidation,
			"O título, a data e o local do evento são obrigatórios.")
	}

	event := &Event{ID: id, Title: req.Title, Date: *req.Date, Location: req.Location}
	if err := s.store.Update(ctx, event); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Evento não encontrado.")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Não foi possível atualizar o evento.")
	}
	s.logger.InfoContext(ctx, "event updated", "event_id", id)
	return event, nil
}

// Delete removes an event.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "Evento não encontrado.")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "Não foi possível remover o evento.")
	}
	s.logger.InfoContext(ctx, "event removed", "event_id", id)
	return nil
}

// ListUpcoming returns events from the request time on, soonest first.
func (s *Service) ListUpcoming(ctx context.Context) ([]*Event, error) {
	events, err := s.store.ListUpcoming(ctx, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Não foi possível listar os eventos.")
	}
	return events, nil
}
