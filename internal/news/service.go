package news

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	dErrors "clubdesk/pkg/domain-errors"
	"clubdesk/pkg/platform/sentinel"
	"clubdesk/pkg/requestcontext"
)

// Store is the news persistence contract.
type Store interface {
	Insert(ctx context.Context, item *Item) error
	FindByID(ctx context.Context, id int64) (*Item, error)
	List(ctx context.Context, params ListParams) ([]*Item, int, error)
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
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

// Add publishes a post authored by the acting member. New posts start
// active.
func (s *Service) Add(ctx context.Context, req AddRequest) (*Item, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "O título é obrigatório.")
	}

	item := &Item{
		Title:        req.Title,
		Content:      req.Content,
		ImagePath:    req.ImagePath,
		DownloadPath: req.DownloadPath,
		Active:       true,
		Date:         requestcontext.Now(ctx),
	}
	if req.Date != nil {
		item.Date = *req.Date
	}
	if actor, ok := requestcontext.ActorFrom(ctx); ok {
		id := actor.ID
		item.AuthorID = &id
	}

	if err := s.store.Insert(ctx, item); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Não foi possível publicar a notícia.")
	}
	s.logger.InfoContext(ctx, "news published", "news_id", item.ID)
	return item, nil
}

// Get returns one post by id.
func (s *Service) Get(ctx context.Context, id int64) (*Item, error) {
	item, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Notícia não encontrada.")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Não foi possível obter a notícia.")
	}
	return item, nil
}

// List returns a board page plus the total matching count.
func (s *Service) List(ctx context.Context, params ListParams) ([]*Item, int, error) {
	items, total, err := s.store.List(ctx, params)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "Não foi possível listar as notícias.")
	}
	return items, total, nil
}

// ToggleActive flips the visibility flag and returns the new state.
func (s *Service) ToggleActive(ctx context.Context, id int64) (bool, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}

	next := !item.Active
	if err := s.store.SetActive(ctx, id, next); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, dErrors.New(dErrors.CodeNotFound, "Notícia não encontrada.")
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "Não foi possível atualizar a notícia.")
	}
	s.logger.InfoContext(ctx, "news toggled", "news_id", id, "active", next)
	return next, nil
}

// Delete removes a post.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "Notícia não encontrada.")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "Não foi possível remover a notícia.")
	}
	s.logger.InfoContext(ctx, "news removed", "news_id", id)
	return nil
}
