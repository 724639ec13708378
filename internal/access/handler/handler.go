// Package handler exposes the check-in desk and dashboard over HTTP.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"clubdesk/internal/access/models"
	"clubdesk/internal/transport/http/shared"
	dErrors "clubdesk/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mock_service_test.go -package=handler

// Service is the check-in desk contract consumed by this handler.
type Service interface {
	RecordEntry(ctx context.Context, ref models.ContactRef) (*models.Entry, error)
	ValidateEntries(ctx context.Context, ids []int64) (*models.ValidationResult, error)
	RemoveEntry(ctx context.Context, id int64) error
	ListEntries(ctx context.Context, params models.EntryListParams) ([]*models.EntryDetails, int, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{service: service, logger: logger}
}

// RegisterDesk mounts the entry desk endpoints (admin only).
func (h *Handler) RegisterDesk(r chi.Router) {
	r.Post("/entry", h.recordEntry)
	r.Post("/validate", h.validateEntries)
	r.Delete("/entry/{entryId}", h.removeEntry)
}

// RegisterDashboard mounts the dashboard endpoints (admin only).
func (h *Handler) RegisterDashboard(r chi.Router) {
	r.Post("/entries", h.listEntries)
	r.Get("/stats", h.stats)
}

type recordEntryRequest struct {
	UserEmail string `json:"userEmail"`
	UserPhone string `json:"userPhone"`
}

type entryResponse struct {
	shared.Response
	Entry *models.Entry `json:"entry,omitempty"`
}

func (h *Handler) recordEntry(w http.ResponseWriter, r *http.Request) {
	var req recordEntryRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.Failure(w, "O email ou o telefone do utilizador são obrigatórios.")
		return
	}

	ref, err := models.FromRequest(req.UserEmail, req.UserPhone)
	if err != nil {
		shared.Failure(w, dErrors.MessageOf(err, "O email ou o telefone do utilizador são obrigatórios."))
		return
	}

	entry, err := h.service.RecordEntry(r.Context(), ref)
	if err != nil {
		h.fail(w, r, err, "Não foi possível registar a entrada.")
		return
	}

	shared.WriteJSON(w, http.StatusOK, entryResponse{
		Response: shared.Response{Status: true, Message: "Entrada registada com sucesso."},
		Entry:    entry,
	})
}

type validateEntriesRequest struct {
	EntryIDs []int64 `json:"entryIds"`
}

type validateEntriesResponse struct {
	shared.Response
	Validated  int     `json:"validated"`
	SkippedIDs []int64 `json:"skippedIds,omitempty"`
}

func (h *Handler) validateEntries(w http.ResponseWriter, r *http.Request) {
	var req validateEntriesRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.Failure(w, "Parâmetros inválidos.")
		return
	}

	result, err := h.service.ValidateEntries(r.Context(), req.EntryIDs)
	if err != nil {
		h.fail(w, r, err, "Não foi possível validar as entradas.")
		return
	}

	shared.WriteJSON(w, http.StatusOK, validateEntriesResponse{
		Response:   shared.Response{Status: true, Message: "Entradas validadas com sucesso."},
		Validated:  result.Validated,
		SkippedIDs: result.SkippedIDs,
	})
}

func (h *Handler) removeEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "entryId"), 10, 64)
	if err != nil || id < 1 {
		shared.Failure(w, "ID de entrada inválido.")
		return
	}

	if err := h.service.RemoveEntry(r.Context(), id); err != nil {
		h.fail(w, r, err, "Não foi possível remover a entrada.")
		return
	}
	shared.Success(w, "Entrada removida com sucesso.")
}

type listEntriesResponse struct {
	shared.Response
	Entries []*models.EntryDetails `json:"entries"`
	Total   int                    `json:"total"`
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	var params models.EntryListParams
	if err := shared.Decode(r, &params); err != nil {
		shared.Failure(w, "Parâmetros inválidos.")
		return
	}

	entries, total, err := h.service.ListEntries(r.Context(), params)
	if err != nil {
		h.fail(w, r, err, "Não foi possível listar as entradas.")
		return
	}
	if entries == nil {
		entries = []*models.EntryDetails{}
	}

	shared.WriteJSON(w, http.StatusOK, listEntriesResponse{
		Response: shared.Response{Status: true},
		Entries:  entries,
		Total:    total,
	})
}

type statsResponse struct {
	shared.Response
	Stats *models.Stats `json:"stats,omitempty"`
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.fail(w, r, err, "Não foi possível obter as estatísticas.")
		return
	}
	shared.WriteJSON(w, http.StatusOK, statsResponse{
		Response: shared.Response{Status: true},
		Stats:    stats,
	})
}

// fail maps a domain error to the envelope. Internal causes are logged with
// detail, the caller only sees the fallback message.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if dErrors.Is(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(r.Context(), "access request failed", "error", err)
	}
	shared.Failure(w, dErrors.MessageOf(err, fallback))
}
