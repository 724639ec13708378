package agenda

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"clubdesk/internal/transport/http/shared"
	dErrors "clubdesk/pkg/domain-errors"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{service: service, logger: logger}
}

// Register mounts the agenda endpoints (auth required upstream).
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.add)
	r.Put("/{eventId}", h.update)
	r.Delete("/{eventId}", h.remove)
}

type eventResponse struct {
	shared.Response
	Event *Event `json:"event,omitempty"`
}

type listResponse struct {
	shared.Response
	Events []*Event `json:"events"`
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	var req UpsertRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.Failure(w, "Pedido inválido.")
		return
	}

	event, err := h.service.Add(r.Context(), req)
	if err != nil {
		h.fail(w, r, err, "Não foi possível criar o evento.")
		return
	}
	shared.WriteJSON(w, http.StatusOK, eventResponse{
		Response: shared.Response{Status: true, Message: "Evento criado com sucesso."},
		Event:    event,
	})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.eventID(w, r)
	if !ok {
		return
	}

	var req UpsertRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.Failure(w, "Pedido inválido.")
		return
	}

	event, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.fail(w, r, err, "Não foi possível atualizar o evento.")
		return
	}
	shared.WriteJSON(w, http.StatusOK, eventResponse{
		Response: shared.Response{Status: true, Message: "Evento atualizado com sucesso."},
		Event:    event,
	})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.eventID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err, "Não foi possível remover o evento.")
		return
	}
	shared.Success(w, "Evento removido com sucesso.")
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.ListUpcoming(r.Context())
	if err != nil {
		h.fail(w, r, err, "Não foi possível listar os eventos.")
		return
	}
	if events == nil {
		events = []*Event{}
	}
	shared.WriteJSON(w, http.StatusOK, listResponse{
		Response: shared.Response{Status: true},
		Events:   events,
	})
}

func (h *Handler) eventID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "eventId"), 10, 64)
	if err != nil || id < 1 {
		shared.Failure(w, "ID de evento inválido.")
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if dErrors.Is(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(r.Context(), "agenda request failed", "error", err)
	}
	shared.Failure(w, dErrors.MessageOf(err, fallback))
}
