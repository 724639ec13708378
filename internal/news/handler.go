package news

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

// Register mounts the news board endpoints (auth required upstream).
func (h *Handler) Register(r chi.Router) {
	r.Post("/", h.add)
	r.Post("/list", h.list)
	r.Get("/{newsId}", h.get)
	r.Put("/{newsId}/toggle", h.toggle)
	r.Delete("/{newsId}", h.remove)
}

type itemResponse struct {
	shared.Response
	News *Item `json:"news,omitempty"`
}

type listResponse struct {
	shared.Response
	News  []*Item `json:"news"`
	Total int     `json:"total"`
}

type toggleResponse struct {
	shared.Response
	Active bool `json:"is_active"`
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.Failure(w, "Pedido inválido.")
		return
	}

	item, err := h.service.Add(r.Context(), req)
	if err != nil {
		h.fail(w, r, err, "Não foi possível publicar a notícia.")
		return
	}
	shared.WriteJSON(w, http.StatusOK, itemResponse{
		Response: shared.Response{Status: true, Message: "Notícia publicada com sucesso."},
		News:     item,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.newsID(w, r)
	if !ok {
		return
	}

	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Não foi possível obter a notícia.")
		return
	}
	shared.WriteJSON(w, http.StatusOK, itemResponse{
		Response: shared.Response{Status: true},
		News:     item,
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var params ListParams
	if err := shared.Decode(r, &params); err != nil {
		shared.Failure(w, "Parâmetros inválidos.")
		return
	}

	items, total, err := h.service.List(r.Context(), params)
	if err != nil {
		h.fail(w, r, err, "Não foi possível listar as notícias.")
		return
	}
	if items == nil {
		items = []*Item{}
	}
	shared.WriteJSON(w, http.StatusOK, listResponse{
		Response: shared.Response{Status: true},
		News:     items,
		Total:    total,
	})
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request) {
	id, ok := h.newsID(w, r)
	if !ok {
		return
	}

	active, err := h.service.ToggleActive(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Não foi possível atualizar a notícia.")
		return
	}
	shared.WriteJSON(w, http.StatusOK, toggleResponse{
		Response: shared.Response{Status: true, Message: "Notícia atualizada com sucesso."},
		Active:   active,
	})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.newsID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err, "Não foi possível remover a notícia.")
		return
	}
	shared.Success(w, "Notícia removida com sucesso.")
}

func (h *Handler) newsID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "newsId"), 10, 64)
	if err != nil || id < 1 {
		shared.Failure(w, "ID de notícia inválido.")
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if dErrors.Is(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(r.Context(), "news request failed", "error", err)
	}
	shared.Failure(w, dErrors.MessageOf(err, fallback))
}
