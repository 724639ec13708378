// Package handler exposes the member registry over HTTP: public auth
// endpoints, the authenticated profile surface and the admin user list.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"clubdesk/internal/member/models"
	"clubdesk/internal/transport/http/shared"
	dErrors "clubdesk/pkg/domain-errors"
)

// Service is the member registry contract consumed by this handler.
type Service interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.Member, error)
	Login(ctx context.Context, email, password string) (string, *models.Member, error)
	Get(ctx context.Context, id int64) (*models.Member, error)
	List(ctx context.Context, params models.ListParams) ([]*models.Member, int, error)
	AdminUpdate(ctx context.Context, id int64, req models.UpdateRequest) (*models.Member, error)
	SelfUpdate(ctx context.Context, id int64, req models.SelfUpdateRequest) (*models.Member, error)
	Delete(ctx context.Context, id int64) error
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
	CheckResetToken(ctx context.Context, token string) error
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

// RegisterPublic mounts the endpoints that need no session.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/forgot-password", h.forgotPassword)
	r.Post("/reset-password", h.resetPassword)
	r.Get("/checktoken/{token}", h.checkResetToken)
}

// RegisterAuthenticated mounts endpoints available to any logged-in member.
func (h *Handler) RegisterAuthenticated(r chi.Router) {
	r.Get("/users/{userId}", h.get)
	r.Put("/users/{userId}/profile", h.selfUpdate)
}

// RegisterAdmin mounts the administrative user surface.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/users", h.list)
	r.Put("/users/{userId}", h.adminUpdate)
	r.Delete("/users/{userId}", h.remove)
}

type memberResponse struct {
	shared.Response
	User *models.View `json:"user,omitempty"`
}

type loginResponse struct {
	shared.Response
	Token string       `json:"token,omitempty"`
	User  *models.View `json:"user,omitempty"`
}

type listResponse struct {
	shared.Response
	Users []models.View `json:"users"`
	Total int           `json:"total"`
}

type resetTokenResponse struct {
	shared.Response
	ResetToken string `json:"resetToken,omitempty"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.Failure(w, "Pedido inválido.")
		return
	}

	member, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.fail(w, r, err, "Não foi possível registar o utilizador.")
		return
	}

	view := member.Sanitize()
	shared.WriteJSON(w, http.StatusOK, memberResponse{
		Response: shared.Response{Status: true, Message: "Utilizador registado com sucesso."},
		User:     &view,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.Failure(w, "Pedido inválido.")
		return
	}

	token, member, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err, "Não foi possível iniciar sessão.")
		return
	}

	view := member.Sanitize()
	shared.WriteJSON(w, http.StatusOK, loginResponse{
		Response: shared.Response{Status: true, Message: "Sessão iniciada com sucesso."},
		Token:    token,
		User:     &view,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.memberID(w, r)
	if !ok {
		return
	}

	member, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Não foi possível obter o utilizador.")
		return
	}

	view := member.Sanitize()
	shared.WriteJSON(w, http.StatusOK, memberResponse{
		Response: shared.Response{Status: true},
		User:     &view,
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var params models.ListParams
	if err := shared.Decode(r, &params); err != nil {
		shared.Failure(w, "Parâmetros inválidos.")
		return
	}

	members, total, err := h.service.List(r.Context(), params)
	if err != nil {
		h.fail(w, r, err, "Não foi possível listar os utilizadores.")
		return
	}

	views := make([]models.View, 0, len(members))
	for _, m := range members {
		views = append(views, m.Sanitize())
	}
	shared.WriteJSON(w, http.StatusOK, listResponse{
		Response: shared.Response{Status: true},
		Users:    views,
		Total:    total,
	})
}

func (h *Handler) adminUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.memberID(w, r)
	if !ok {
		return
	}

	var req models.UpdateRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.Failure(w, "Pedido inválido.")
		return
	}

	member, err := h.service.AdminUpdate(r.Context(), id, req)
	if err != nil {
		h.fail(w, r, err, "Não foi possível atualizar o utilizador.")
		return
	}

	view := member.Sanitize()
	shared.WriteJSON(w, http.StatusOK, memberResponse{
		Response: shared.Response{Status: true, Message: "Utilizador atualizado com sucesso."},
		User:     &view,
	})
}

func (h *Handler) selfUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.memberID(w, r)
	if !ok {
		return
	}

	var req models.SelfUpdateRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.Failure(w, "Pedido inválido.")
		return
	}

	member, err := h.service.SelfUpdate(r.Context(), id, req)
	if err != nil {
		h.fail(w, r, err, "Não foi possível atualizar o utilizador.")
		return
	}

	view := member.Sanitize()
	shared.WriteJSON(w, http.StatusOK, memberResponse{
		Response: shared.Response{Status: true, Message: "Perfil atualizado com sucesso."},
		User:     &view,
	})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.memberID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err, "Não foi possível remover o utilizador.")
		return
	}
	shared.Success(w, "Utilizador removido com sucesso.")
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.Failure(w, "Pedido inválido.")
		return
	}

	token, err := h.service.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		h.fail(w, r, err, "Não foi possível gerar o token de recuperação.")
		return
	}

	// No mail delivery: the token travels in the response for the frontend
	// to hand off.
	shared.WriteJSON(w, http.StatusOK, resetTokenResponse{
		Response:   shared.Response{Status: true, Message: "Token de recuperação gerado."},
		ResetToken: token,
	})
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.Failure(w, "Pedido inválido.")
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		h.fail(w, r, err, "Não foi possível redefinir a palavra-passe.")
		return
	}
	shared.Success(w, "Palavra-passe redefinida com sucesso.")
}

func (h *Handler) checkResetToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if err := h.service.CheckResetToken(r.Context(), token); err != nil {
		h.fail(w, r, err, "Token inválido ou expirado.")
		return
	}
	shared.Success(w, "Token válido.")
}

func (h *Handler) memberID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil || id < 1 {
		shared.Failure(w, "ID de utilizador inválido.")
		return 0, false
	}
	return id, true
}

// fail maps a domain error to the envelope. Internal causes are logged with
// detail, the caller only sees the fallback message.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if dErrors.Is(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(r.Context(), "member request failed", "error", err)
	}
	shared.Failure(w, dErrors.MessageOf(err, fallback))
}
