package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"clubdesk/pkg/requestcontext"
)

// TokenValidator defines the interface for validating access tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// TokenClaims represents the claims we expect from the token validator.
type TokenClaims struct {
	MemberID int64
	Role     requestcontext.Role
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"status":false,"error":"%s","message":"%s"}`, errCode, errDesc))
}

// RequireAuth validates the bearer token and stores the actor in context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			after, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				logger.WarnContext(r.Context(), "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(r.Context()),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Token em falta ou inválido.")
				return
			}

			claims, err := validator.ValidateToken(after)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(r.Context()),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Token inválido ou expirado.")
				return
			}

			ctx := requestcontext.WithActor(r.Context(), requestcontext.Actor{
				ID:   claims.MemberID,
				Role: claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin evaluates the admin capability once per request, before any
// handler or data access runs. Must be mounted after RequireAuth.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := requestcontext.ActorFrom(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Token em falta ou inválido.")
				return
			}
			if !actor.IsAdmin() {
				logger.WarnContext(r.Context(), "forbidden - admin role required",
					"actor_id", actor.ID,
					"role", actor.Role,
					"request_id", requestcontext.RequestID(r.Context()),
				)
				writeJSONError(w, http.StatusForbidden, "forbidden", "Apenas os administradores podem executar esta operação.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
