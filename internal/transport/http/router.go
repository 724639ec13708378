// Package http assembles the API router: middleware chain, public auth
// endpoints and the authenticated/admin surfaces.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	accesshandler "clubdesk/internal/access/handler"
	"clubdesk/internal/agenda"
	memberhandler "clubdesk/internal/member/handler"
	"clubdesk/internal/news"
	"clubdesk/internal/platform/metrics"
	"clubdesk/internal/platform/middleware"
	"clubdesk/internal/transport/http/shared"
)

// Dependencies carries everything the router mounts.
type Dependencies struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	TokenValidator middleware.TokenValidator
	Members        *memberhandler.Handler
	Access         *accesshandler.Handler
	News           *news.Handler
	Agenda         *agenda.Handler

	// HealthCheck reports backing-store health for /healthz. Optional.
	HealthCheck func(ctx context.Context) error
}

// NewRouter builds the chi router with the full middleware chain.
func NewRouter(deps Dependencies) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Latency(deps.Metrics))
	r.Use(middleware.ClientMetadata)

	r.Get("/healthz", healthHandler(deps.HealthCheck))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/auth", func(r chi.Router) {
		deps.Members.RegisterPublic(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(deps.TokenValidator, deps.Logger))
			deps.Members.RegisterAuthenticated(r)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(deps.Logger))
				deps.Members.RegisterAdmin(r)
			})
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.TokenValidator, deps.Logger))

		r.Route("/api/news", deps.News.Register)
		r.Route("/api/agenda", deps.Agenda.Register)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(deps.Logger))
			r.Route("/api/acessos", deps.Access.RegisterDesk)
			r.Route("/api/dashboard", deps.Access.RegisterDashboard)
		})
	})

	return r
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				shared.WriteJSON(w, http.StatusServiceUnavailable,
					shared.Response{Status: false, Message: "unhealthy"})
				return
			}
		}
		shared.WriteJSON(w, http.StatusOK, shared.Response{Status: true, Message: "ok"})
	}
}
