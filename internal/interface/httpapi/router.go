// Package httpapi serves sessions, conversation turns, artifacts and usage
// statistics over HTTP.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/neilberkman/hireplan/internal/core/agent"
	"github.com/neilberkman/hireplan/internal/core/analytics"
	"github.com/neilberkman/hireplan/internal/core/artifacts"
	"github.com/neilberkman/hireplan/internal/core/metrics"
	"github.com/neilberkman/hireplan/internal/core/session"
	"github.com/prometheus/client_golang/prometheus"
)

// Deps groups what the router needs.
type Deps struct {
	Agent     *agent.Agent
	Sessions  *session.Store
	Analytics *analytics.Store
	Generator *artifacts.Generator

	// Gatherer serves /metrics when set.
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// NewRouter returns the API handler.
//
//	GET  /health
//	GET  /metrics
//	GET  /api/sessions
//	POST /api/sessions
//	GET  /api/sessions/{id}
//	GET  /api/sessions/{id}/export
//	POST /api/sessions/{id}/messages
//	GET  /api/stats
//	GET  /api/market
//	POST /api/job-descriptions
//	POST /api/checklists
func NewRouter(deps Deps) http.Handler {
	h := newHandler(deps)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", h.listSessions)
			r.Post("/", h.createSession)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getSession)
				r.Get("/export", h.exportSession)
				r.Post("/messages", h.postMessage)
			})
		})

		r.Get("/stats", h.stats)
		r.Get("/market", h.market)
		r.Post("/job-descriptions", h.jobDescription)
		r.Post("/checklists", h.checklist)
	})

	return r
}
