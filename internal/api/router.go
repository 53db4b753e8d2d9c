package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ZhaoCake/cakeboard/internal/auth"
)

func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(s.requireScope(auth.ScopeRead))

			r.Get("/board", s.handleGetBoard)
			r.Get("/devices", s.handleListDevices)
			r.Get("/devices/{id}", s.handleGetDevice)

			r.Get("/trace/sessions", s.handleListSessions)
			r.Get("/trace/sessions/{id}", s.handleGetSession)
			r.Get("/audit", s.handleListAudit)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireScope(auth.ScopeControl))

			r.Put("/devices/{id}/cells/{row}/{col}", s.handleSetCell)
			r.Post("/devices/{id}/toggle/{row}/{col}", s.handleToggleCell)
			r.Put("/devices/{id}/rows/{row}", s.handleSetRow)
			r.Post("/devices/{id}/reset", s.handleResetDevice)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireScope(auth.ScopeRead))
		r.Get(s.wsPath(), s.handleWebSocket)
	})

	return r
}

func (s *Server) wsPath() string {
	if s.wsCfg.Path == "" {
		return "/ws"
	}
	return s.wsCfg.Path
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	code := http.StatusOK
	status := map[string]any{
		"status":         "ok",
		"version":        s.version,
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
		"ws_clients":     s.hub.ClientCount(),
	}
	if snap := s.board.Latest(); snap != nil {
		status["board"] = snap.State
		status["measured_hz"] = snap.Pacer.MeasuredHz
	}

	if len(s.checks) > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		components := make(map[string]string, len(s.checks))
		for name, c := range s.checks {
			if err := c.HealthCheck(ctx); err != nil {
				components[name] = err.Error()
				status["status"] = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			components[name] = "ok"
		}
		status["components"] = components
	}
	writeJSON(w, code, status)
}
