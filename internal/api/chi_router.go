// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/tasklane/internal/middleware"
)

// Router wires the handler into a chi route tree.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	internalToken string
}

// NewRouter creates a router. A nil mw uses DefaultChiMiddlewareConfig.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	router := &Router{handler: handler, chiMiddleware: mw}
	if handler.config != nil {
		router.internalToken = handler.config.Security.InternalToken
	}
	return router
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogging())
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(router.chiMiddleware.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})

	// ========================
	// Health Endpoints
	// ========================
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// ========================
	// Read API
	// ========================
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.Viewer(respondViewerRequired))
		r.Use(chimiddleware.Compress(5, "application/json"))

		r.Route("/api/v1/tasks", func(r chi.Router) {
			r.Get("/schedule", router.handler.TasksSchedule)
			r.Get("/{bucket}", router.handler.TasksBucket)
		})
		r.Route("/api/v1/users", func(r chi.Router) {
			r.Get("/by-phone", router.handler.UserByPhone)
			r.Get("/{id}", router.handler.UserByID)
		})
		r.Get("/api/v1/files/access", router.handler.FileAccess)
	})

	// ========================
	// Live Connections
	// ========================
	r.With(router.chiMiddleware.RateLimitWebSocket()).Get("/api/v1/ws", router.handler.WebSocket)

	// ========================
	// Internal Endpoints
	// ========================
	// Called by the write path, never by browsers.
	r.Route("/api/v1/internal", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitInternal())
		r.Use(RequireInternalToken(router.internalToken))
		r.Post("/notify", router.handler.Notify)
		r.Get("/file-parents/{type}/{id}", router.handler.FileParentProject)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
