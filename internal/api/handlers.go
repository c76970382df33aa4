// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/tasklane/internal/assemble"
	"github.com/tomtom215/tasklane/internal/config"
	"github.com/tomtom215/tasklane/internal/logging"
	"github.com/tomtom215/tasklane/internal/models"
	"github.com/tomtom215/tasklane/internal/service"
	"github.com/tomtom215/tasklane/internal/triage"
	ws "github.com/tomtom215/tasklane/internal/websocket"
)

// TaskReader serves bucket and schedule reads.
type TaskReader interface {
	GetBucket(ctx context.Context, b triage.Bucket, q service.Query) (assemble.Page, error)
	GetSchedule(ctx context.Context, viewerID int64, projectIDs []int64, from, to time.Time) (assemble.Page, error)
}

// UserReader serves profile reads.
type UserReader interface {
	Get(ctx context.Context, id int64) (models.User, error)
	ByPhone(ctx context.Context, phone string) (models.User, error)
}

// FileAccessChecker resolves file parents and read permission.
type FileAccessChecker interface {
	ProjectOf(ctx context.Context, parent models.FileParent) (int64, error)
	CanRead(ctx context.Context, viewerID int64, parent models.FileParent) (int64, bool, error)
}

// Notifier publishes committed changes on the invalidation bus.
type Notifier interface {
	Publish(ctx context.Context, entityType models.EntityType, entityID int64, data map[string]any) error
}

// ReadinessCheck is one dependency probed by /health/ready.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Deps are the services behind the handlers. Nil services answer 503.
type Deps struct {
	Tasks     TaskReader
	Users     UserReader
	Files     FileAccessChecker
	Notifier  Notifier
	Hub       *ws.Hub
	Readiness []ReadinessCheck
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers_tasks.go: bucket and schedule reads
//   - handlers_users.go: profile reads
//   - handlers_files.go: file access
//   - handlers_internal.go: write path hooks
//   - handlers_websocket.go: live connections
//   - handlers_health.go: probes
type Handler struct {
	deps      Deps
	config    *config.Config
	startTime time.Time
}

// NewHandler creates the API handler. cfg may be nil in tests, in which
// case page sizes use the assembler defaults and any WebSocket origin is
// accepted.
func NewHandler(cfg *config.Config, deps Deps) *Handler {
	return &Handler{deps: deps, config: cfg, startTime: time.Now()}
}

// pageSizes returns the default and maximum page size.
func (h *Handler) pageSizes() (def, maxSize int) {
	if h.config == nil {
		return assemble.DefaultLimit, 100
	}
	return h.config.API.DefaultPageSize, h.config.API.MaxPageSize
}

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates WebSocket connection origins
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// Browsers always send Origin; an empty one would bypass CORS.
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	if h.config == nil {
		return true
	}

	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}
