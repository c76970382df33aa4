// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/tasklane/internal/cache"
	"github.com/tomtom215/tasklane/internal/database"
	"github.com/tomtom215/tasklane/internal/eventbus"
	"github.com/tomtom215/tasklane/internal/logging"
	"github.com/tomtom215/tasklane/internal/service"
	"github.com/tomtom215/tasklane/internal/taskview"
)

// ErrViewerRequired is returned for read routes called without X-User-ID.
var ErrViewerRequired = errors.New("viewer identity required")

// respondServiceError maps a service failure to its response. Failures the
// caller can retry are 503, an incoherent cache is 500.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	rw := NewResponseWriter(w, r)
	log := logging.Ctx(r.Context())

	switch {
	case errors.Is(err, context.Canceled):
		log.Debug().Err(err).Msg("Request canceled by client")
		rw.ServiceUnavailable("Request canceled")
	case errors.Is(err, service.ErrUserNotFound):
		rw.NotFound("User not found")
	case errors.Is(err, service.ErrParentNotFound):
		rw.NotFound("File parent not found")
	case errors.Is(err, eventbus.ErrMalformedEvent):
		rw.BadRequest(err.Error())
	case database.IsStoreError(err):
		log.Error().Err(err).Msg("Authoritative store error")
		rw.Error(http.StatusServiceUnavailable, ErrCodeDatabaseError, "A database error occurred")
	case errors.Is(err, cache.ErrNotFoundInCache):
		log.Error().Err(err).Msg("Entity store is missing a referenced snapshot")
		rw.Error(http.StatusInternalServerError, ErrCodeCacheIncoherent, "Cache is inconsistent")
	case errors.Is(err, gobreaker.ErrOpenState),
		errors.Is(err, gobreaker.ErrTooManyRequests),
		errors.Is(err, eventbus.ErrPublisherClosed),
		errors.Is(err, taskview.ErrClosed),
		errors.Is(err, context.DeadlineExceeded):
		log.Warn().Err(err).Msg("Dependency unavailable")
		rw.ServiceUnavailable("Service temporarily unavailable")
	default:
		log.Error().Err(err).Msg("Request failed")
		rw.InternalError("Internal server error")
	}
}
