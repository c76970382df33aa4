// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package api

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/tasklane/internal/logging"
	"github.com/tomtom215/tasklane/internal/models"
	"github.com/tomtom215/tasklane/internal/validation"
)

// maxNotifyBody bounds a notification payload.
const maxNotifyBody = 1 << 20

// Notify publishes a committed entity change on the invalidation bus. The
// write path calls it after commit; every process, this one included,
// applies the change when it arrives.
func (h *Handler) Notify(w http.ResponseWriter, r *http.Request) {
	if h.deps.Notifier == nil {
		NewResponseWriter(w, r).ServiceUnavailable("Bus unavailable")
		return
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxNotifyBody))
	dec.UseNumber()
	var req validation.NotifyRequest
	if err := dec.Decode(&req); err != nil {
		NewResponseWriter(w, r).BadRequest("Invalid JSON body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		NewResponseWriter(w, r).ValidationError(verr)
		return
	}

	entityType, err := models.ParseEntityType(req.EntityType)
	if err != nil {
		NewResponseWriter(w, r).BadRequest(err.Error())
		return
	}
	if err := h.deps.Notifier.Publish(r.Context(), entityType, req.EntityID, req.Data); err != nil {
		respondServiceError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Debug().
		Str("entity_type", req.EntityType).
		Int64("entity_id", req.EntityID).
		Msg("Published entity change")
	NewResponseWriter(w, r).Accepted(map[string]any{
		"entityType": req.EntityType,
		"entityId":   req.EntityID,
	})
}

// FileParentProject resolves the project owning a file parent.
func (h *Handler) FileParentProject(w http.ResponseWriter, r *http.Request) {
	if h.deps.Files == nil {
		NewResponseWriter(w, r).ServiceUnavailable("File service unavailable")
		return
	}
	parent, verr, ok := parseFileParent(chi.URLParam(r, "type"), chi.URLParam(r, "id"))
	if !ok {
		if verr != nil {
			NewResponseWriter(w, r).ValidationError(verr)
		} else {
			NewResponseWriter(w, r).BadRequest("id must be an integer")
		}
		return
	}

	pid, err := h.deps.Files.ProjectOf(r.Context(), parent)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(map[string]int64{"projectId": pid})
}
