// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package api

import (
	"net/http"
	"strconv"

	"github.com/tomtom215/tasklane/internal/models"
	"github.com/tomtom215/tasklane/internal/validation"
)

// FileAccessResult answers a file permission check.
type FileAccessResult struct {
	ProjectID int64 `json:"projectId"`
	Allowed   bool  `json:"allowed"`
}

// parseFileParent validates a parent type and id taken from the request.
func parseFileParent(typ, rawID string) (models.FileParent, *validation.RequestValidationError, bool) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return models.FileParent{}, nil, false
	}
	req := validation.FileParentRequest{Type: typ, ID: id}
	if verr := validation.ValidateStruct(&req); verr != nil {
		return models.FileParent{}, verr, false
	}
	return models.FileParent{Type: models.ParentType(req.Type), ID: req.ID}, nil, true
}

// FileAccess reports whether the viewer may read files attached to a
// parent.
//
// Query: parentType, parentId.
func (h *Handler) FileAccess(w http.ResponseWriter, r *http.Request) {
	if h.deps.Files == nil {
		NewResponseWriter(w, r).ServiceUnavailable("File service unavailable")
		return
	}
	q := r.URL.Query()
	parent, verr, ok := parseFileParent(q.Get("parentType"), q.Get("parentId"))
	if !ok {
		if verr != nil {
			NewResponseWriter(w, r).ValidationError(verr)
		} else {
			NewResponseWriter(w, r).BadRequest("parentId must be an integer")
		}
		return
	}

	pid, allowed, err := h.deps.Files.CanRead(r.Context(), viewerID(r), parent)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(FileAccessResult{ProjectID: pid, Allowed: allowed})
}
