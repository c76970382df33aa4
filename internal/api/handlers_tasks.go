// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/tasklane/internal/service"
	"github.com/tomtom215/tasklane/internal/triage"
	"github.com/tomtom215/tasklane/internal/validation"
)

// TasksBucket serves one page of a paginated bucket.
//
// Query: projectIds (comma-separated), offset, limit.
func (h *Handler) TasksBucket(w http.ResponseWriter, r *http.Request) {
	if h.deps.Tasks == nil {
		NewResponseWriter(w, r).ServiceUnavailable("Task service unavailable")
		return
	}

	q := r.URL.Query()
	req := validation.BucketRequest{Bucket: chi.URLParam(r, "bucket")}
	var err error
	if req.ProjectIDs, err = parseInt64List(q.Get("projectIds")); err != nil {
		NewResponseWriter(w, r).BadRequest(err.Error())
		return
	}
	if req.Offset, err = parseIntParam(q, "offset", 0); err != nil {
		NewResponseWriter(w, r).BadRequest(err.Error())
		return
	}
	if req.Limit, err = parseIntParam(q, "limit", 0); err != nil {
		NewResponseWriter(w, r).BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		NewResponseWriter(w, r).ValidationError(verr)
		return
	}

	def, maxSize := h.pageSizes()
	limit := req.Limit
	if limit == 0 {
		limit = def
	}
	limit = min(limit, maxSize)

	page, err := h.deps.Tasks.GetBucket(r.Context(), triage.Bucket(req.Bucket), service.Query{
		ViewerID:   viewerID(r),
		ProjectIDs: req.ProjectIDs,
		Offset:     req.Offset,
		Limit:      limit,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	NewResponseWriter(w, r).SuccessWithPagination(page, &PaginationMeta{
		Count:   len(page.ResultList),
		Offset:  req.Offset,
		Limit:   limit,
		HasMore: !page.EndOfList,
	})
}

// TasksSchedule serves the schedule tasks occurring in [from, to].
//
// Query: projectIds (comma-separated), from and to (RFC3339).
func (h *Handler) TasksSchedule(w http.ResponseWriter, r *http.Request) {
	if h.deps.Tasks == nil {
		NewResponseWriter(w, r).ServiceUnavailable("Task service unavailable")
		return
	}

	q := r.URL.Query()
	var req validation.ScheduleRequest
	var err error
	if req.ProjectIDs, err = parseInt64List(q.Get("projectIds")); err != nil {
		NewResponseWriter(w, r).BadRequest(err.Error())
		return
	}
	if req.From, err = parseTimeParam(q, "from"); err != nil {
		NewResponseWriter(w, r).BadRequest(err.Error())
		return
	}
	if req.To, err = parseTimeParam(q, "to"); err != nil {
		NewResponseWriter(w, r).BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		NewResponseWriter(w, r).ValidationError(verr)
		return
	}

	page, err := h.deps.Tasks.GetSchedule(r.Context(), viewerID(r), req.ProjectIDs, req.From, req.To)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(page)
}
