// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/tasklane/internal/models"
	"github.com/tomtom215/tasklane/internal/validation"
)

// UserProfile is the public view of a user. Session data stays server side.
type UserProfile struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Phone             string `json:"phone"`
	Timezone          string `json:"timezone,omitempty"`
	IconSrc           string `json:"iconSrc,omitempty"`
	PersonalProjectID int64  `json:"personalProjectId,omitempty"`
}

func profileOf(u models.User) UserProfile {
	return UserProfile{
		ID:                u.ID,
		Name:              u.Name,
		Phone:             u.Phone,
		Timezone:          u.Timezone,
		IconSrc:           u.Config.IconSrc,
		PersonalProjectID: u.Config.PersonalProjectID,
	}
}

// UserByID serves a profile by id.
func (h *Handler) UserByID(w http.ResponseWriter, r *http.Request) {
	if h.deps.Users == nil {
		NewResponseWriter(w, r).ServiceUnavailable("User service unavailable")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		NewResponseWriter(w, r).BadRequest("id must be a positive integer")
		return
	}

	u, err := h.deps.Users.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(profileOf(u))
}

// UserByPhone serves a profile by phone number.
func (h *Handler) UserByPhone(w http.ResponseWriter, r *http.Request) {
	if h.deps.Users == nil {
		NewResponseWriter(w, r).ServiceUnavailable("User service unavailable")
		return
	}
	req := validation.PhoneRequest{Phone: r.URL.Query().Get("phone")}
	if verr := validation.ValidateStruct(&req); verr != nil {
		NewResponseWriter(w, r).ValidationError(verr)
		return
	}

	u, err := h.deps.Users.ByPhone(r.Context(), req.Phone)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(profileOf(u))
}
