// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package middleware

import (
	"net/http"
	"strconv"

	"github.com/tomtom215/tasklane/internal/logging"
)

// HeaderUserID carries the authenticated user id set by the gateway.
const HeaderUserID = "X-User-ID"

// Viewer reads the caller's user id from X-User-ID into the context. A
// missing or malformed id is passed to onMissing, which writes the
// rejection.
func Viewer(onMissing http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := strconv.ParseInt(r.Header.Get(HeaderUserID), 10, 64)
			if err != nil || id <= 0 {
				onMissing(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(logging.ContextWithViewerID(r.Context(), id)))
		})
	}
}
