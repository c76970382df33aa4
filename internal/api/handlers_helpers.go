// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/tasklane/internal/logging"
)

// sanitizeLogValue escapes control characters to prevent log injection.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// viewerID returns the caller set by the Viewer middleware.
func viewerID(r *http.Request) int64 {
	id, _ := logging.ViewerIDFromContext(r.Context())
	return id
}

// respondViewerRequired rejects a read route called without identity.
func respondViewerRequired(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Unauthorized(ErrViewerRequired.Error())
}

// parseInt64List parses a comma-separated id list. Empty input yields nil.
func parseInt64List(raw string) ([]int64, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", sanitizeLogValue(p))
		}
		out = append(out, id)
	}
	return out, nil
}

// parseIntParam reads an optional integer query parameter.
func parseIntParam(q url.Values, name string, def int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}

// parseTimeParam reads an optional RFC3339 query parameter.
func parseTimeParam(q url.Values, name string) (time.Time, error) {
	raw := q.Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be an RFC3339 timestamp", name)
	}
	return t, nil
}
