// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package middleware

import (
	"net/http"

	"github.com/tomtom215/tasklane/internal/logging"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

// HeaderCorrelationID lets an upstream caller pin the correlation id that
// follows the request onto the invalidation bus.
const HeaderCorrelationID = "X-Correlation-ID"

// RequestID assigns a request id, keeping one supplied by an upstream proxy,
// and starts or continues a correlation id. Both are echoed on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = logging.GenerateRequestID()
		}
		w.Header().Set(HeaderRequestID, requestID)

		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		if cid := r.Header.Get(HeaderCorrelationID); cid != "" {
			ctx = logging.ContextWithCorrelationID(ctx, cid)
		} else {
			ctx = logging.ContextWithNewCorrelationID(ctx)
		}
		w.Header().Set(HeaderCorrelationID, logging.CorrelationIDFromContext(ctx))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
