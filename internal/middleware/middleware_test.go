// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/tasklane/internal/logging"
	"github.com/tomtom215/tasklane/internal/metrics"
)

func TestRequestID_GeneratesNewID(t *testing.T) {
	var requestID, correlationID string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = logging.RequestIDFromContext(r.Context())
		correlationID = logging.CorrelationIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	responseID := rec.Header().Get(HeaderRequestID)
	if _, err := uuid.Parse(responseID); err != nil {
		t.Errorf("X-Request-ID %q is not a UUID: %v", responseID, err)
	}
	if requestID != responseID {
		t.Errorf("context id %q != response id %q", requestID, responseID)
	}
	if correlationID == "" || rec.Header().Get(HeaderCorrelationID) != correlationID {
		t.Errorf("correlation id = %q, header %q", correlationID, rec.Header().Get(HeaderCorrelationID))
	}
}

func TestRequestID_PreservesUpstreamIDs(t *testing.T) {
	var requestID, correlationID string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = logging.RequestIDFromContext(r.Context())
		correlationID = logging.CorrelationIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	req.Header.Set(HeaderCorrelationID, "corr-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if requestID != "req-1" || rec.Header().Get(HeaderRequestID) != "req-1" {
		t.Errorf("request id = %q", requestID)
	}
	if correlationID != "corr-1" {
		t.Errorf("correlation id = %q, want corr-1", correlationID)
	}
}

func TestMetrics_RecordsRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/api/v1/tasks/{bucket}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.CollectAndCount(metrics.HTTPRequestDuration)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tasks/later-metrics-test", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d", rec.Code)
	}

	// A new series appears for the route and status, not for the raw path.
	if got := testutil.CollectAndCount(metrics.HTTPRequestDuration); got != before+1 {
		t.Errorf("series count = %d, want %d", got, before+1)
	}
	if got := testutil.ToFloat64(metrics.HTTPActiveRequests); got != 0 {
		t.Errorf("active requests = %v, want 0", got)
	}
}

func TestMetrics_UnwrapsWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &metricsResponseWriter{ResponseWriter: rec, statusCode: http.StatusOK}
	if w.Unwrap() != rec {
		t.Error("Unwrap() should return the wrapped writer")
	}
}

func TestViewer(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		wantCode int
		wantID   int64
	}{
		{"valid", "42", http.StatusOK, 42},
		{"missing", "", http.StatusUnauthorized, 0},
		{"not a number", "abc", http.StatusUnauthorized, 0},
		{"zero", "0", http.StatusUnauthorized, 0},
		{"negative", "-3", http.StatusUnauthorized, 0},
	}

	reject := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got int64
			handler := Viewer(reject)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = logging.ViewerIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(HeaderUserID, tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode || got != tt.wantID {
				t.Errorf("code = %d id = %d, want %d and %d", rec.Code, got, tt.wantCode, tt.wantID)
			}
		})
	}
}

func TestMetrics_HijackRequiresSupport(t *testing.T) {
	w := &metricsResponseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}
	if _, _, err := w.Hijack(); err == nil {
		t.Error("Hijack() on a recorder should fail")
	}
}
