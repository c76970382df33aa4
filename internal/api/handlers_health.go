// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package api

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// readinessTimeout bounds each dependency probe.
const readinessTimeout = 2 * time.Second

// HealthLive returns 200 while the process is alive, regardless of
// dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]any{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady probes every dependency concurrently and returns 503 when
// any of them fails.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	checks := h.deps.Readiness
	results := make(map[string]string, len(checks))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, c := range checks {
		wg.Add(1)
		go func(c ReadinessCheck) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
			defer cancel()

			status := "ok"
			if err := c.Check(ctx); err != nil {
				status = err.Error()
			}
			mu.Lock()
			results[c.Name] = status
			mu.Unlock()
		}(c)
	}
	wg.Wait()

	ready := true
	for _, status := range results {
		if status != "ok" {
			ready = false
		}
	}

	if !ready {
		NewResponseWriter(w, r).ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable,
			"Service not ready", map[string]any{"checks": results})
		return
	}
	NewResponseWriter(w, r).Success(map[string]any{"ready": true, "checks": results})
}
