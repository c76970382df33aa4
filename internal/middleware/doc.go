// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

/*
Package middleware provides the HTTP middleware shared by every route.

Components:

  - RequestID: request and correlation ids on the context and the response
  - Metrics: request latency under the chi route pattern
  - Viewer: the caller's user id from the X-User-ID header

Authentication happens at the gateway in front of this service. The gateway
forwards the authenticated user id, and Viewer only parses it.

Usage with chi:

	r.Use(middleware.RequestID)
	r.Use(middleware.Metrics)
	r.Route("/api/v1/tasks", func(r chi.Router) {
	    r.Use(middleware.Viewer(onMissing))
	    r.Get("/{bucket}", handler.Bucket)
	})
*/
package middleware
