// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

/*
Package api provides the HTTP transport of the read side.

Routes are served by a chi router (see SetupChi):

	GET  /api/v1/tasks/{bucket}              paginated bucket read
	GET  /api/v1/tasks/schedule              schedule between from and to
	GET  /api/v1/users/{id}                  profile by id
	GET  /api/v1/users/by-phone              profile by phone number
	GET  /api/v1/files/access                file read permission
	GET  /api/v1/ws                          live connection (WebSocket)
	GET  /api/v1/health/live                 liveness probe
	GET  /api/v1/health/ready                readiness probe
	POST /api/v1/internal/notify             publish a committed change
	GET  /api/v1/internal/file-parents/...   resolve a file parent's project
	GET  /metrics                            Prometheus metrics

# Identity

Authentication happens at the gateway, which forwards the authenticated user
id in X-User-ID. Read routes reject requests without it. Internal routes are
called by the write path and require the shared X-Internal-Token instead.

# Responses

Every JSON response uses the APIResponse envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "..."}}
	{"success": false, "error": {"code": "NOT_FOUND", "message": "...", "request_id": "..."}}

A failed read is always an error response, never an empty list. Store
failures map to 503 so callers retry. An incoherent cache maps to 500.
*/
package api
