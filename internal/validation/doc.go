// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

// Package validation validates HTTP request parameters with
// go-playground/validator v10.
//
// A single validator instance is built once with the custom tags the API
// needs and is safe for concurrent use. Failures are returned as a
// *RequestValidationError, which converts to the API's VALIDATION_ERROR
// shape:
//
//	{
//	    "code": "VALIDATION_ERROR",
//	    "message": "Limit must be at most 200",
//	    "details": {"field": "Limit", "tag": "max", "value": 500}
//	}
//
// # Custom Tags
//
//   - bucket: a paginated task bucket name (not schedule)
//   - entitytype: user, project, membership or task
//   - parenttype: a file parent tag
//
// # Request Types
//
// The query structs of the read endpoints live in requests.go so handlers
// and tests share one definition of the limits.
package validation
