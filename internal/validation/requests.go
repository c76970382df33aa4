// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package validation

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Pagination and range limits of the read endpoints.
const (
	MaxLimit        = 200
	MaxOffset       = 1000000
	MaxProjectIDs   = 100
	MaxScheduleSpan = 366 * 24 * time.Hour
)

// BucketRequest is a page of one paginated bucket. A zero Limit selects the
// default page size.
type BucketRequest struct {
	Bucket     string  `validate:"required,bucket"`
	ProjectIDs []int64 `validate:"omitempty,max=100,dive,gt=0"`
	Offset     int     `validate:"min=0,max=1000000"`
	Limit      int     `validate:"min=0,max=200"`
}

// ScheduleRequest is a schedule read over [From, To].
type ScheduleRequest struct {
	ProjectIDs []int64   `validate:"omitempty,max=100,dive,gt=0"`
	From       time.Time `validate:"required"`
	To         time.Time `validate:"required,gtefield=From"`
}

// PhoneRequest looks a user up by phone number.
type PhoneRequest struct {
	Phone string `validate:"required,e164"`
}

// NotifyRequest is an entity update handed to the invalidation bus.
type NotifyRequest struct {
	EntityType string         `json:"entityType" validate:"required,entitytype"`
	EntityID   int64          `json:"entityId" validate:"gt=0"`
	Data       map[string]any `json:"data" validate:"required"`
}

// FileParentRequest addresses a file parent.
type FileParentRequest struct {
	Type string `validate:"required,parenttype"`
	ID   int64  `validate:"gt=0"`
}

// scheduleSpan caps the range a schedule read may walk.
func scheduleSpan(sl validator.StructLevel) {
	r, ok := sl.Current().Interface().(ScheduleRequest)
	if !ok {
		return
	}
	if !r.From.IsZero() && r.To.Sub(r.From) > MaxScheduleSpan {
		sl.ReportError(r.To, "To", "To", "maxspan", "366d")
	}
}
