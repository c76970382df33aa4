// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package cache

import (
	"errors"
	"fmt"
)

// ErrNotFoundInCache is matched by every NotFoundInCacheError.
var ErrNotFoundInCache = errors.New("not found in cache")

// NotFoundInCacheError reports a snapshot that must be present but is not.
// It signals cache incoherence and is never swallowed.
type NotFoundInCacheError struct {
	Kind string
	Key  string
}

func (e *NotFoundInCacheError) Error() string {
	return fmt.Sprintf("%s %s not found in cache", e.Kind, e.Key)
}

func (e *NotFoundInCacheError) Is(target error) bool {
	return target == ErrNotFoundInCache
}

// NotFound builds a NotFoundInCacheError.
func NotFound(kind string, format string, args ...any) error {
	return &NotFoundInCacheError{Kind: kind, Key: fmt.Sprintf(format, args...)}
}
