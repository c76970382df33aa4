// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package materialize

import (
	"errors"
	"fmt"
)

// ErrViewIncomplete is returned when the secondary store still lacks
// indexed tasks after they were fetched again.
var ErrViewIncomplete = errors.New("materialize: task view incomplete")

// StaleReferenceError reports a reference to an entity that is missing or
// soft-deleted in the authoritative store.
type StaleReferenceError struct {
	Kind string
	ID   int64
}

func (e *StaleReferenceError) Error() string {
	return fmt.Sprintf("stale %s reference %d", e.Kind, e.ID)
}

// IsStale reports whether err is a *StaleReferenceError.
func IsStale(err error) bool {
	var se *StaleReferenceError
	return errors.As(err, &se)
}
