// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package eventbus

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tasklane/internal/models"
)

// DefaultTopic is the topic every process publishes and subscribes to.
const DefaultTopic = "updateData"

// ErrMalformedEvent is returned for payloads that cannot be applied.
var ErrMalformedEvent = errors.New("malformed event")

// Event is both the bus payload and the push sent to live connections.
// Data is a partial entity in its JSON shape.
type Event struct {
	EntityType models.EntityType `json:"entityType"`
	EntityID   int64             `json:"entityId"`
	Data       map[string]any    `json:"data"`
}

// Key returns the entity key of the event.
func (e Event) Key() models.EntityKey {
	return models.EntityKey{Type: e.EntityType, ID: e.EntityID}
}

// Validate checks the entity type and id.
func (e Event) Validate() error {
	if !e.EntityType.Valid() {
		return fmt.Errorf("%w: unknown entity type %q", ErrMalformedEvent, e.EntityType)
	}
	if e.EntityID <= 0 {
		return fmt.Errorf("%w: invalid entity id %d", ErrMalformedEvent, e.EntityID)
	}
	return nil
}

// MarshalEvent encodes e for the wire.
func MarshalEvent(e Event) ([]byte, error) {
	if e.Data == nil {
		e.Data = map[string]any{}
	}
	return json.Marshal(e)
}

// UnmarshalEvent decodes a wire payload. Numbers inside Data are kept as
// json.Number so int64 ids are not rounded through float64.
func UnmarshalEvent(payload []byte) (Event, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var e Event
	if err := dec.Decode(&e); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	if e.Data == nil {
		e.Data = map[string]any{}
	}
	return e, nil
}

// Conn is a live client connection that accepts pushed events.
type Conn interface {
	Push(Event) error
}

// ConnLookup finds the live local connection of a subscriber code.
type ConnLookup interface {
	LookupConnection(code string) (Conn, bool)
}
