// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package models

import (
	"fmt"
	"time"
)

// EntityType names the entity kinds carried on the invalidation bus.
type EntityType string

const (
	EntityUser       EntityType = "user"
	EntityProject    EntityType = "project"
	EntityMembership EntityType = "membership"
	EntityTask       EntityType = "task"
)

// EntityTypes lists every known entity type in a stable order.
var EntityTypes = []EntityType{EntityUser, EntityProject, EntityMembership, EntityTask}

// Valid reports whether t is a known entity type.
func (t EntityType) Valid() bool {
	switch t {
	case EntityUser, EntityProject, EntityMembership, EntityTask:
		return true
	default:
		return false
	}
}

// ParseEntityType converts s into an EntityType.
func ParseEntityType(s string) (EntityType, error) {
	t := EntityType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown entity type %q", s)
	}
	return t, nil
}

// EntityKey identifies a single entity across processes.
type EntityKey struct {
	Type EntityType
	ID   int64
}

func (k EntityKey) String() string {
	return fmt.Sprintf("%s:%d", k.Type, k.ID)
}

func isDeleted(ts *time.Time) bool {
	return ts != nil && !ts.IsZero()
}

// DeepCopyMap copies m recursively through nested maps and slices.
func DeepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return DeepCopyMap(x)
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = deepCopyValue(x[i])
		}
		return out
	default:
		return v
	}
}
