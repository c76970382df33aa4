// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package cache

import (
	"sync"

	"github.com/tomtom215/tasklane/internal/metrics"
)

// DefaultShards is the shard count used when a store is built with n <= 0.
const DefaultShards = 32

type shard[V any] struct {
	mu    sync.RWMutex
	items map[int64]V
}

// Store is a sharded map of int64 ids to snapshots of type V.
type Store[V any] struct {
	kind   string
	shards []*shard[V]
	clone  func(V) V
}

// NewStore creates a store with n shards. clone must return a copy of its
// argument that shares no mutable state with it.
func NewStore[V any](kind string, n int, clone func(V) V) *Store[V] {
	if n <= 0 {
		n = DefaultShards
	}
	s := &Store[V]{
		kind:   kind,
		shards: make([]*shard[V], n),
		clone:  clone,
	}
	for i := range s.shards {
		s.shards[i] = &shard[V]{items: make(map[int64]V)}
	}
	return s
}

// shardIndex spreads sequential ids across shards (Fibonacci hashing).
func shardIndex(id int64, n int) int {
	h := uint64(id) * 0x9E3779B97F4A7C15
	return int(h>>32) % n
}

func (s *Store[V]) shardFor(id int64) *shard[V] {
	return s.shards[shardIndex(id, len(s.shards))]
}

// Kind returns the store's label, used in metrics and errors.
func (s *Store[V]) Kind() string {
	return s.kind
}

// Get returns a copy of the snapshot for id.
func (s *Store[V]) Get(id int64) (V, bool) {
	sh := s.shardFor(id)
	sh.mu.RLock()
	v, ok := sh.items[id]
	sh.mu.RUnlock()

	metrics.RecordStoreLookup(s.kind, ok)
	if !ok {
		var zero V
		return zero, false
	}
	return s.clone(v), true
}

// Put stores a copy of v under id.
func (s *Store[V]) Put(id int64, v V) {
	_, _ = s.Mutate(id, func(V, bool) (V, bool, error) {
		return v, true, nil
	})
}

// Patch merges partial over the existing snapshot for id. It reports false
// and leaves the store untouched when id is not present.
func (s *Store[V]) Patch(id int64, partial map[string]any) (V, bool, error) {
	found := false
	out, err := s.Mutate(id, func(old V, ok bool) (V, bool, error) {
		if !ok {
			return old, false, nil
		}
		found = true
		next, err := applyPatch(old, partial)
		if err != nil {
			return old, false, err
		}
		return next, true, nil
	})
	return out, found, err
}

// Mutate runs fn under the shard's write lock. fn receives the current
// snapshot and whether it exists, and returns the replacement and whether to
// store it. Mutate returns a copy of the stored value.
func (s *Store[V]) Mutate(id int64, fn func(old V, ok bool) (V, bool, error)) (V, error) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	old, ok := sh.items[id]
	next, store, err := fn(old, ok)
	if err != nil {
		var zero V
		return zero, err
	}
	if !store {
		if ok {
			return s.clone(old), nil
		}
		var zero V
		return zero, nil
	}

	stored := s.clone(next)
	if !ok {
		metrics.StoreEntries.WithLabelValues(s.kind).Inc()
	}
	sh.items[id] = stored
	return s.clone(stored), nil
}

// Delete removes id from the store.
func (s *Store[V]) Delete(id int64) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, ok := sh.items[id]; ok {
		delete(sh.items, id)
		metrics.StoreEntries.WithLabelValues(s.kind).Dec()
	}
}

// Len returns the number of snapshots held.
func (s *Store[V]) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.items)
		sh.mu.RUnlock()
	}
	return n
}
