// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

// Package subscription records which live connections care about which
// entities.
//
// Entries are never required to be removed: a code whose connection is gone
// simply stops resolving in the websocket hub, and pushes to it are skipped.
package subscription

import (
	"hash/fnv"
	"sort"
	"sync"

	"github.com/tomtom215/tasklane/internal/models"
)

// DefaultShards is used when New is called with n <= 0.
const DefaultShards = 32

type keyShard struct {
	mu    sync.RWMutex
	codes map[models.EntityKey]map[string]struct{}
}

type codeShard struct {
	mu   sync.RWMutex
	keys map[string]map[models.EntityKey]struct{}
}

// Registry maps (entityType, entityID) to the set of subscriber codes, with
// a reverse index from code to keys.
//
// The forward and reverse shards are never locked at the same time.
type Registry struct {
	byKey  []*keyShard
	byCode []*codeShard
}

// New creates a registry with n shards on each side.
func New(n int) *Registry {
	if n <= 0 {
		n = DefaultShards
	}
	r := &Registry{
		byKey:  make([]*keyShard, n),
		byCode: make([]*codeShard, n),
	}
	for i := 0; i < n; i++ {
		r.byKey[i] = &keyShard{codes: make(map[models.EntityKey]map[string]struct{})}
		r.byCode[i] = &codeShard{keys: make(map[string]map[models.EntityKey]struct{})}
	}
	return r
}

func (r *Registry) keyShardFor(key models.EntityKey) *keyShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key.Type))
	id := uint64(key.ID)
	var b [8]byte
	for i := range b {
		b[i] = byte(id >> (8 * i))
	}
	_, _ = h.Write(b[:])
	return r.byKey[h.Sum32()%uint32(len(r.byKey))]
}

func (r *Registry) codeShardFor(code string) *codeShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(code))
	return r.byCode[h.Sum32()%uint32(len(r.byCode))]
}

// Subscribe adds code to the subscribers of (entityType, entityID). Calling
// it again with the same arguments has no effect.
func (r *Registry) Subscribe(entityType models.EntityType, entityID int64, code string) {
	key := models.EntityKey{Type: entityType, ID: entityID}

	ks := r.keyShardFor(key)
	ks.mu.Lock()
	set, ok := ks.codes[key]
	if !ok {
		set = make(map[string]struct{})
		ks.codes[key] = set
	}
	set[code] = struct{}{}
	ks.mu.Unlock()

	cs := r.codeShardFor(code)
	cs.mu.Lock()
	keys, ok := cs.keys[code]
	if !ok {
		keys = make(map[models.EntityKey]struct{})
		cs.keys[code] = keys
	}
	keys[key] = struct{}{}
	cs.mu.Unlock()
}

// Subscribers returns the codes subscribed to (entityType, entityID), sorted.
func (r *Registry) Subscribers(entityType models.EntityType, entityID int64) []string {
	key := models.EntityKey{Type: entityType, ID: entityID}
	ks := r.keyShardFor(key)
	ks.mu.RLock()
	out := make([]string, 0, len(ks.codes[key]))
	for code := range ks.codes[key] {
		out = append(out, code)
	}
	ks.mu.RUnlock()
	sort.Strings(out)
	return out
}

// ListSubscriptions returns every entity code is subscribed to, grouped by
// type with ids ascending. Used when a connection re-synchronizes.
func (r *Registry) ListSubscriptions(code string) map[models.EntityType][]int64 {
	cs := r.codeShardFor(code)
	cs.mu.RLock()
	out := make(map[models.EntityType][]int64)
	for key := range cs.keys[code] {
		out[key.Type] = append(out[key.Type], key.ID)
	}
	cs.mu.RUnlock()

	for t := range out {
		ids := out[t]
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	return out
}
