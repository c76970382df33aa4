// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package cache

import (
	"hash/fnv"
	"sync"

	"github.com/tomtom215/tasklane/internal/models"
)

type phoneShard struct {
	mu  sync.RWMutex
	ids map[string]int64
}

// UserStore holds user snapshots and the phone -> user id index.
type UserStore struct {
	store  *Store[models.User]
	phones []*phoneShard
}

// NewUserStore creates a user store with n shards.
func NewUserStore(n int) *UserStore {
	s := &UserStore{store: NewStore("user", n, models.User.Clone)}
	s.phones = make([]*phoneShard, len(s.store.shards))
	for i := range s.phones {
		s.phones[i] = &phoneShard{ids: make(map[string]int64)}
	}
	return s
}

func (s *UserStore) phoneShardFor(phone string) *phoneShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(phone))
	return s.phones[h.Sum32()%uint32(len(s.phones))]
}

// Get returns the user snapshot for id.
func (s *UserStore) Get(id int64) (models.User, bool) {
	return s.store.Get(id)
}

// ByPhone resolves a phone number through the secondary index.
func (s *UserStore) ByPhone(phone string) (models.User, bool) {
	ps := s.phoneShardFor(phone)
	ps.mu.RLock()
	id, ok := ps.ids[phone]
	ps.mu.RUnlock()
	if !ok {
		return models.User{}, false
	}
	return s.store.Get(id)
}

// Put stores u and indexes its phone.
func (s *UserStore) Put(u models.User) {
	_, _ = s.store.Mutate(u.ID, func(old models.User, ok bool) (models.User, bool, error) {
		s.reindex(old, ok, u)
		return u, true, nil
	})
}

// Patch merges partial over the snapshot for id, keeping the phone index in
// step with the merged value.
func (s *UserStore) Patch(id int64, partial map[string]any) (models.User, bool, error) {
	found := false
	out, err := s.store.Mutate(id, func(old models.User, ok bool) (models.User, bool, error) {
		if !ok {
			return old, false, nil
		}
		found = true
		next, err := applyPatch(old, partial)
		if err != nil {
			return old, false, err
		}
		next.ID = id
		s.reindex(old, true, next)
		return next, true, nil
	})
	return out, found, err
}

// reindex runs under the user's shard lock.
func (s *UserStore) reindex(old models.User, hadOld bool, next models.User) {
	if hadOld && old.Phone != "" && old.Phone != next.Phone {
		ps := s.phoneShardFor(old.Phone)
		ps.mu.Lock()
		if ps.ids[old.Phone] == old.ID {
			delete(ps.ids, old.Phone)
		}
		ps.mu.Unlock()
	}
	if next.Phone != "" {
		ps := s.phoneShardFor(next.Phone)
		ps.mu.Lock()
		ps.ids[next.Phone] = next.ID
		ps.mu.Unlock()
	}
}

// Len returns the number of cached users.
func (s *UserStore) Len() int {
	return s.store.Len()
}
