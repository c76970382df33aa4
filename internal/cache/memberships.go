// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package cache

import (
	"sync"

	"github.com/tomtom215/tasklane/internal/models"
)

type pairKey struct {
	projectID int64
	userID    int64
}

// projectShard indexes the memberships of the projects hashed to it.
type projectShard struct {
	mu     sync.RWMutex
	pairs  map[pairKey]int64
	loaded map[int64]struct{}
}

// MembershipStore holds membership snapshots indexed by
// (projectID, userID) for non-deleted rows.
//
// Lock order is membership shard first, then project shard.
type MembershipStore struct {
	store    *Store[models.Membership]
	projects []*projectShard
}

// NewMembershipStore creates a membership store with n shards.
func NewMembershipStore(n int) *MembershipStore {
	s := &MembershipStore{store: NewStore("membership", n, models.Membership.Clone)}
	s.projects = make([]*projectShard, len(s.store.shards))
	for i := range s.projects {
		s.projects[i] = &projectShard{
			pairs:  make(map[pairKey]int64),
			loaded: make(map[int64]struct{}),
		}
	}
	return s
}

func (s *MembershipStore) projectShardFor(projectID int64) *projectShard {
	return s.projects[shardIndex(projectID, len(s.projects))]
}

// Get returns a copy of the membership with the given id.
func (s *MembershipStore) Get(id int64) (models.Membership, bool) {
	return s.store.Get(id)
}

// Put stores m and reindexes it.
func (s *MembershipStore) Put(m models.Membership) {
	_, _ = s.store.Mutate(m.ID, func(old models.Membership, ok bool) (models.Membership, bool, error) {
		if ok {
			s.unindex(old)
		}
		s.index(m)
		return m, true, nil
	})
}

// Patch merges partial over an existing membership and reindexes it.
func (s *MembershipStore) Patch(id int64, partial map[string]any) (models.Membership, bool, error) {
	found := false
	out, err := s.store.Mutate(id, func(old models.Membership, ok bool) (models.Membership, bool, error) {
		if !ok {
			return old, false, nil
		}
		found = true
		next, err := applyPatch(old, partial)
		if err != nil {
			return old, false, err
		}
		next.ID = id
		s.unindex(old)
		s.index(next)
		return next, true, nil
	})
	return out, found, err
}

func (s *MembershipStore) index(m models.Membership) {
	ps := s.projectShardFor(m.ProjectID)
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if !m.Deleted() {
		ps.pairs[pairKey{m.ProjectID, m.UserID}] = m.ID
	}
}

func (s *MembershipStore) unindex(m models.Membership) {
	ps := s.projectShardFor(m.ProjectID)
	ps.mu.Lock()
	defer ps.mu.Unlock()

	key := pairKey{m.ProjectID, m.UserID}
	if ps.pairs[key] == m.ID {
		delete(ps.pairs, key)
	}
}

// ByProjectUser returns the non-deleted membership linking userID to
// projectID.
func (s *MembershipStore) ByProjectUser(projectID, userID int64) (models.Membership, bool) {
	ps := s.projectShardFor(projectID)
	ps.mu.RLock()
	id, ok := ps.pairs[pairKey{projectID, userID}]
	ps.mu.RUnlock()
	if !ok {
		return models.Membership{}, false
	}
	return s.store.Get(id)
}

// MarkProjectLoaded records that every membership of projectID has been
// loaded from the authoritative store.
func (s *MembershipStore) MarkProjectLoaded(projectID int64) {
	ps := s.projectShardFor(projectID)
	ps.mu.Lock()
	ps.loaded[projectID] = struct{}{}
	ps.mu.Unlock()
}

// ProjectLoaded reports whether MarkProjectLoaded was called for projectID.
func (s *MembershipStore) ProjectLoaded(projectID int64) bool {
	ps := s.projectShardFor(projectID)
	ps.mu.RLock()
	_, ok := ps.loaded[projectID]
	ps.mu.RUnlock()
	return ok
}

// Len returns the number of stored memberships.
func (s *MembershipStore) Len() int {
	return s.store.Len()
}
