// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package cache

import "github.com/tomtom215/tasklane/internal/models"

// ProjectStore holds project snapshots.
type ProjectStore struct {
	store *Store[models.Project]
}

// NewProjectStore creates a project store with n shards.
func NewProjectStore(n int) *ProjectStore {
	return &ProjectStore{store: NewStore("project", n, models.Project.Clone)}
}

func (s *ProjectStore) Get(id int64) (models.Project, bool) {
	return s.store.Get(id)
}

func (s *ProjectStore) Put(p models.Project) {
	s.store.Put(p.ID, p)
}

func (s *ProjectStore) Patch(id int64, partial map[string]any) (models.Project, bool, error) {
	p, ok, err := s.store.Patch(id, partial)
	if ok && err == nil && p.ID != id {
		// The id is the key; a payload cannot move a snapshot.
		p.ID = id
		s.store.Put(id, p)
	}
	return p, ok, err
}

func (s *ProjectStore) Len() int {
	return s.store.Len()
}
