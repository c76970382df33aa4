// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package service

import (
	"context"
	"errors"

	"github.com/tomtom215/tasklane/internal/cache"
	"github.com/tomtom215/tasklane/internal/database"
	"github.com/tomtom215/tasklane/internal/materialize"
	"github.com/tomtom215/tasklane/internal/models"
)

// ErrParentNotFound is returned when a file parent does not resolve.
var ErrParentNotFound = errors.New("file parent not found")

// ParentLookup resolves file parents in the authoritative store.
type ParentLookup interface {
	LookupFileParent(ctx context.Context, parent models.FileParent) (int64, error)
}

// ProjectLoader places a project and its memberships in the stores.
type ProjectLoader interface {
	EnsureProject(ctx context.Context, projectID int64) (models.Project, error)
}

// FileAccess answers whether a viewer may read a file attached to a parent.
type FileAccess struct {
	stores   *cache.Stores
	lookup   ParentLookup
	projects ProjectLoader
}

// NewFileAccess creates the file access service.
func NewFileAccess(stores *cache.Stores, lookup ParentLookup, projects ProjectLoader) *FileAccess {
	return &FileAccess{stores: stores, lookup: lookup, projects: projects}
}

// ProjectOf returns the project that owns parent.
func (s *FileAccess) ProjectOf(ctx context.Context, parent models.FileParent) (int64, error) {
	if !parent.Type.Valid() {
		return 0, ErrParentNotFound
	}
	pid, err := s.lookup.LookupFileParent(ctx, parent)
	if errors.Is(err, database.ErrNotFound) {
		return 0, ErrParentNotFound
	}
	return pid, err
}

// CanRead reports whether viewerID holds an active membership in the
// project that owns parent.
func (s *FileAccess) CanRead(ctx context.Context, viewerID int64, parent models.FileParent) (int64, bool, error) {
	pid, err := s.ProjectOf(ctx, parent)
	if err != nil {
		return 0, false, err
	}
	if _, err := s.projects.EnsureProject(ctx, pid); err != nil {
		if materialize.IsStale(err) {
			return pid, false, nil
		}
		return 0, false, err
	}
	_, ok := s.stores.Memberships.ByProjectUser(pid, viewerID)
	return pid, ok, nil
}
