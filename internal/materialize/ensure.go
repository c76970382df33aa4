// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package materialize

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tomtom215/tasklane/internal/models"
)

// EnsureProject makes sure the project, its memberships and their users are
// in the entity stores and returns the project.
func (l *Loader) EnsureProject(ctx context.Context, projectID int64) (models.Project, error) {
	if p, ok := l.stores.Projects.Get(projectID); ok && l.stores.Memberships.ProjectLoaded(projectID) {
		if p.Deleted() {
			return models.Project{}, &StaleReferenceError{Kind: "project", ID: projectID}
		}
		return p, nil
	}

	v, err := shared(ctx, &l.projects, strconv.FormatInt(projectID, 10), func(ctx context.Context) (any, error) {
		return l.loadProject(ctx, projectID)
	})
	if err != nil {
		return models.Project{}, err
	}
	return v.(models.Project), nil
}

func (l *Loader) loadProject(ctx context.Context, projectID int64) (models.Project, error) {
	project, err := l.source.GetProject(ctx, projectID)
	if err != nil {
		return models.Project{}, notFoundAsStale(err, "project", projectID)
	}
	if project.Deleted() {
		l.stores.Projects.Put(project)
		return models.Project{}, &StaleReferenceError{Kind: "project", ID: projectID}
	}

	memberships, err := l.source.ListProjectMemberships(ctx, projectID)
	if err != nil {
		return models.Project{}, err
	}

	var userIDs []int64
	for _, m := range memberships {
		if _, ok := l.stores.Users.Get(m.UserID); !ok {
			userIDs = append(userIDs, m.UserID)
		}
	}
	users, err := l.source.GetUsers(ctx, userIDs)
	if err != nil {
		return models.Project{}, err
	}
	l.noteUnresolved(userIDs, users)

	icons := newIconSet()
	icons.want(project.Config.IconFileID, project.Config.IconSrc)
	for _, m := range memberships {
		icons.want(m.Config.IconFileID, m.Config.IconSrc)
	}
	for _, u := range users {
		icons.want(u.Config.IconFileID, u.Config.IconSrc)
	}
	if err := icons.resolve(ctx, l.source); err != nil {
		return models.Project{}, err
	}

	// Users first so every membership resolves once visible.
	for _, u := range users {
		u.Config.IconSrc = icons.src(u.Config.IconFileID, u.Config.IconSrc)
		l.stores.Users.Put(u)
	}
	for _, m := range memberships {
		m.Config.IconSrc = icons.src(m.Config.IconFileID, m.Config.IconSrc)
		l.stores.Memberships.Put(m)
	}
	project.Config.IconSrc = icons.src(project.Config.IconFileID, project.Config.IconSrc)
	l.stores.Projects.Put(project)
	l.stores.Memberships.MarkProjectLoaded(projectID)
	return project, nil
}

// noteUnresolved remembers the requested users the store did not return.
func (l *Loader) noteUnresolved(requested []int64, users []models.User) {
	if len(users) == len(requested) {
		return
	}
	got := make(map[int64]struct{}, len(users))
	for _, u := range users {
		got[u.ID] = struct{}{}
	}
	for _, id := range requested {
		if _, ok := got[id]; !ok {
			l.unresolved.Store(id, struct{}{})
		}
	}
}

// EnsureUser returns the user from the store, loading it on a miss.
func (l *Loader) EnsureUser(ctx context.Context, userID int64) (models.User, error) {
	if u, ok := l.stores.Users.Get(userID); ok {
		return u, nil
	}
	u, err := l.source.GetUser(ctx, userID)
	if err != nil {
		return models.User{}, notFoundAsStale(err, "user", userID)
	}
	if err := l.PutUser(ctx, u); err != nil {
		return models.User{}, err
	}
	stored, _ := l.stores.Users.Get(userID)
	return stored, nil
}

// PutUser resolves the user's icon and stores it.
func (l *Loader) PutUser(ctx context.Context, u models.User) error {
	icons := newIconSet()
	icons.want(u.Config.IconFileID, u.Config.IconSrc)
	if err := icons.resolve(ctx, l.source); err != nil {
		return err
	}
	u.Config.IconSrc = icons.src(u.Config.IconFileID, u.Config.IconSrc)
	l.stores.Users.Put(u)
	return nil
}

// iconSet collects icon file ids whose src is not yet known.
type iconSet struct {
	ids  []int64
	seen map[int64]struct{}
	srcs map[int64]string
}

func newIconSet() *iconSet {
	return &iconSet{seen: make(map[int64]struct{})}
}

func (s *iconSet) want(fileID *int64, src string) {
	if fileID == nil || src != "" {
		return
	}
	if _, ok := s.seen[*fileID]; ok {
		return
	}
	s.seen[*fileID] = struct{}{}
	s.ids = append(s.ids, *fileID)
}

func (s *iconSet) resolve(ctx context.Context, src Source) error {
	if len(s.ids) == 0 {
		return nil
	}
	files, err := src.GetFiles(ctx, s.ids)
	if err != nil {
		return fmt.Errorf("resolve icons: %w", err)
	}
	s.srcs = make(map[int64]string, len(files))
	for id, f := range files {
		s.srcs[id] = f.Src
	}
	return nil
}

func (s *iconSet) src(fileID *int64, current string) string {
	if current != "" || fileID == nil {
		return current
	}
	return s.srcs[*fileID]
}
