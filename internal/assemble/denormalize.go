// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package assemble

import (
	"github.com/tomtom215/tasklane/internal/cache"
	"github.com/tomtom215/tasklane/internal/models"
)

// MemberResolver denormalizes tasks from the membership and user stores.
type MemberResolver struct {
	Stores *cache.Stores
}

// NewMemberResolver creates a resolver over stores.
func NewMemberResolver(stores *cache.Stores) *MemberResolver {
	return &MemberResolver{Stores: stores}
}

// Member resolves the member view of userID inside projectID. A missing
// membership or user means the cache is incoherent and is returned as a
// cache.NotFoundInCacheError.
func (r *MemberResolver) Member(projectID, userID int64) (*models.MemberView, error) {
	m, ok := r.Stores.Memberships.ByProjectUser(projectID, userID)
	if !ok {
		return nil, cache.NotFound("membership", "project=%d user=%d", projectID, userID)
	}
	u, ok := r.Stores.Users.Get(userID)
	if !ok {
		return nil, cache.NotFound("user", "%d", userID)
	}

	view := &models.MemberView{
		UserID:   userID,
		Role:     m.Role,
		Name:     m.UserName,
		Position: m.Position,
		IconSrc:  m.Config.IconSrc,
	}
	if view.Name == "" {
		view.Name = u.Name
	}
	if view.IconSrc == "" {
		view.IconSrc = u.Config.IconSrc
	}
	return view, nil
}

// Denormalize sets OwnUser and the Member of every active assignment.
func (r *MemberResolver) Denormalize(task *models.Task) error {
	owner, err := r.Member(task.ProjectID, task.OwnerUserID)
	if err != nil {
		return err
	}
	task.OwnUser = owner

	for i := range task.Assignments {
		a := &task.Assignments[i]
		if a.DeletedAt != nil {
			continue
		}
		member, err := r.Member(task.ProjectID, a.UserID)
		if err != nil {
			return err
		}
		a.Member = member
	}
	return nil
}
