// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package models

import "time"

// ProjectConfig holds the project icon reference.
type ProjectConfig struct {
	IconFileID *int64 `json:"iconFileId,omitempty"`
	IconSrc    string `json:"iconSrc,omitempty"`
}

// Project is a container for tasks. Exactly one personal project exists per
// user; its title and personal flag are system managed.
type Project struct {
	ID        int64         `json:"id"`
	Title     string        `json:"title"`
	Personal  bool          `json:"personal"`
	Config    ProjectConfig `json:"config"`
	DeletedAt *time.Time    `json:"deletedAt,omitempty"`
}

// Deleted reports whether the project carries a tombstone.
func (p *Project) Deleted() bool {
	return isDeleted(p.DeletedAt)
}

// Clone returns an independent copy.
func (p Project) Clone() Project {
	out := p
	if p.Config.IconFileID != nil {
		id := *p.Config.IconFileID
		out.Config.IconFileID = &id
	}
	if p.DeletedAt != nil {
		ts := *p.DeletedAt
		out.DeletedAt = &ts
	}
	return out
}

// MemberRole is a membership's role within a project.
type MemberRole string

const (
	RoleOwner  MemberRole = "owner"
	RoleMember MemberRole = "member"
)

// MembershipConfig holds per-membership settings.
type MembershipConfig struct {
	ScheduleFilters map[string]any `json:"scheduleFilters,omitempty"`
	IconFileID      *int64         `json:"iconFileId,omitempty"`
	IconSrc         string         `json:"iconSrc,omitempty"`
}

// Membership links a user to a project.
//
// UserName and Position override the user's profile inside the project.
// Personal mirrors the project's flag.
type Membership struct {
	ID        int64            `json:"id"`
	ProjectID int64            `json:"projectId"`
	UserID    int64            `json:"userId"`
	Role      MemberRole       `json:"role"`
	UserName  string           `json:"userName,omitempty"`
	Position  string           `json:"position,omitempty"`
	Personal  bool             `json:"personal"`
	Config    MembershipConfig `json:"config"`
	DeletedAt *time.Time       `json:"deletedAt,omitempty"`
}

// Deleted reports whether the membership carries a tombstone.
func (m *Membership) Deleted() bool {
	return isDeleted(m.DeletedAt)
}

// Clone returns an independent copy.
func (m Membership) Clone() Membership {
	out := m
	if m.Config.ScheduleFilters != nil {
		out.Config.ScheduleFilters = DeepCopyMap(m.Config.ScheduleFilters)
	}
	if m.Config.IconFileID != nil {
		id := *m.Config.IconFileID
		out.Config.IconFileID = &id
	}
	if m.DeletedAt != nil {
		ts := *m.DeletedAt
		out.DeletedAt = &ts
	}
	return out
}

// MemberView is the denormalized member identity stitched onto tasks and
// assignments by the result assembler.
type MemberView struct {
	UserID   int64      `json:"userId"`
	Role     MemberRole `json:"role"`
	Name     string     `json:"name"`
	Position string     `json:"position,omitempty"`
	IconSrc  string     `json:"iconSrc,omitempty"`
}
