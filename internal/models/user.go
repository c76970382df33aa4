// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package models

import "time"

// UserConfig is the user's settings block.
//
// PersonalProjectID is rewritten by project-transfer operations; IconSrc is
// derived from IconFileID when the snapshot is materialized.
type UserConfig struct {
	PersonalProjectID int64  `json:"personalProjectId,omitempty"`
	CurrentProjectID  int64  `json:"currentProjectId,omitempty"`
	IconFileID        *int64 `json:"iconFileId,omitempty"`
	IconSrc           string `json:"iconSrc,omitempty"`
}

// User is a registered account.
type User struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone"`
	Timezone  string     `json:"timezone,omitempty"`
	Config    UserConfig `json:"config"`
	SessionID string     `json:"sessionId,omitempty"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// Deleted reports whether the user carries a tombstone.
func (u *User) Deleted() bool {
	return isDeleted(u.DeletedAt)
}

// Clone returns an independent copy.
func (u User) Clone() User {
	out := u
	if u.Config.IconFileID != nil {
		id := *u.Config.IconFileID
		out.Config.IconFileID = &id
	}
	if u.DeletedAt != nil {
		ts := *u.DeletedAt
		out.DeletedAt = &ts
	}
	return out
}
