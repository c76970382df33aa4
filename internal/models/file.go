// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package models

import (
	"fmt"
	"time"
)

// ParentType tags the kind of entity a file is attached to.
type ParentType string

const (
	ParentTask       ParentType = "task"
	ParentComment    ParentType = "comment"
	ParentUser       ParentType = "user"
	ParentProject    ParentType = "project"
	ParentMembership ParentType = "membership"
)

// Valid reports whether p is a known parent tag.
func (p ParentType) Valid() bool {
	switch p {
	case ParentTask, ParentComment, ParentUser, ParentProject, ParentMembership:
		return true
	default:
		return false
	}
}

// FileParent is the tagged union identifying a file's owner.
type FileParent struct {
	Type ParentType `json:"parentType"`
	ID   int64      `json:"parentId"`
}

func (p FileParent) String() string {
	return fmt.Sprintf("%s:%d", p.Type, p.ID)
}

// File is an uploaded attachment. Src is the resolved public path.
type File struct {
	ID int64 `json:"id"`
	FileParent
	Name      string     `json:"name"`
	MimeType  string     `json:"mimeType,omitempty"`
	Size      int64      `json:"size"`
	Src       string     `json:"src"`
	CreatedAt time.Time  `json:"createdAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}
