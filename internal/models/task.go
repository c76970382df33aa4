// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package models

import (
	"time"

	"github.com/goccy/go-json"
)

// TimeType distinguishes dated tasks from tasks parked for later.
type TimeType string

const (
	TimeTypeNone  TimeType = ""
	TimeTypeLater TimeType = "later"
)

// Recurrence rules understood by Regular.
const (
	RuleDay   = "day"
	RuleWeek  = "week"
	RuleMonth = "month"
)

// Regular describes a recurring task. A task whose Enabled is nil is not
// recurring; Enabled == true marks the template row that instances are
// generated from.
type Regular struct {
	Enabled      *bool  `json:"enabled,omitempty"`
	Rule         string `json:"rule,omitempty"`
	WeekdaysList []int  `json:"weekdaysList,omitempty"`
}

// Defined reports whether the regular descriptor is present.
func (r Regular) Defined() bool {
	return r.Enabled != nil
}

// Template reports whether the row is a recurrence template.
func (r Regular) Template() bool {
	return r.Enabled != nil && *r.Enabled
}

// AssignmentRole is the part a user plays on a task.
type AssignmentRole string

const (
	RoleExec    AssignmentRole = "exec"
	RoleControl AssignmentRole = "control"
)

// AssignmentStatus tracks an assignee's progress; nil means untouched.
type AssignmentStatus string

const (
	StatusExecReady    AssignmentStatus = "exec_ready"
	StatusControlReady AssignmentStatus = "control_ready"
)

// Assignment links a user to a task as executor or controller.
type Assignment struct {
	ID        int64             `json:"id"`
	TaskID    int64             `json:"taskId"`
	UserID    int64             `json:"userId"`
	Role      AssignmentRole    `json:"role"`
	Status    *AssignmentStatus `json:"status"`
	DeletedAt *time.Time        `json:"deletedAt,omitempty"`

	Member *MemberView `json:"member,omitempty"`
}

// HasStatus reports whether the assignment's status equals s.
func (a *Assignment) HasStatus(s AssignmentStatus) bool {
	return a.Status != nil && *a.Status == s
}

// Tick is a checklist item.
type Tick struct {
	ID       int64  `json:"id"`
	TaskID   int64  `json:"taskId"`
	Title    string `json:"title"`
	Done     bool   `json:"done"`
	Position int    `json:"position"`
}

// Hashtag is a label attached to a task.
type Hashtag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Comment is a task comment with its attachments.
type Comment struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"taskId"`
	UserID    int64     `json:"userId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	Files     []File    `json:"files,omitempty"`
}

// Task is the flattened task projection stored in the secondary store.
type Task struct {
	ID             int64      `json:"id"`
	ProjectID      int64      `json:"projectId"`
	Title          string     `json:"title"`
	Info           string     `json:"info,omitempty"`
	GroupID        *int64     `json:"groupId"`
	StartTime      *time.Time `json:"startTime"`
	EndTime        *time.Time `json:"endTime"`
	TimeType       TimeType   `json:"timeType"`
	Regular        Regular    `json:"regular"`
	OwnerUserID    int64      `json:"ownerUserId"`
	ExecEndTime    *time.Time `json:"execEndTime"`
	ExtSource      string     `json:"extSource,omitempty"`
	ExtDestination string     `json:"extDestination,omitempty"`
	DeletedAt      *time.Time `json:"deletedAt,omitempty"`

	Assignments []Assignment `json:"assignments"`
	Ticks       []Tick       `json:"ticks"`
	Hashtags    []Hashtag    `json:"hashtags"`
	Comments    []Comment    `json:"comments"`
	Files       []File       `json:"files"`

	OwnUser *MemberView `json:"ownUser,omitempty"`
}

// Deleted reports whether the task carries a tombstone.
func (t *Task) Deleted() bool {
	return isDeleted(t.DeletedAt)
}

// ActiveAssignments returns the non-deleted assignments with the given role.
func (t *Task) ActiveAssignments(role AssignmentRole) []*Assignment {
	var out []*Assignment
	for i := range t.Assignments {
		a := &t.Assignments[i]
		if a.Role == role && !isDeleted(a.DeletedAt) {
			out = append(out, a)
		}
	}
	return out
}

// VisibleTo applies the active-task eligibility rule for viewerID: the task
// is not deleted, not a recurrence template, the viewer owns it or holds an
// assignment, and it is either not done or the viewer is a controller that
// has not signed off yet.
func (t *Task) VisibleTo(viewerID int64) bool {
	if t.Deleted() || t.Regular.Template() {
		return false
	}

	involved := t.OwnerUserID == viewerID
	pendingControl := false
	for i := range t.Assignments {
		a := &t.Assignments[i]
		if a.UserID != viewerID || isDeleted(a.DeletedAt) {
			continue
		}
		involved = true
		if a.Role == RoleControl && !a.HasStatus(StatusControlReady) {
			pendingControl = true
		}
	}
	if !involved {
		return false
	}
	return t.ExecEndTime == nil || pendingControl
}

// Clone returns a deep copy through a JSON round trip.
func (t *Task) Clone() (*Task, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	var out Task
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
