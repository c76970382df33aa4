// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package triage

import (
	"time"

	"github.com/tomtom215/tasklane/internal/models"
)

// Type is the top-level container a task lands in.
type Type string

const (
	TypeLater    Type = "later"
	TypeSchedule Type = "schedule"
	TypeOverdue  Type = "overdue"
	TypeExecutor Type = "executor"
	TypeInbox    Type = "inbox"
)

// Filter refines TypeInbox.
type Filter string

const (
	FilterNone   Filter = ""
	FilterToExec Filter = "toexec"
	FilterNew    Filter = "new"
)

// Result is the outcome of Classify. Rule is the 1-based index of the rule
// that matched.
type Result struct {
	Type   Type   `json:"type"`
	Filter Filter `json:"filter,omitempty"`
	Rule   int    `json:"-"`
}

// Bucket maps the result to its container.
func (r Result) Bucket() Bucket {
	switch r.Type {
	case TypeLater:
		return BucketLater
	case TypeSchedule:
		return BucketSchedule
	case TypeOverdue:
		return BucketOverdue
	case TypeExecutor:
		return BucketExecutor
	}
	if r.Filter == FilterToExec {
		return BucketInboxToExec
	}
	return BucketInboxNew
}

// Predicates are the booleans the rules are written against.
//
// The single-executor fields are only set when the task has exactly one
// active executor; with two or more IsMeeting is set instead.
type Predicates struct {
	IsLater        bool
	IsRegular      bool
	HasEndTime     bool
	IsOverdue      bool
	HasExecEndTime bool

	IsMeeting          bool
	HasExecutor        bool
	ExecutorIsNotOwner bool
	IsTakenToWork      bool
	IsOnControl        bool

	OwnerIsViewer bool
}

// Derive computes the predicates of task for viewerID at now.
func Derive(task *models.Task, viewerID int64, now time.Time) Predicates {
	p := Predicates{
		IsLater:        task.TimeType == models.TimeTypeLater,
		IsRegular:      task.Regular.Defined(),
		HasEndTime:     task.EndTime != nil,
		HasExecEndTime: task.ExecEndTime != nil,
		OwnerIsViewer:  task.OwnerUserID == viewerID,
	}
	p.IsOverdue = p.HasEndTime && task.EndTime.Before(now)

	executors := task.ActiveAssignments(models.RoleExec)
	controllers := task.ActiveAssignments(models.RoleControl)
	p.IsOnControl = len(controllers) > 0

	switch {
	case len(executors) > 1:
		p.IsMeeting = true
	case len(executors) == 1:
		exec := executors[0]
		p.HasExecutor = true
		p.ExecutorIsNotOwner = exec.UserID != task.OwnerUserID
		p.IsTakenToWork = exec.HasStatus(models.StatusExecReady)
	}
	return p
}

// Decide applies the ordered rules to p. The first matching rule wins.
func Decide(p Predicates) Result {
	switch {
	case p.IsLater:
		return Result{Type: TypeLater, Rule: 1}
	case p.IsRegular:
		return Result{Type: TypeSchedule, Rule: 2}
	case !p.HasExecEndTime && p.IsOverdue:
		return Result{Type: TypeOverdue, Rule: 3}
	case p.HasExecutor && p.ExecutorIsNotOwner && p.OwnerIsViewer && !p.IsOnControl:
		return Result{Type: TypeExecutor, Rule: 4}
	case p.HasEndTime && (p.IsTakenToWork || p.IsMeeting):
		return Result{Type: TypeSchedule, Rule: 5}
	case p.ExecutorIsNotOwner && !p.IsOnControl:
		// Owner identity is not rechecked here; visibility filtering
		// upstream keeps unrelated viewers out.
		return Result{Type: TypeInbox, Filter: FilterToExec, Rule: 6}
	default:
		return Result{Type: TypeInbox, Filter: FilterNew, Rule: 7}
	}
}

// Classify sorts task into exactly one container for viewerID.
func Classify(task *models.Task, viewerID int64, now time.Time) Result {
	return Decide(Derive(task, viewerID, now))
}
