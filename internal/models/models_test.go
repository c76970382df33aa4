// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package models

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func boolPtr(b bool) *bool { return &b }

func statusPtr(s AssignmentStatus) *AssignmentStatus { return &s }

func TestParseEntityType(t *testing.T) {
	for _, et := range EntityTypes {
		got, err := ParseEntityType(string(et))
		if err != nil || got != et {
			t.Errorf("ParseEntityType(%q) = %q, %v", et, got, err)
		}
	}
	if _, err := ParseEntityType("board"); err == nil {
		t.Error("expected error for unknown entity type")
	}
}

func TestTaskVisibleTo(t *testing.T) {
	now := time.Now()
	deleted := now.Add(-time.Hour)

	tests := []struct {
		name   string
		task   Task
		viewer int64
		want   bool
	}{
		{
			name:   "owner sees open task",
			task:   Task{ID: 1, OwnerUserID: 3},
			viewer: 3,
			want:   true,
		},
		{
			name:   "stranger does not see task",
			task:   Task{ID: 1, OwnerUserID: 3},
			viewer: 9,
			want:   false,
		},
		{
			name:   "executor sees task",
			task:   Task{ID: 1, OwnerUserID: 3, Assignments: []Assignment{{UserID: 9, Role: RoleExec}}},
			viewer: 9,
			want:   true,
		},
		{
			name:   "deleted assignment grants nothing",
			task:   Task{ID: 1, OwnerUserID: 3, Assignments: []Assignment{{UserID: 9, Role: RoleExec, DeletedAt: &deleted}}},
			viewer: 9,
			want:   false,
		},
		{
			name:   "soft-deleted task hidden",
			task:   Task{ID: 1, OwnerUserID: 3, DeletedAt: &deleted},
			viewer: 3,
			want:   false,
		},
		{
			name:   "recurrence template hidden",
			task:   Task{ID: 1, OwnerUserID: 3, Regular: Regular{Enabled: boolPtr(true), Rule: RuleDay}},
			viewer: 3,
			want:   false,
		},
		{
			name:   "recurrence instance visible",
			task:   Task{ID: 1, OwnerUserID: 3, Regular: Regular{Enabled: boolPtr(false), Rule: RuleDay}},
			viewer: 3,
			want:   true,
		},
		{
			name:   "done task hidden from owner",
			task:   Task{ID: 1, OwnerUserID: 3, ExecEndTime: &now},
			viewer: 3,
			want:   false,
		},
		{
			name: "done task visible to pending controller",
			task: Task{ID: 1, OwnerUserID: 3, ExecEndTime: &now, Assignments: []Assignment{
				{UserID: 9, Role: RoleControl},
			}},
			viewer: 9,
			want:   true,
		},
		{
			name: "done task hidden from signed-off controller",
			task: Task{ID: 1, OwnerUserID: 3, ExecEndTime: &now, Assignments: []Assignment{
				{UserID: 9, Role: RoleControl, Status: statusPtr(StatusControlReady)},
			}},
			viewer: 9,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.VisibleTo(tt.viewer); got != tt.want {
				t.Errorf("VisibleTo(%d) = %v, want %v", tt.viewer, got, tt.want)
			}
		})
	}
}

func TestFileParentFlattensInJSON(t *testing.T) {
	f := File{ID: 7, FileParent: FileParent{Type: ParentComment, ID: 11}, Name: "a.png"}

	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if raw["parentType"] != "comment" {
		t.Errorf("parentType = %v, want comment", raw["parentType"])
	}
	if raw["parentId"] != float64(11) {
		t.Errorf("parentId = %v, want 11", raw["parentId"])
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := Membership{ID: 1, Config: MembershipConfig{ScheduleFilters: map[string]any{
		"view": map[string]any{"mode": "week"},
	}}}
	c := m.Clone()
	c.Config.ScheduleFilters["view"].(map[string]any)["mode"] = "day"
	if m.Config.ScheduleFilters["view"].(map[string]any)["mode"] != "week" {
		t.Error("membership clone shares nested filter map")
	}

	task := &Task{ID: 1, Assignments: []Assignment{{UserID: 2, Role: RoleExec}}}
	tc, err := task.Clone()
	if err != nil {
		t.Fatalf("clone: %v", err)
	}
	tc.Assignments[0].UserID = 99
	if task.Assignments[0].UserID != 2 {
		t.Error("task clone shares assignments slice")
	}
}
