// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package triage

import (
	"math/rand"
	"reflect"
	"testing"
	"testing/quick"
	"time"

	"github.com/tomtom215/tasklane/internal/models"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func boolPtr(b bool) *bool { return &b }

func timePtr(t time.Time) *time.Time { return &t }

func statusPtr(s models.AssignmentStatus) *models.AssignmentStatus { return &s }

func exec(userID int64, status *models.AssignmentStatus) models.Assignment {
	return models.Assignment{UserID: userID, Role: models.RoleExec, Status: status}
}

func control(userID int64) models.Assignment {
	return models.Assignment{UserID: userID, Role: models.RoleControl}
}

func TestClassifyScenarios(t *testing.T) {
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name   string
		task   models.Task
		viewer int64
		want   Result
	}{
		{
			name: "later wins over regular",
			task: models.Task{
				OwnerUserID: 1,
				TimeType:    models.TimeTypeLater,
				Regular:     models.Regular{Enabled: boolPtr(true), Rule: models.RuleDay},
			},
			viewer: 1,
			want:   Result{Type: TypeLater, Rule: 1},
		},
		{
			name: "owner executing own overdue task is overdue not executor",
			task: models.Task{
				OwnerUserID: 5,
				EndTime:     timePtr(past),
				Assignments: []models.Assignment{exec(5, nil)},
			},
			viewer: 5,
			want:   Result{Type: TypeOverdue, Rule: 3},
		},
		{
			name: "meeting with end time is schedule",
			task: models.Task{
				OwnerUserID: 1,
				EndTime:     timePtr(future),
				Assignments: []models.Assignment{exec(2, nil), exec(3, nil)},
			},
			viewer: 2,
			want:   Result{Type: TypeSchedule, Rule: 5},
		},
		{
			name: "foreign executor without control is inbox toexec",
			task: models.Task{
				OwnerUserID: 3,
				Assignments: []models.Assignment{exec(7, nil)},
			},
			viewer: 7,
			want:   Result{Type: TypeInbox, Filter: FilterToExec, Rule: 6},
		},
		{
			name: "owner delegating without control sees executor queue",
			task: models.Task{
				OwnerUserID: 3,
				Assignments: []models.Assignment{exec(7, nil)},
			},
			viewer: 3,
			want:   Result{Type: TypeExecutor, Rule: 4},
		},
		{
			name: "disabled recurrence is still schedule",
			task: models.Task{
				OwnerUserID: 1,
				Regular:     models.Regular{Enabled: boolPtr(false), Rule: models.RuleWeek},
			},
			viewer: 1,
			want:   Result{Type: TypeSchedule, Rule: 2},
		},
		{
			name: "done task past its end time is not overdue",
			task: models.Task{
				OwnerUserID: 1,
				EndTime:     timePtr(past),
				ExecEndTime: timePtr(past),
				Assignments: []models.Assignment{control(1)},
			},
			viewer: 1,
			want:   Result{Type: TypeInbox, Filter: FilterNew, Rule: 7},
		},
		{
			name: "taken to work with end time is schedule",
			task: models.Task{
				OwnerUserID: 1,
				EndTime:     timePtr(future),
				Assignments: []models.Assignment{exec(2, statusPtr(models.StatusExecReady))},
			},
			viewer: 2,
			want:   Result{Type: TypeSchedule, Rule: 5},
		},
		{
			name: "controller present keeps task in inbox new",
			task: models.Task{
				OwnerUserID: 1,
				Assignments: []models.Assignment{exec(2, nil), control(1)},
			},
			viewer: 2,
			want:   Result{Type: TypeInbox, Filter: FilterNew, Rule: 7},
		},
		{
			name: "deleted executor is ignored",
			task: models.Task{
				OwnerUserID: 1,
				Assignments: []models.Assignment{
					{UserID: 2, Role: models.RoleExec, DeletedAt: timePtr(past)},
				},
			},
			viewer: 1,
			want:   Result{Type: TypeInbox, Filter: FilterNew, Rule: 7},
		},
		{
			name:   "plain own task is inbox new",
			task:   models.Task{OwnerUserID: 1},
			viewer: 1,
			want:   Result{Type: TypeInbox, Filter: FilterNew, Rule: 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(&tt.task, tt.viewer, now)
			if got != tt.want {
				t.Errorf("Classify() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResultBucket(t *testing.T) {
	tests := []struct {
		result Result
		want   Bucket
	}{
		{Result{Type: TypeLater}, BucketLater},
		{Result{Type: TypeSchedule}, BucketSchedule},
		{Result{Type: TypeOverdue}, BucketOverdue},
		{Result{Type: TypeExecutor}, BucketExecutor},
		{Result{Type: TypeInbox, Filter: FilterToExec}, BucketInboxToExec},
		{Result{Type: TypeInbox, Filter: FilterNew}, BucketInboxNew},
	}
	for _, tt := range tests {
		if got := tt.result.Bucket(); got != tt.want {
			t.Errorf("%+v.Bucket() = %s, want %s", tt.result, got, tt.want)
		}
	}
}

func TestParseBucket(t *testing.T) {
	for _, b := range Buckets {
		got, err := ParseBucket(string(b))
		if err != nil || got != b {
			t.Errorf("ParseBucket(%q) = %q, %v", b, got, err)
		}
	}
	if _, err := ParseBucket("inbox"); err == nil {
		t.Error("ParseBucket(inbox) should fail")
	}
}

// ruleConditions restates the rules as independent conditions so the
// first-match order of Decide can be checked against them.
func ruleConditions(p Predicates) [7]bool {
	return [7]bool{
		p.IsLater,
		p.IsRegular,
		!p.HasExecEndTime && p.IsOverdue,
		p.HasExecutor && p.ExecutorIsNotOwner && p.OwnerIsViewer && !p.IsOnControl,
		p.HasEndTime && (p.IsTakenToWork || p.IsMeeting),
		p.ExecutorIsNotOwner && !p.IsOnControl,
		true,
	}
}

func predicatesFromBits(bits int) Predicates {
	var p Predicates
	v := reflect.ValueOf(&p).Elem()
	for i := 0; i < v.NumField(); i++ {
		v.Field(i).SetBool(bits&(1<<i) != 0)
	}
	return p
}

func TestDecideExhaustive(t *testing.T) {
	fields := reflect.TypeOf(Predicates{}).NumField()
	seen := make(map[int]bool)

	for bits := 0; bits < 1<<fields; bits++ {
		p := predicatesFromBits(bits)
		got := Decide(p)

		conds := ruleConditions(p)
		first := 0
		for i, c := range conds {
			if c {
				first = i + 1
				break
			}
		}
		if got.Rule != first {
			t.Fatalf("Decide(%+v).Rule = %d, want %d", p, got.Rule, first)
		}
		seen[got.Rule] = true

		matches := 0
		for _, b := range Buckets {
			if got.Bucket() == b {
				matches++
			}
		}
		if matches != 1 {
			t.Fatalf("Decide(%+v) landed in %d buckets", p, matches)
		}
	}

	for rule := 1; rule <= 7; rule++ {
		if !seen[rule] {
			t.Errorf("rule %d is unreachable", rule)
		}
	}
}

func TestDecideQuick(t *testing.T) {
	total := func(p Predicates) bool {
		r := Decide(p)
		if r.Rule < 1 || r.Rule > 7 {
			return false
		}
		_, err := ParseBucket(string(r.Bucket()))
		return err == nil
	}
	if err := quick.Check(total, nil); err != nil {
		t.Error(err)
	}
}

// randomTask implements quick.Generator over realistic task shapes.
type randomTask struct {
	Task   models.Task
	Viewer int64
}

func (randomTask) Generate(r *rand.Rand, _ int) reflect.Value {
	users := []int64{1, 2, 3}
	pick := func() int64 { return users[r.Intn(len(users))] }
	maybeTime := func() *time.Time {
		switch r.Intn(3) {
		case 0:
			return nil
		case 1:
			return timePtr(now.Add(-time.Duration(r.Intn(72)+1) * time.Hour))
		default:
			return timePtr(now.Add(time.Duration(r.Intn(72)+1) * time.Hour))
		}
	}

	task := models.Task{
		ID:          r.Int63n(1000) + 1,
		OwnerUserID: pick(),
		EndTime:     maybeTime(),
		ExecEndTime: maybeTime(),
	}
	if r.Intn(4) == 0 {
		task.TimeType = models.TimeTypeLater
	}
	if r.Intn(4) == 0 {
		task.Regular = models.Regular{Enabled: boolPtr(r.Intn(2) == 0), Rule: models.RuleDay}
	}
	for i := r.Intn(4); i > 0; i-- {
		a := models.Assignment{UserID: pick(), Role: models.RoleExec}
		if r.Intn(3) == 0 {
			a.Role = models.RoleControl
		}
		if r.Intn(3) == 0 {
			a.Status = statusPtr(models.StatusExecReady)
		}
		task.Assignments = append(task.Assignments, a)
	}
	return reflect.ValueOf(randomTask{Task: task, Viewer: pick()})
}

func TestClassifyPartitionsTasks(t *testing.T) {
	exactlyOne := func(rt randomTask) bool {
		hits := 0
		for _, b := range Buckets {
			if Match(b, rt.Viewer, now)(&rt.Task) {
				hits++
			}
		}
		return hits == 1
	}
	if err := quick.Check(exactlyOne, &quick.Config{MaxCount: 2000}); err != nil {
		t.Error(err)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	same := func(rt randomTask) bool {
		return Classify(&rt.Task, rt.Viewer, now) == Classify(&rt.Task, rt.Viewer, now)
	}
	if err := quick.Check(same, nil); err != nil {
		t.Error(err)
	}
}
