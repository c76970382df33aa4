// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/tomtom215/tasklane/internal/models"
)

// passthrough lets slice arguments reach the mock the way pgx accepts them.
type passthrough struct{}

func (passthrough) ConvertValue(v any) (driver.Value, error) { return v, nil }

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.ValueConverterOption(passthrough{}))
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		_ = conn.Close()
	})
	return NewWithConn(conn, time.Second), mock
}

var userCols = []string{"id", "name", "phone", "timezone", "config", "session_id", "deleted_at"}

func TestGetUser(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(int64(7), "Ann", "+10000000007", "Europe/Berlin",
				[]byte(`{"personalProjectId":70,"iconSrc":"/i/7.png"}`), "", nil))

	u, err := db.GetUser(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if u.Name != "Ann" || u.Config.PersonalProjectID != 70 || u.Config.IconSrc != "/i/7.png" {
		t.Errorf("GetUser() = %+v", u)
	}
	if u.DeletedAt != nil {
		t.Errorf("DeletedAt = %v, want nil", u.DeletedAt)
	}
}

func TestGetUserNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := db.GetUser(context.Background(), 8)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetUser() error = %v, want ErrNotFound", err)
	}
	if IsStoreError(err) {
		t.Error("ErrNotFound must not be wrapped as a StoreError")
	}
}

func TestQueryFailureIsStoreError(t *testing.T) {
	db, mock := newMockDB(t)
	boom := errors.New("connection reset")
	mock.ExpectQuery(`FROM users WHERE phone = \$1`).
		WithArgs("+1").
		WillReturnError(boom)

	_, err := db.GetUserByPhone(context.Background(), "+1")
	var se *StoreError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *StoreError", err)
	}
	if se.Op != "get_user_by_phone" || !errors.Is(err, boom) {
		t.Errorf("StoreError = %+v", se)
	}
}

func TestGetUsers(t *testing.T) {
	db, mock := newMockDB(t)
	deleted := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM users WHERE id = ANY\(\$1\)`).
		WithArgs([]int64{1, 2}).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(int64(1), "Ann", "+1", "", []byte(`{}`), "", nil).
			AddRow(int64(2), "Bob", "+2", "", []byte(`{}`), "s-2", deleted))

	users, err := db.GetUsers(context.Background(), []int64{1, 2})
	if err != nil {
		t.Fatalf("GetUsers() error = %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("GetUsers() returned %d users", len(users))
	}
	if users[1].DeletedAt == nil || !users[1].DeletedAt.Equal(deleted) || users[1].SessionID != "s-2" {
		t.Errorf("users[1] = %+v", users[1])
	}

	// No ids, no query.
	if got, err := db.GetUsers(context.Background(), nil); err != nil || got != nil {
		t.Errorf("GetUsers(nil) = %v, %v", got, err)
	}
}

func TestGetProject(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`FROM projects WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "personal", "config", "deleted_at"}).
			AddRow(int64(3), "Launch", false, []byte(`{"iconFileId":12}`), nil))

	p, err := db.GetProject(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetProject() error = %v", err)
	}
	if p.Title != "Launch" || p.Config.IconFileID == nil || *p.Config.IconFileID != 12 {
		t.Errorf("GetProject() = %+v", p)
	}
}

func TestListProjectMemberships(t *testing.T) {
	db, mock := newMockDB(t)
	cols := []string{"id", "project_id", "user_id", "role", "user_name", "position", "personal", "config", "deleted_at"}
	mock.ExpectQuery(`FROM project_users`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(1), int64(3), int64(10), "owner", "", "", false, []byte(`{}`), nil).
			AddRow(int64(2), int64(3), int64(11), "member", "Bobby", "QA", false,
				[]byte(`{"scheduleFilters":{"showDone":true}}`), nil))

	ms, err := db.ListProjectMemberships(context.Background(), 3)
	if err != nil {
		t.Fatalf("ListProjectMemberships() error = %v", err)
	}
	if len(ms) != 2 {
		t.Fatalf("got %d memberships", len(ms))
	}
	if ms[0].Role != models.RoleOwner || ms[1].UserName != "Bobby" || ms[1].Config.ScheduleFilters["showDone"] != true {
		t.Errorf("memberships = %+v", ms)
	}
}

func TestLoadTaskProjection(t *testing.T) {
	db, mock := newMockDB(t)
	doc := `{
		"id": 41, "projectId": 3, "title": "Ship it", "info": "", "groupId": null,
		"startTime": null, "endTime": "2026-03-01T10:00:00+00:00",
		"timeType": "", "regular": {}, "ownerUserId": 10, "execEndTime": null,
		"extSource": "", "extDestination": "",
		"assignments": [{"id": 1, "taskId": 41, "userId": 11, "role": "exec", "status": "exec_ready"}],
		"ticks": [{"id": 5, "taskId": 41, "title": "tests", "done": false, "position": 1}],
		"hashtags": [{"id": 2, "name": "release"}],
		"comments": [{"id": 9, "taskId": 41, "userId": 11, "text": "on it",
			"createdAt": "2026-02-27T08:00:00+00:00",
			"files": [{"id": 100, "parentType": "comment", "parentId": 9, "name": "log.txt",
				"mimeType": "text/plain", "size": 12, "src": "/f/100", "createdAt": "2026-02-27T08:00:00+00:00"}]}],
		"files": []
	}`
	mock.ExpectQuery(`FROM tasks t`).
		WithArgs(int64(11), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"json_build_object"}).AddRow([]byte(doc)))

	tasks, err := db.LoadTaskProjection(context.Background(), 11, 3)
	if err != nil {
		t.Fatalf("LoadTaskProjection() error = %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks", len(tasks))
	}
	task := tasks[0]
	if task.ID != 41 || task.EndTime == nil || task.Regular.Defined() {
		t.Errorf("task = %+v", task)
	}
	if len(task.Assignments) != 1 || !task.Assignments[0].HasStatus(models.StatusExecReady) {
		t.Errorf("assignments = %+v", task.Assignments)
	}
	if len(task.Comments) != 1 || len(task.Comments[0].Files) != 1 {
		t.Fatalf("comments = %+v", task.Comments)
	}
	f := task.Comments[0].Files[0]
	if f.FileParent != (models.FileParent{Type: models.ParentComment, ID: 9}) || f.ID != 100 {
		t.Errorf("comment file = %+v", f)
	}
	if !task.VisibleTo(11) {
		t.Error("projected task should be visible to its executor")
	}
}

func TestLoadTaskProjectionError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`FROM tasks t`).
		WithArgs(int64(1), int64(2)).
		WillReturnError(errors.New("canceling statement due to statement timeout"))

	_, err := db.LoadTaskProjection(context.Background(), 1, 2)
	var se *StoreError
	if !errors.As(err, &se) || se.Op != "load_task_projection" {
		t.Fatalf("error = %v, want StoreError(load_task_projection)", err)
	}
}

func TestLookupFileParent(t *testing.T) {
	tests := []struct {
		parent  models.ParentType
		pattern string
	}{
		{models.ParentTask, `SELECT project_id FROM tasks`},
		{models.ParentComment, `FROM comments c`},
		{models.ParentUser, `personalProjectId`},
		{models.ParentProject, `SELECT id FROM projects`},
		{models.ParentMembership, `FROM project_users`},
	}
	for _, tt := range tests {
		t.Run(string(tt.parent), func(t *testing.T) {
			db, mock := newMockDB(t)
			mock.ExpectQuery(tt.pattern).
				WithArgs(int64(5)).
				WillReturnRows(sqlmock.NewRows([]string{"project_id"}).AddRow(int64(77)))

			pid, err := db.LookupFileParent(context.Background(), models.FileParent{Type: tt.parent, ID: 5})
			if err != nil || pid != 77 {
				t.Errorf("LookupFileParent() = %d, %v", pid, err)
			}
		})
	}

	t.Run("missing parent", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`FROM tasks`).
			WithArgs(int64(6)).
			WillReturnRows(sqlmock.NewRows([]string{"project_id"}))
		_, err := db.LookupFileParent(context.Background(), models.FileParent{Type: models.ParentTask, ID: 6})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		db, _ := newMockDB(t)
		if _, err := db.LookupFileParent(context.Background(), models.FileParent{Type: "board", ID: 1}); err == nil {
			t.Error("expected error for unknown parent type")
		}
	})
}

func TestGetFiles(t *testing.T) {
	db, mock := newMockDB(t)
	created := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM files`).
		WithArgs([]int64{12, 13}).
		WillReturnRows(sqlmock.NewRows([]string{"id", "parent_type", "parent_id", "name", "mime_type", "size", "src", "created_at"}).
			AddRow(int64(12), "project", int64(3), "logo.png", "image/png", int64(2048), "/f/12", created))

	files, err := db.GetFiles(context.Background(), []int64{12, 13})
	if err != nil {
		t.Fatalf("GetFiles() error = %v", err)
	}
	if len(files) != 1 || files[12].Src != "/f/12" || files[12].FileParent.Type != models.ParentProject {
		t.Errorf("GetFiles() = %+v", files)
	}
}
