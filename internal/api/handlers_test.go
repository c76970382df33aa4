// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/tasklane/internal/assemble"
	"github.com/tomtom215/tasklane/internal/cache"
	"github.com/tomtom215/tasklane/internal/database"
	"github.com/tomtom215/tasklane/internal/eventbus"
	"github.com/tomtom215/tasklane/internal/models"
	"github.com/tomtom215/tasklane/internal/triage"
)

func TestTasksBucket(t *testing.T) {
	env := newTestEnv(t, nil)
	env.tasks.page = assemble.Page{
		ResultList: []*models.Task{{ID: 1, ProjectID: 3}, {ID: 2, ProjectID: 3}},
		EndOfList:  false,
	}

	rec := env.do(t, http.MethodGet, "/api/v1/tasks/overdue?projectIds=3,4&offset=2&limit=2", "", asViewer("7"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	resp := decode(t, rec)
	if !resp.Success || resp.Meta == nil || resp.Meta.Pagination == nil {
		t.Fatalf("response = %+v", resp)
	}
	p := resp.Meta.Pagination
	if p.Count != 2 || p.Offset != 2 || p.Limit != 2 || !p.HasMore {
		t.Errorf("pagination = %+v", p)
	}

	var page assemble.Page
	if err := json.Unmarshal(resp.Data, &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if len(page.ResultList) != 2 || page.EndOfList {
		t.Errorf("page = %+v", page)
	}

	if len(env.tasks.calls) != 1 {
		t.Fatalf("GetBucket called %d times", len(env.tasks.calls))
	}
	call := env.tasks.calls[0]
	if call.bucket != triage.BucketOverdue {
		t.Errorf("bucket = %s", call.bucket)
	}
	q := call.query
	if q.ViewerID != 7 || q.Offset != 2 || q.Limit != 2 || len(q.ProjectIDs) != 2 || q.ProjectIDs[1] != 4 {
		t.Errorf("query = %+v", q)
	}
}

func TestTasksBucketLimits(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"default", "", 20},
		{"explicit", "?limit=5", 5},
		{"clamped to max page size", "?limit=80", 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			rec := env.do(t, http.MethodGet, "/api/v1/tasks/later"+tt.query, "", asViewer("7"))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			if got := env.tasks.calls[0].query.Limit; got != tt.want {
				t.Errorf("limit = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTasksBucketRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		target string
		code   string
	}{
		{"unknown bucket", "/api/v1/tasks/archive", ErrCodeValidationFailed},
		{"limit above cap", "/api/v1/tasks/later?limit=500", ErrCodeValidationFailed},
		{"negative offset", "/api/v1/tasks/later?offset=-1", ErrCodeValidationFailed},
		{"non-numeric project", "/api/v1/tasks/later?projectIds=3,x", ErrCodeBadRequest},
		{"non-numeric limit", "/api/v1/tasks/later?limit=ten", ErrCodeBadRequest},
		{"zero project id", "/api/v1/tasks/later?projectIds=0", ErrCodeValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			rec := env.do(t, http.MethodGet, tt.target, "", asViewer("7"))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			resp := decode(t, rec)
			if resp.Success || resp.Error == nil || resp.Error.Code != tt.code {
				t.Errorf("error = %+v, want code %s", resp.Error, tt.code)
			}
			if len(env.tasks.calls) != 0 {
				t.Error("service must not be called for rejected input")
			}
		})
	}
}

func TestViewerRequired(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, target := range []string{
		"/api/v1/tasks/later",
		"/api/v1/tasks/schedule?from=2026-03-02T00:00:00Z&to=2026-03-09T00:00:00Z",
		"/api/v1/users/7",
		"/api/v1/files/access?parentType=task&parentId=5",
	} {
		rec := env.do(t, http.MethodGet, target, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s status = %d, want 401", target, rec.Code)
		}
	}

	rec := env.do(t, http.MethodGet, "/api/v1/tasks/later", "", asViewer("abc"))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("malformed viewer status = %d, want 401", rec.Code)
	}
}

func TestServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"store failure", &database.StoreError{Op: "load_task_projection", Err: errors.New("timeout")},
			http.StatusServiceUnavailable, ErrCodeDatabaseError},
		{"cache incoherent", fmt.Errorf("assemble overdue: %w", &cache.NotFoundInCacheError{Kind: "membership", Key: "3:7"}),
			http.StatusInternalServerError, ErrCodeCacheIncoherent},
		{"breaker open", gobreaker.ErrOpenState, http.StatusServiceUnavailable, ErrCodeServiceUnavailable},
		{"deadline", context.DeadlineExceeded, http.StatusServiceUnavailable, ErrCodeServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			env.tasks.err = tt.err
			rec := env.do(t, http.MethodGet, "/api/v1/tasks/overdue", "", asViewer("7"))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if resp := decode(t, rec); resp.Error == nil || resp.Error.Code != tt.code {
				t.Errorf("error = %+v, want code %s", resp.Error, tt.code)
			}
		})
	}
}

func TestTasksSchedule(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet,
		"/api/v1/tasks/schedule?projectIds=3&from=2026-03-02T00:00:00Z&to=2026-03-09T00:00:00Z", "", asViewer("7"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	want := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	if !env.tasks.schedFrom.Equal(want) || !env.tasks.schedTo.Equal(want.AddDate(0, 0, 7)) {
		t.Errorf("window = %v..%v", env.tasks.schedFrom, env.tasks.schedTo)
	}
	if q := env.tasks.calls[0].query; q.ViewerID != 7 || len(q.ProjectIDs) != 1 {
		t.Errorf("query = %+v", q)
	}

	bad := []string{
		"/api/v1/tasks/schedule?from=2026-03-02T00:00:00Z",
		"/api/v1/tasks/schedule?from=yesterday&to=2026-03-09T00:00:00Z",
		"/api/v1/tasks/schedule?from=2026-03-09T00:00:00Z&to=2026-03-02T00:00:00Z",
		"/api/v1/tasks/schedule?from=2026-01-01T00:00:00Z&to=2027-06-01T00:00:00Z",
	}
	for _, target := range bad {
		if rec := env.do(t, http.MethodGet, target, "", asViewer("7")); rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", target, rec.Code)
		}
	}
}

func TestUsers(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"by id", "/api/v1/users/7", http.StatusOK},
		{"by phone", "/api/v1/users/by-phone?phone=%2B15550000007", http.StatusOK},
		{"unknown id", "/api/v1/users/8", http.StatusNotFound},
		{"unknown phone", "/api/v1/users/by-phone?phone=%2B15550000008", http.StatusNotFound},
		{"bad id", "/api/v1/users/0", http.StatusBadRequest},
		{"bad phone", "/api/v1/users/by-phone?phone=555", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tt.target, "", asViewer("7"))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tt.status, rec.Body.String())
			}
			if tt.status != http.StatusOK {
				return
			}
			var profile map[string]any
			if err := json.Unmarshal(decode(t, rec).Data, &profile); err != nil {
				t.Fatalf("decode profile: %v", err)
			}
			if profile["name"] != "Ann" || profile["iconSrc"] != "/f/1" {
				t.Errorf("profile = %v", profile)
			}
			if _, leaked := profile["sessionId"]; leaked {
				t.Error("profile must not expose the session id")
			}
		})
	}
}

func TestFileAccess(t *testing.T) {
	tests := []struct {
		name    string
		viewer  string
		target  string
		status  int
		allowed bool
	}{
		{"member", "7", "/api/v1/files/access?parentType=task&parentId=5", http.StatusOK, true},
		{"non-member", "9", "/api/v1/files/access?parentType=task&parentId=5", http.StatusOK, false},
		{"missing parent", "7", "/api/v1/files/access?parentType=task&parentId=6", http.StatusNotFound, false},
		{"bad type", "7", "/api/v1/files/access?parentType=board&parentId=5", http.StatusBadRequest, false},
		{"bad id", "7", "/api/v1/files/access?parentType=task&parentId=x", http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			rec := env.do(t, http.MethodGet, tt.target, "", asViewer(tt.viewer))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tt.status, rec.Body.String())
			}
			if tt.status != http.StatusOK {
				return
			}
			var got FileAccessResult
			if err := json.Unmarshal(decode(t, rec).Data, &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.ProjectID != 3 || got.Allowed != tt.allowed {
				t.Errorf("result = %+v, want allowed=%v", got, tt.allowed)
			}
		})
	}
}

func TestNotify(t *testing.T) {
	const body = `{"entityType":"task","entityId":41,"data":{"id":41,"projectId":9007199254740993,"title":"Ship"}}`

	t.Run("requires token", func(t *testing.T) {
		env := newTestEnv(t, nil)
		rec := env.do(t, http.MethodPost, "/api/v1/internal/notify", body, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
		rec = env.do(t, http.MethodPost, "/api/v1/internal/notify", body, map[string]string{HeaderInternalToken: "wrong"})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
		if len(env.notifier.events) != 0 {
			t.Error("unauthorized notify must not publish")
		}
	})

	t.Run("publishes", func(t *testing.T) {
		env := newTestEnv(t, nil)
		rec := env.do(t, http.MethodPost, "/api/v1/internal/notify", body, map[string]string{HeaderInternalToken: "secret"})
		if rec.Code != http.StatusAccepted {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		if len(env.notifier.events) != 1 {
			t.Fatalf("published %d events", len(env.notifier.events))
		}
		ev := env.notifier.events[0]
		if ev.entityType != models.EntityTask || ev.entityID != 41 {
			t.Errorf("event = %+v", ev)
		}
		n, ok := ev.data["projectId"].(json.Number)
		if !ok || n.String() != "9007199254740993" {
			t.Errorf("projectId = %#v, want exact json.Number", ev.data["projectId"])
		}
	})

	t.Run("rejects bad payloads", func(t *testing.T) {
		env := newTestEnv(t, nil)
		headers := map[string]string{HeaderInternalToken: "secret"}
		for _, b := range []string{
			`not json`,
			`{"entityType":"board","entityId":1,"data":{}}`,
			`{"entityType":"task","entityId":0,"data":{}}`,
			`{"entityType":"task","entityId":1}`,
		} {
			if rec := env.do(t, http.MethodPost, "/api/v1/internal/notify", b, headers); rec.Code != http.StatusBadRequest {
				t.Errorf("body %s status = %d, want 400", b, rec.Code)
			}
		}
	})

	t.Run("bus unavailable", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.notifier.err = eventbus.ErrPublisherClosed
		rec := env.do(t, http.MethodPost, "/api/v1/internal/notify", body, map[string]string{HeaderInternalToken: "secret"})
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})
}

func TestInternalRoutesDisabledWithoutToken(t *testing.T) {
	cfg := testConfig()
	cfg.Security.InternalToken = ""
	h := NewHandler(cfg, Deps{Notifier: &fakeNotifier{}})
	router := NewRouter(h, NewChiMiddleware(ChiMiddlewareConfigFromSecurity(cfg.Security))).SetupChi()

	env := &testEnv{handler: router}
	rec := env.do(t, http.MethodPost, "/api/v1/internal/notify", `{}`, map[string]string{HeaderInternalToken: ""})
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestFileParentProject(t *testing.T) {
	env := newTestEnv(t, nil)
	headers := map[string]string{HeaderInternalToken: "secret"}

	rec := env.do(t, http.MethodGet, "/api/v1/internal/file-parents/task/5", "", headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got map[string]int64
	if err := json.Unmarshal(decode(t, rec).Data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["projectId"] != 3 {
		t.Errorf("projectId = %d, want 3", got["projectId"])
	}

	if rec := env.do(t, http.MethodGet, "/api/v1/internal/file-parents/task/6", "", headers); rec.Code != http.StatusNotFound {
		t.Errorf("missing parent status = %d, want 404", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/v1/internal/file-parents/board/5", "", headers); rec.Code != http.StatusBadRequest {
		t.Errorf("bad type status = %d, want 400", rec.Code)
	}
}

func TestMissingServices(t *testing.T) {
	h := NewHandler(nil, Deps{})
	router := NewRouter(h, nil).SetupChi()
	env := &testEnv{handler: router}

	for _, target := range []string{"/api/v1/tasks/later", "/api/v1/users/7", "/api/v1/ws"} {
		if rec := env.do(t, http.MethodGet, target, "", asViewer("7")); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("GET %s status = %d, want 503", target, rec.Code)
		}
	}
}

func TestHealth(t *testing.T) {
	t.Run("live", func(t *testing.T) {
		env := newTestEnv(t, nil)
		rec := env.do(t, http.MethodGet, "/api/v1/health/live", "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("ready", func(t *testing.T) {
		env := newTestEnv(t, func(d *Deps) {
			d.Readiness = []ReadinessCheck{
				{Name: "database", Check: func(context.Context) error { return nil }},
				{Name: "bus", Check: func(context.Context) error { return nil }},
			}
		})
		rec := env.do(t, http.MethodGet, "/api/v1/health/ready", "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("not ready", func(t *testing.T) {
		env := newTestEnv(t, func(d *Deps) {
			d.Readiness = []ReadinessCheck{
				{Name: "database", Check: func(context.Context) error { return nil }},
				{Name: "bus", Check: func(context.Context) error { return errors.New("nats: no servers available") }},
			}
		})
		rec := env.do(t, http.MethodGet, "/api/v1/health/ready", "", nil)
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d", rec.Code)
		}
		resp := decode(t, rec)
		if resp.Success || resp.Error == nil {
			t.Fatalf("response = %+v", resp)
		}
		details, _ := resp.Error.Details.(map[string]any)
		checks, _ := details["checks"].(map[string]any)
		if checks["database"] != "ok" || checks["bus"] != "nats: no servers available" {
			t.Errorf("checks = %v", checks)
		}
	})
}

func TestNotFoundIsJSON(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/api/v1/nope", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp := decode(t, rec); resp.Error == nil || resp.Error.Code != ErrCodeNotFound {
		t.Errorf("response = %+v", resp)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
}
