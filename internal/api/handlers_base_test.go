// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tasklane/internal/assemble"
	"github.com/tomtom215/tasklane/internal/config"
	"github.com/tomtom215/tasklane/internal/models"
	"github.com/tomtom215/tasklane/internal/service"
	"github.com/tomtom215/tasklane/internal/triage"
)

type bucketCall struct {
	bucket triage.Bucket
	query  service.Query
}

type fakeTasks struct {
	mu        sync.Mutex
	page      assemble.Page
	err       error
	calls     []bucketCall
	schedFrom time.Time
	schedTo   time.Time
}

func (f *fakeTasks) GetBucket(_ context.Context, b triage.Bucket, q service.Query) (assemble.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, bucketCall{bucket: b, query: q})
	return f.page, f.err
}

func (f *fakeTasks) GetSchedule(_ context.Context, viewerID int64, projectIDs []int64, from, to time.Time) (assemble.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, bucketCall{
		bucket: triage.BucketSchedule,
		query:  service.Query{ViewerID: viewerID, ProjectIDs: projectIDs},
	})
	f.schedFrom, f.schedTo = from, to
	return f.page, f.err
}

type fakeUsers struct {
	users map[int64]models.User
}

func (f *fakeUsers) Get(_ context.Context, id int64) (models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return models.User{}, service.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) ByPhone(_ context.Context, phone string) (models.User, error) {
	for _, u := range f.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return models.User{}, service.ErrUserNotFound
}

type fakeFiles struct {
	projects map[models.FileParent]int64
	members  map[int64]bool
}

func (f *fakeFiles) ProjectOf(_ context.Context, p models.FileParent) (int64, error) {
	pid, ok := f.projects[p]
	if !ok {
		return 0, service.ErrParentNotFound
	}
	return pid, nil
}

func (f *fakeFiles) CanRead(ctx context.Context, viewerID int64, p models.FileParent) (int64, bool, error) {
	pid, err := f.ProjectOf(ctx, p)
	if err != nil {
		return 0, false, err
	}
	return pid, f.members[viewerID], nil
}

type published struct {
	entityType models.EntityType
	entityID   int64
	data       map[string]any
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (f *fakeNotifier) Publish(_ context.Context, t models.EntityType, id int64, data map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, published{entityType: t, entityID: id, data: data})
	return nil
}

// testEnv is a router over fakes.
type testEnv struct {
	tasks    *fakeTasks
	users    *fakeUsers
	files    *fakeFiles
	notifier *fakeNotifier
	handler  http.Handler
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.API.DefaultPageSize = 20
	cfg.API.MaxPageSize = 50
	cfg.Security.CORSOrigins = []string{"https://app.example.com"}
	cfg.Security.InternalToken = "secret"
	cfg.Security.RateLimitDisabled = true
	return cfg
}

func newTestEnv(t *testing.T, mutate func(*Deps)) *testEnv {
	t.Helper()
	env := &testEnv{
		tasks: &fakeTasks{page: assemble.Page{ResultList: []*models.Task{{ID: 1, ProjectID: 3}}, EndOfList: true}},
		users: &fakeUsers{users: map[int64]models.User{
			7: {ID: 7, Name: "Ann", Phone: "+15550000007", SessionID: "s-7",
				Config: models.UserConfig{IconSrc: "/f/1", PersonalProjectID: 70}},
		}},
		files: &fakeFiles{
			projects: map[models.FileParent]int64{{Type: models.ParentTask, ID: 5}: 3},
			members:  map[int64]bool{7: true},
		},
		notifier: &fakeNotifier{},
	}
	deps := Deps{Tasks: env.tasks, Users: env.users, Files: env.files, Notifier: env.notifier}
	if mutate != nil {
		mutate(&deps)
	}

	cfg := testConfig()
	h := NewHandler(cfg, deps)
	env.handler = NewRouter(h, NewChiMiddleware(ChiMiddlewareConfigFromSecurity(cfg.Security))).SetupChi()
	return env
}

func (env *testEnv) do(t *testing.T, method, target string, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	return rec
}

func asViewer(id string) map[string]string {
	return map[string]string{"X-User-ID": id}
}

// decoded is the envelope with the data left raw.
type decoded struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) decoded {
	t.Helper()
	var out decoded
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}
