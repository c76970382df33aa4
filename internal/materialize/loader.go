// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package materialize

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/tasklane/internal/cache"
	"github.com/tomtom215/tasklane/internal/database"
	"github.com/tomtom215/tasklane/internal/logging"
	"github.com/tomtom215/tasklane/internal/metrics"
	"github.com/tomtom215/tasklane/internal/models"
	"github.com/tomtom215/tasklane/internal/taskview"
)

// Source is the slice of the authoritative store the loader reads.
// *database.DB implements it.
type Source interface {
	GetUser(ctx context.Context, id int64) (models.User, error)
	GetUsers(ctx context.Context, ids []int64) ([]models.User, error)
	GetProject(ctx context.Context, id int64) (models.Project, error)
	ListProjectMemberships(ctx context.Context, projectID int64) ([]models.Membership, error)
	GetFiles(ctx context.Context, ids []int64) (map[int64]models.File, error)
	LoadTaskProjection(ctx context.Context, viewerID, projectID int64) ([]*models.Task, error)
}

// Loader materializes task projections into the caches.
type Loader struct {
	stores *cache.Stores
	source Source
	view   taskview.Store

	projects singleflight.Group
	fetches  singleflight.Group

	// user ids a project load asked for and the store did not return
	unresolved sync.Map
}

// NewLoader creates a loader.
func NewLoader(stores *cache.Stores, source Source, view taskview.Store) *Loader {
	return &Loader{stores: stores, source: source, view: view}
}

// LoadActiveTasks returns the tasks of projectIDs visible to viewerID,
// ordered by id.
func (l *Loader) LoadActiveTasks(ctx context.Context, viewerID int64, projectIDs []int64) ([]*models.Task, error) {
	start := time.Now()
	tasks, err := l.loadActiveTasks(ctx, viewerID, projectIDs)
	metrics.RecordMaterialize(time.Since(start), err)
	return tasks, err
}

func (l *Loader) loadActiveTasks(ctx context.Context, viewerID int64, projectIDs []int64) ([]*models.Task, error) {
	indexed, missing := l.stores.Tasks.Partition(viewerID, projectIDs)

	live := make([]int64, 0, len(indexed)+len(missing))
	for _, pid := range indexed {
		if p, ok := l.stores.Projects.Get(pid); ok && p.Deleted() {
			l.logStale(ctx, &StaleReferenceError{Kind: "project", ID: pid})
			continue
		}
		live = append(live, pid)
	}
	metrics.MaterializeProjects.WithLabelValues("indexed").Add(float64(len(live)))

	var fetch []int64
	for _, pid := range missing {
		if _, err := l.EnsureProject(ctx, pid); err != nil {
			var stale *StaleReferenceError
			if errors.As(err, &stale) {
				l.logStale(ctx, stale)
				continue
			}
			return nil, err
		}
		fetch = append(fetch, pid)
	}

	if err := l.fetchAndStore(ctx, viewerID, fetch); err != nil {
		return nil, err
	}
	live = append(live, fetch...)

	rows, err := l.readBack(ctx, viewerID, live)
	if err != nil {
		return nil, err
	}

	out := make([]*models.Task, 0, len(rows))
	for _, t := range rows {
		if !t.VisibleTo(viewerID) {
			continue
		}
		ok, err := l.usersResolve(ctx, t)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// readBack reads the indexed tasks of projectIDs from the secondary store.
// Projects whose indexed tasks are no longer stored are dropped from the
// index and fetched again once.
func (l *Loader) readBack(ctx context.Context, viewerID int64, projectIDs []int64) ([]*models.Task, error) {
	ids := l.stores.Tasks.TaskIDs(viewerID, projectIDs)
	rows, err := l.view.Get(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("read task projections: %w", err)
	}
	lost := absentIDs(ids, rows)
	if len(lost) == 0 {
		return rows, nil
	}

	refetch := l.stores.Tasks.DropContaining(viewerID, projectIDs, lost)
	metrics.MaterializeProjects.WithLabelValues("refetched").Add(float64(len(refetch)))
	logging.Ctx(ctx).Warn().Int64("viewer_id", viewerID).Int("lost", len(lost)).
		Ints64("project_ids", refetch).Msg("Task view lost indexed rows, fetching again")
	if err := l.fetchAndStore(ctx, viewerID, refetch); err != nil {
		return nil, err
	}

	ids = l.stores.Tasks.TaskIDs(viewerID, projectIDs)
	if rows, err = l.view.Get(ctx, ids); err != nil {
		return nil, fmt.Errorf("read task projections: %w", err)
	}
	if lost := absentIDs(ids, rows); len(lost) > 0 {
		return nil, fmt.Errorf("%w: %d tasks missing after refetch", ErrViewIncomplete, len(lost))
	}
	return rows, nil
}

// absentIDs returns the ids that have no row. rows is a subset of ids.
func absentIDs(ids []int64, rows []*models.Task) []int64 {
	if len(rows) == len(ids) {
		return nil
	}
	found := make(map[int64]struct{}, len(rows))
	for _, t := range rows {
		found[t.ID] = struct{}{}
	}
	var out []int64
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// usersResolve reports whether the owner and every active assignee of t
// resolve to a user. Users that are gone from the authoritative store are
// logged as stale and the task is left out.
func (l *Loader) usersResolve(ctx context.Context, t *models.Task) (bool, error) {
	check := func(userID int64) (bool, error) {
		if _, ok := l.stores.Users.Get(userID); ok {
			return true, nil
		}
		if _, gone := l.unresolved.Load(userID); !gone {
			_, err := l.EnsureUser(ctx, userID)
			if err == nil {
				return true, nil
			}
			if !IsStale(err) {
				return false, err
			}
			l.unresolved.Store(userID, struct{}{})
		}
		l.logStale(ctx, &StaleReferenceError{Kind: "user", ID: userID})
		return false, nil
	}

	if ok, err := check(t.OwnerUserID); !ok || err != nil {
		return false, err
	}
	for i := range t.Assignments {
		a := &t.Assignments[i]
		if a.DeletedAt != nil {
			continue
		}
		if ok, err := check(a.UserID); !ok || err != nil {
			return false, err
		}
	}
	return true, nil
}

// fetchAndStore loads the projection of every project concurrently and
// writes the results only once all of them succeeded.
func (l *Loader) fetchAndStore(ctx context.Context, viewerID int64, projectIDs []int64) error {
	if len(projectIDs) == 0 {
		return nil
	}

	results := make([][]*models.Task, len(projectIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, pid := range projectIDs {
		g.Go(func() error {
			key := strconv.FormatInt(viewerID, 10) + ":" + strconv.FormatInt(pid, 10)
			v, err := shared(gctx, &l.fetches, key, func(ctx context.Context) (any, error) {
				return l.source.LoadTaskProjection(ctx, viewerID, pid)
			})
			if err != nil {
				return fmt.Errorf("load tasks of project %d: %w", pid, err)
			}
			results[i] = v.([]*models.Task)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var rows []*models.Task
	for _, r := range results {
		rows = append(rows, r...)
	}
	if err := l.view.Upsert(ctx, rows); err != nil {
		return fmt.Errorf("store task projections: %w", err)
	}

	for i, pid := range projectIDs {
		ids := make([]int64, len(results[i]))
		for j, t := range results[i] {
			ids[j] = t.ID
		}
		l.stores.Tasks.Record(viewerID, pid, ids)
	}
	metrics.MaterializeProjects.WithLabelValues("fetched").Add(float64(len(projectIDs)))
	metrics.MaterializeRows.Add(float64(len(rows)))
	return nil
}

// shared runs fn once per key across concurrent callers. fn runs detached
// from the caller's cancellation so one caller giving up does not fail the
// others; each caller still stops waiting when its own ctx is done.
func shared(ctx context.Context, g *singleflight.Group, key string, fn func(context.Context) (any, error)) (any, error) {
	detached := context.WithoutCancel(ctx)
	ch := g.DoChan(key, func() (any, error) {
		return fn(detached)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.Val, r.Err
	}
}

func (l *Loader) logStale(ctx context.Context, err *StaleReferenceError) {
	if err.Kind == "project" {
		metrics.MaterializeProjects.WithLabelValues("stale").Inc()
	}
	logging.Ctx(ctx).Warn().Str("kind", err.Kind).Int64("id", err.ID).
		Msg("Skipping stale reference")
}

// notFoundAsStale converts database.ErrNotFound into a stale reference.
func notFoundAsStale(err error, kind string, id int64) error {
	if errors.Is(err, database.ErrNotFound) {
		return &StaleReferenceError{Kind: kind, ID: id}
	}
	return err
}
