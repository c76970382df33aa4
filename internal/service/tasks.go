// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/tasklane/internal/assemble"
	"github.com/tomtom215/tasklane/internal/logging"
	"github.com/tomtom215/tasklane/internal/models"
	"github.com/tomtom215/tasklane/internal/triage"
)

// TaskLoader materializes a viewer's active tasks.
type TaskLoader interface {
	LoadActiveTasks(ctx context.Context, viewerID int64, projectIDs []int64) ([]*models.Task, error)
}

// Query selects a page of one bucket.
type Query struct {
	ViewerID   int64
	ProjectIDs []int64
	Offset     int
	Limit      int
}

// Tasks serves the bucket reads.
type Tasks struct {
	loader TaskLoader
	denorm assemble.Denormalizer
	now    func() time.Time
}

// NewTasks creates the bucket read service.
func NewTasks(loader TaskLoader, denorm assemble.Denormalizer) *Tasks {
	return &Tasks{loader: loader, denorm: denorm, now: time.Now}
}

// GetInboxNew returns tasks nobody has taken on yet.
func (s *Tasks) GetInboxNew(ctx context.Context, q Query) (assemble.Page, error) {
	return s.bucket(ctx, q, triage.BucketInboxNew, nil)
}

// GetInboxToExec returns tasks handed to an executor other than the owner.
func (s *Tasks) GetInboxToExec(ctx context.Context, q Query) (assemble.Page, error) {
	return s.bucket(ctx, q, triage.BucketInboxToExec, nil)
}

// GetOverdue returns tasks past their end time.
func (s *Tasks) GetOverdue(ctx context.Context, q Query) (assemble.Page, error) {
	return s.bucket(ctx, q, triage.BucketOverdue, nil)
}

// GetLater returns tasks parked for later.
func (s *Tasks) GetLater(ctx context.Context, q Query) (assemble.Page, error) {
	return s.bucket(ctx, q, triage.BucketLater, nil)
}

// GetExecutorQueue returns the viewer's tasks delegated to someone else,
// ordered by executor name.
func (s *Tasks) GetExecutorQueue(ctx context.Context, q Query) (assemble.Page, error) {
	return s.bucket(ctx, q, triage.BucketExecutor, assemble.ExecutorOrder)
}

// GetBucket dispatches to the read of b. The schedule bucket needs a date
// range and is served by GetSchedule only.
func (s *Tasks) GetBucket(ctx context.Context, b triage.Bucket, q Query) (assemble.Page, error) {
	switch b {
	case triage.BucketInboxNew:
		return s.GetInboxNew(ctx, q)
	case triage.BucketInboxToExec:
		return s.GetInboxToExec(ctx, q)
	case triage.BucketOverdue:
		return s.GetOverdue(ctx, q)
	case triage.BucketLater:
		return s.GetLater(ctx, q)
	case triage.BucketExecutor:
		return s.GetExecutorQueue(ctx, q)
	default:
		return assemble.Page{}, fmt.Errorf("bucket %q is not paginated", b)
	}
}

// GetSchedule returns the schedule tasks occurring between from and to,
// unpaginated.
func (s *Tasks) GetSchedule(ctx context.Context, viewerID int64, projectIDs []int64, from, to time.Time) (assemble.Page, error) {
	tasks, err := s.loader.LoadActiveTasks(ctx, viewerID, projectIDs)
	if err != nil {
		return assemble.Page{}, err
	}

	inBucket := triage.Match(triage.BucketSchedule, viewerID, s.now())
	pred := func(t *models.Task) bool {
		return inBucket(t) && OccursBetween(t, from, to)
	}
	// A window as large as the candidate set always ends the list.
	w := assemble.Window{Limit: len(tasks), Sort: assemble.ScheduleOrder}
	page, err := assemble.SelectBucket(tasks, pred, w, s.denorm)
	if err != nil {
		return assemble.Page{}, fmt.Errorf("assemble schedule: %w", err)
	}
	logging.Ctx(ctx).Debug().Int64("viewer_id", viewerID).
		Int("tasks", len(page.ResultList)).Msg("Served schedule")
	return page, nil
}

func (s *Tasks) bucket(ctx context.Context, q Query, b triage.Bucket, sortFn assemble.Less) (assemble.Page, error) {
	tasks, err := s.loader.LoadActiveTasks(ctx, q.ViewerID, q.ProjectIDs)
	if err != nil {
		return assemble.Page{}, err
	}

	w := assemble.Window{Offset: q.Offset, Limit: q.Limit, Sort: sortFn}
	page, err := assemble.SelectBucket(tasks, triage.Match(b, q.ViewerID, s.now()), w, s.denorm)
	if err != nil {
		return assemble.Page{}, fmt.Errorf("assemble %s: %w", b, err)
	}
	logging.Ctx(ctx).Debug().Str("bucket", string(b)).Int64("viewer_id", q.ViewerID).
		Int("tasks", len(page.ResultList)).Bool("end_of_list", page.EndOfList).
		Msg("Served bucket")
	return page, nil
}
