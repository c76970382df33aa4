// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

// Package assemble turns a viewer's materialized tasks into a page of one
// bucket: filter, window, denormalize, sort.
package assemble

import (
	"sort"

	"github.com/tomtom215/tasklane/internal/models"
)

// DefaultLimit applies when a window carries no positive limit.
const DefaultLimit = 20

// Page is one window of a bucket. EndOfList is true when no task follows the
// last one returned.
type Page struct {
	ResultList []*models.Task `json:"resultList"`
	EndOfList  bool           `json:"endOfList"`
}

// Less orders two denormalized tasks.
type Less func(a, b *models.Task) bool

// Window selects the slice of a bucket to return.
type Window struct {
	Offset int
	Limit  int
	Sort   Less
}

// Denormalizer fills the derived member fields of a task.
type Denormalizer interface {
	Denormalize(task *models.Task) error
}

// SelectBucket filters tasks with pred, slices [offset, offset+limit+1) to
// detect whether more follow, denormalizes the surviving tasks and finally
// sorts them. A denormalization failure aborts the page.
//
// Tasks are modified in place.
func SelectBucket(tasks []*models.Task, pred func(*models.Task) bool, w Window, d Denormalizer) (Page, error) {
	offset := w.Offset
	if offset < 0 {
		offset = 0
	}
	limit := w.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	var window []*models.Task
	matched := 0
	for _, t := range tasks {
		if !pred(t) {
			continue
		}
		if matched >= offset && matched < offset+limit+1 {
			window = append(window, t)
		}
		matched++
	}

	page := Page{EndOfList: len(window) <= limit}
	if !page.EndOfList {
		window = window[:limit]
	}

	for _, t := range window {
		if err := d.Denormalize(t); err != nil {
			return Page{}, err
		}
	}

	if w.Sort != nil {
		sort.SliceStable(window, func(i, j int) bool {
			return w.Sort(window[i], window[j])
		})
	}

	if window == nil {
		window = []*models.Task{}
	}
	page.ResultList = window
	return page, nil
}
