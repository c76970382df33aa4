// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package taskview

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tasklane/internal/cache"
	"github.com/tomtom215/tasklane/internal/config"
	"github.com/tomtom215/tasklane/internal/models"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("taskview: store closed")

// maxPatchAttempts bounds optimistic retries of a conflicting patch.
const maxPatchAttempts = 5

// Store is the secondary task store.
type Store interface {
	// Upsert writes every task, replacing stored copies.
	Upsert(ctx context.Context, tasks []*models.Task) error

	// Get returns the stored tasks among ids ordered by id. Missing ids are
	// skipped.
	Get(ctx context.Context, ids []int64) ([]*models.Task, error)

	// Patch merges partial into the stored task. It reports false when the
	// task is not stored. The task id never changes.
	Patch(ctx context.Context, id int64, partial map[string]any) (*models.Task, bool, error)

	// Delete removes the given tasks.
	Delete(ctx context.Context, ids ...int64) error

	Ping(ctx context.Context) error
	Close() error
}

// New builds the backend selected by cfg.Cache.TaskViewBackend.
func New(cfg *config.Config) (Store, error) {
	switch cfg.Cache.TaskViewBackend {
	case config.TaskViewRedis:
		return NewRedisStore(&cfg.Redis)
	case config.TaskViewBadger:
		return NewBadgerStore(cfg.Cache.BadgerPath, cfg.Cache.BadgerInMemory)
	default:
		return nil, fmt.Errorf("unknown taskview backend %q", cfg.Cache.TaskViewBackend)
	}
}

// mergeTask applies partial over the stored JSON document and returns the
// merged task with its encoding.
func mergeTask(id int64, stored []byte, partial map[string]any) (*models.Task, []byte, error) {
	base, err := cache.DecodeObject(stored)
	if err != nil {
		return nil, nil, fmt.Errorf("decode stored task %d: %w", id, err)
	}
	merged, err := json.Marshal(cache.MergeMaps(base, partial))
	if err != nil {
		return nil, nil, fmt.Errorf("marshal merged task %d: %w", id, err)
	}

	var t models.Task
	if err := json.Unmarshal(merged, &t); err != nil {
		return nil, nil, fmt.Errorf("decode merged task %d: %w", id, err)
	}
	if t.ID != id {
		t.ID = id
		if merged, err = json.Marshal(&t); err != nil {
			return nil, nil, fmt.Errorf("marshal merged task %d: %w", id, err)
		}
	}
	return &t, merged, nil
}

func decodeTask(data []byte) (*models.Task, error) {
	var t models.Task
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func sortByID(tasks []*models.Task) {
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
}

func dedupIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
