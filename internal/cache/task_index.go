// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package cache

import (
	"sort"
	"sync"

	"github.com/tomtom215/tasklane/internal/metrics"
)

type viewerShard struct {
	mu sync.RWMutex
	// viewer -> project -> set(task id)
	viewers map[int64]map[int64]map[int64]struct{}
}

// TaskIndex records which task ids have been materialized for a viewer in a
// project. A project present with an empty set is indexed and has no active
// tasks for that viewer.
type TaskIndex struct {
	shards []*viewerShard
}

// NewTaskIndex creates a task index with n shards keyed by viewer id.
func NewTaskIndex(n int) *TaskIndex {
	if n <= 0 {
		n = DefaultShards
	}
	idx := &TaskIndex{shards: make([]*viewerShard, n)}
	for i := range idx.shards {
		idx.shards[i] = &viewerShard{viewers: make(map[int64]map[int64]map[int64]struct{})}
	}
	return idx
}

func (x *TaskIndex) shardFor(viewerID int64) *viewerShard {
	return x.shards[shardIndex(viewerID, len(x.shards))]
}

// Partition splits projectIDs into those already indexed for viewerID and
// those that are not. Input order is kept and duplicates are dropped.
func (x *TaskIndex) Partition(viewerID int64, projectIDs []int64) (indexed, missing []int64) {
	sh := x.shardFor(viewerID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	projects := sh.viewers[viewerID]
	seen := make(map[int64]struct{}, len(projectIDs))
	for _, pid := range projectIDs {
		if _, dup := seen[pid]; dup {
			continue
		}
		seen[pid] = struct{}{}
		if _, ok := projects[pid]; ok {
			indexed = append(indexed, pid)
		} else {
			missing = append(missing, pid)
		}
	}
	metrics.StoreLookups.WithLabelValues("task_index", "hit").Add(float64(len(indexed)))
	metrics.StoreLookups.WithLabelValues("task_index", "miss").Add(float64(len(missing)))
	return indexed, missing
}

// Record replaces the task id set of (viewerID, projectID).
func (x *TaskIndex) Record(viewerID, projectID int64, taskIDs []int64) {
	set := make(map[int64]struct{}, len(taskIDs))
	for _, id := range taskIDs {
		set[id] = struct{}{}
	}

	sh := x.shardFor(viewerID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	projects, ok := sh.viewers[viewerID]
	if !ok {
		projects = make(map[int64]map[int64]struct{})
		sh.viewers[viewerID] = projects
	}
	projects[projectID] = set
}

// TaskIDs returns the indexed task ids of viewerID across projectIDs,
// ascending. Projects that are not indexed contribute nothing.
func (x *TaskIndex) TaskIDs(viewerID int64, projectIDs []int64) []int64 {
	sh := x.shardFor(viewerID)
	sh.mu.RLock()
	projects := sh.viewers[viewerID]
	seen := make(map[int64]struct{})
	var ids []int64
	for _, pid := range projectIDs {
		for id := range projects[pid] {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	sh.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// DropContaining removes, among projectIDs, the entries of viewerID whose
// task set holds any of taskIDs and returns the dropped project ids.
func (x *TaskIndex) DropContaining(viewerID int64, projectIDs, taskIDs []int64) []int64 {
	lost := make(map[int64]struct{}, len(taskIDs))
	for _, id := range taskIDs {
		lost[id] = struct{}{}
	}

	sh := x.shardFor(viewerID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	projects := sh.viewers[viewerID]
	var dropped []int64
	for _, pid := range projectIDs {
		set, ok := projects[pid]
		if !ok {
			continue
		}
		for id := range set {
			if _, hit := lost[id]; hit {
				delete(projects, pid)
				dropped = append(dropped, pid)
				break
			}
		}
	}
	if projects != nil && len(projects) == 0 {
		delete(sh.viewers, viewerID)
	}
	return dropped
}

// InvalidateProject drops projectID for every viewer so the next read
// re-materializes it.
func (x *TaskIndex) InvalidateProject(projectID int64) {
	for _, sh := range x.shards {
		sh.mu.Lock()
		for viewer, projects := range sh.viewers {
			delete(projects, projectID)
			if len(projects) == 0 {
				delete(sh.viewers, viewer)
			}
		}
		sh.mu.Unlock()
	}
}

// InvalidateViewer drops everything indexed for viewerID.
func (x *TaskIndex) InvalidateViewer(viewerID int64) {
	sh := x.shardFor(viewerID)
	sh.mu.Lock()
	delete(sh.viewers, viewerID)
	sh.mu.Unlock()
}

// Snapshot returns a copy of the index for viewerID as project -> sorted
// task ids.
func (x *TaskIndex) Snapshot(viewerID int64) map[int64][]int64 {
	sh := x.shardFor(viewerID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	out := make(map[int64][]int64, len(sh.viewers[viewerID]))
	for pid, set := range sh.viewers[viewerID] {
		ids := make([]int64, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		out[pid] = ids
	}
	return out
}
