// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package taskview

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/tasklane/internal/logging"
	"github.com/tomtom215/tasklane/internal/metrics"
	"github.com/tomtom215/tasklane/internal/models"
)

const (
	backendBadger = "badger"

	// taskKeyPrefix is the prefix for task projection keys.
	taskKeyPrefix = "task:"
)

// BadgerStore keeps task projections in an embedded BadgerDB.
type BadgerStore struct {
	db     *badger.DB
	closed atomic.Bool
}

// NewBadgerStore opens a BadgerDB at path, or an in-memory one.
func NewBadgerStore(path string, inMemory bool) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger task store: %w", err)
	}
	logging.Info().Str("path", path).Bool("in_memory", inMemory).Msg("Opened Badger task store")
	return &BadgerStore{db: db}, nil
}

func badgerKey(id int64) []byte {
	return []byte(taskKeyPrefix + strconv.FormatInt(id, 10))
}

func (s *BadgerStore) record(op string, err error) error {
	metrics.RecordTaskView(backendBadger, op, err)
	if err != nil {
		return fmt.Errorf("taskview %s: %w", op, err)
	}
	return nil
}

// Upsert writes every task in one transaction.
func (s *BadgerStore) Upsert(_ context.Context, tasks []*models.Task) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if len(tasks) == 0 {
		return nil
	}
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, t := range tasks {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("marshal task %d: %w", t.ID, err)
		}
		if err := wb.Set(badgerKey(t.ID), data); err != nil {
			return s.record("upsert", err)
		}
	}
	return s.record("upsert", wb.Flush())
}

// Get reads the stored tasks among ids.
func (s *BadgerStore) Get(_ context.Context, ids []int64) ([]*models.Task, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	ids = dedupIDs(ids)
	out := make([]*models.Task, 0, len(ids))

	err := s.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			item, err := txn.Get(badgerKey(id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			err = item.Value(func(val []byte) error {
				t, err := decodeTask(val)
				if err != nil {
					return fmt.Errorf("decode task %d: %w", id, err)
				}
				out = append(out, t)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err := s.record("get", err); err != nil {
		return nil, err
	}
	sortByID(out)
	return out, nil
}

// Patch merges partial into the stored task, retrying on write conflicts.
func (s *BadgerStore) Patch(_ context.Context, id int64, partial map[string]any) (*models.Task, bool, error) {
	if s.closed.Load() {
		return nil, false, ErrClosed
	}
	key := badgerKey(id)

	var (
		patched *models.Task
		err     error
	)
	for attempt := 0; attempt < maxPatchAttempts; attempt++ {
		patched = nil
		err = s.db.Update(func(txn *badger.Txn) error {
			item, err := txn.Get(key)
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			stored, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			t, merged, err := mergeTask(id, stored, partial)
			if err != nil {
				return err
			}
			if err := txn.Set(key, merged); err != nil {
				return err
			}
			patched = t
			return nil
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if err := s.record("patch", err); err != nil {
		return nil, false, err
	}
	return patched, patched != nil, nil
}

// Delete removes the tasks.
func (s *BadgerStore) Delete(_ context.Context, ids ...int64) error {
	if s.closed.Load() {
		return ErrClosed
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, id := range ids {
			if err := txn.Delete(badgerKey(id)); err != nil {
				return err
			}
		}
		return nil
	})
	return s.record("delete", err)
}

// Ping reports whether the store is open.
func (s *BadgerStore) Ping(context.Context) error {
	if s.closed.Load() || s.db.IsClosed() {
		return ErrClosed
	}
	return nil
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}
