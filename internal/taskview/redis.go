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
	"time"

	"github.com/goccy/go-json"
	redislib "github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/tasklane/internal/config"
	"github.com/tomtom215/tasklane/internal/logging"
	"github.com/tomtom215/tasklane/internal/metrics"
	"github.com/tomtom215/tasklane/internal/models"
)

const backendRedis = "redis"

// RedisStore keeps one JSON document per task in Redis.
type RedisStore struct {
	client  *redislib.Client
	prefix  string
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[any]
}

// NewRedisStore connects to cfg.URL and checks the connection.
func NewRedisStore(cfg *config.RedisConfig) (*RedisStore, error) {
	opts, err := redislib.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redislib.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	s := NewRedisStoreWithClient(client, cfg.KeyPrefix, cfg.OperationTimeout)
	if cfg.BreakerEnabled {
		s.breaker = newBreaker("taskview-redis")
	}

	logging.Info().Str("addr", opts.Addr).Int("db", opts.DB).Msg("Connected to Redis task store")
	return s, nil
}

// NewRedisStoreWithClient wraps an existing client without a breaker.
func NewRedisStoreWithClient(client *redislib.Client, prefix string, timeout time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, timeout: timeout}
}

// newBreaker trips after five consecutive backend failures.
func newBreaker(name string) *gobreaker.CircuitBreaker[any] {
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}

func (s *RedisStore) key(id int64) string {
	return s.prefix + "task:" + strconv.FormatInt(id, 10)
}

func (s *RedisStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *RedisStore) execute(op string, fn func() error) error {
	var err error
	if s.breaker == nil {
		err = fn()
	} else {
		_, err = s.breaker.Execute(func() (any, error) { return nil, fn() })
	}
	metrics.RecordTaskView(backendRedis, op, err)
	if err != nil {
		return fmt.Errorf("taskview %s: %w", op, err)
	}
	return nil
}

// Upsert writes the tasks in one pipeline.
func (s *RedisStore) Upsert(ctx context.Context, tasks []*models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	docs := make(map[string][]byte, len(tasks))
	for _, t := range tasks {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("marshal task %d: %w", t.ID, err)
		}
		docs[s.key(t.ID)] = data
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.execute("upsert", func() error {
		_, err := s.client.Pipelined(ctx, func(pipe redislib.Pipeliner) error {
			for key, data := range docs {
				pipe.Set(ctx, key, data, 0)
			}
			return nil
		})
		return err
	})
}

// Get fetches the tasks with a single MGET.
func (s *RedisStore) Get(ctx context.Context, ids []int64) ([]*models.Task, error) {
	ids = dedupIDs(ids)
	if len(ids) == 0 {
		return []*models.Task{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var values []any
	err := s.execute("get", func() error {
		var err error
		values, err = s.client.MGet(ctx, keys...).Result()
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]*models.Task, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		t, err := decodeTask([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("decode task %d: %w", ids[i], err)
		}
		out = append(out, t)
	}
	sortByID(out)
	return out, nil
}

// Patch merges partial into the stored task inside a WATCH transaction.
func (s *RedisStore) Patch(ctx context.Context, id int64, partial map[string]any) (*models.Task, bool, error) {
	key := s.key(id)
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		patched *models.Task
		found   bool
	)
	txf := func(tx *redislib.Tx) error {
		stored, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redislib.Nil) {
			found = false
			return nil
		}
		if err != nil {
			return err
		}
		t, merged, err := mergeTask(id, stored, partial)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
			pipe.Set(ctx, key, merged, 0)
			return nil
		})
		if err == nil {
			patched, found = t, true
		}
		return err
	}

	err := s.execute("patch", func() error {
		for attempt := 0; attempt < maxPatchAttempts; attempt++ {
			err := s.client.Watch(ctx, txf, key)
			if !errors.Is(err, redislib.TxFailedErr) {
				return err
			}
		}
		return redislib.TxFailedErr
	})
	if err != nil {
		return nil, false, err
	}
	return patched, found, nil
}

// Delete removes the tasks.
func (s *RedisStore) Delete(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.execute("delete", func() error {
		return s.client.Del(ctx, keys...).Err()
	})
}

// Ping checks the connection. An open breaker fails the check without
// touching Redis, since every read would be rejected anyway.
func (s *RedisStore) Ping(ctx context.Context) error {
	if s.BreakerState() == gobreaker.StateOpen.String() {
		return fmt.Errorf("taskview ping: %w", gobreaker.ErrOpenState)
	}
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// BreakerState reports the circuit breaker state, or "disabled".
func (s *RedisStore) BreakerState() string {
	if s.breaker == nil {
		return "disabled"
	}
	return s.breaker.State().String()
}
