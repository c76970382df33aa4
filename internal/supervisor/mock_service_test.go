// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// mockService runs until canceled, optionally failing its first few runs.
type mockService struct {
	name     string
	starts   atomic.Int32
	failures atomic.Int32
	failFor  int32
}

func newMockService(name string, failFor int32) *mockService {
	return &mockService{name: name, failFor: failFor}
}

func (m *mockService) Serve(ctx context.Context) error {
	m.starts.Add(1)
	if m.failures.Add(1) <= m.failFor {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) StartCount() int32 {
	return m.starts.Load()
}

func (m *mockService) String() string {
	return m.name
}
