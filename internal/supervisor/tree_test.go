// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/tomtom215/tasklane/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// waitFor polls cond for up to a second.
func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestTreeConfigDefaults(t *testing.T) {
	tree, err := NewSupervisorTree(testLogger(), TreeConfig{FailureBackoff: time.Second})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}
	want := DefaultTreeConfig()
	want.FailureBackoff = time.Second
	if tree.config != want {
		t.Errorf("config = %+v, want %+v", tree.config, want)
	}
	if tree.Root() == nil {
		t.Error("Root() = nil")
	}
}

func TestTreeConfigFrom(t *testing.T) {
	got := TreeConfigFrom(config.SupervisorConfig{
		FailureThreshold: 3,
		FailureDecay:     10,
		FailureBackoff:   2 * time.Second,
		ShutdownTimeout:  5 * time.Second,
	})
	want := TreeConfig{FailureThreshold: 3, FailureDecay: 10, FailureBackoff: 2 * time.Second, ShutdownTimeout: 5 * time.Second}
	if got != want {
		t.Errorf("TreeConfigFrom() = %+v, want %+v", got, want)
	}
}

func TestTreeRunsEveryLayer(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})

	nats := newMockService("nats-server", 0)
	bus := newMockService("bus-consumer", 0)
	hub := newMockService("websocket-hub", 0)
	http := newMockService("http-server", 0)
	tree.AddDataService(nats)
	tree.AddMessagingService(bus)
	tree.AddMessagingService(hub)
	tree.AddAPIService(http)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	all := []*mockService{nats, bus, hub, http}
	if !waitFor(func() bool {
		for _, s := range all {
			if s.StartCount() == 0 {
				return false
			}
		}
		return true
	}) {
		for _, s := range all {
			if s.StartCount() == 0 {
				t.Errorf("%s was not started", s)
			}
		}
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not shut down")
	}

	if report, err := tree.UnstoppedServiceReport(); err != nil || len(report) != 0 {
		t.Errorf("UnstoppedServiceReport() = %v, %v", report, err)
	}
}

func TestTreeIsolatesFailures(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	bus := newMockService("bus-consumer", 3)
	http := newMockService("http-server", 0)
	tree.AddMessagingService(bus)
	tree.AddAPIService(http)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	if !waitFor(func() bool { return bus.StartCount() >= 4 }) {
		t.Errorf("bus consumer started %d times, want at least 4", bus.StartCount())
	}
	if http.StartCount() != 1 {
		t.Errorf("http server started %d times, want 1", http.StartCount())
	}

	cancel()
	<-errCh
}

func TestEmptyTreeStops(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: 500 * time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	select {
	case err := <-tree.ServeBackground(ctx):
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Error("tree did not shut down")
	}
}
