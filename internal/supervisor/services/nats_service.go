// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package services

import (
	"context"
	"fmt"
	"time"
)

// NATSServer is satisfied by *eventbus.EmbeddedServer.
type NATSServer interface {
	Shutdown(ctx context.Context) error
	IsRunning() bool
}

// NATSServerService owns the lifetime of the embedded NATS server.
//
// The server is started during wiring, before the publisher and the
// subscriber connect to it. This service only keeps it alive for the
// lifetime of the tree and shuts it down last.
type NATSServerService struct {
	server          NATSServer
	shutdownTimeout time.Duration
	name            string
}

// NewNATSServerService wraps server. A non-positive shutdownTimeout
// selects 10s.
func NewNATSServerService(server NATSServer, shutdownTimeout time.Duration) *NATSServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &NATSServerService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		name:            "nats-server",
	}
}

// Serve implements suture.Service. A server that is no longer running
// cannot be restarted in place, so Serve reports it and suture retries
// until the process is replaced.
func (s *NATSServerService) Serve(ctx context.Context) error {
	if !s.server.IsRunning() {
		return fmt.Errorf("embedded NATS server is not running")
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("embedded NATS server shutdown failed: %w", err)
	}
	return ctx.Err()
}

func (s *NATSServerService) String() string {
	return s.name
}
