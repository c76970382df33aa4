// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/tasklane/internal/logging"
)

const defaultHTTPShutdownTimeout = 10 * time.Second

// errServerStopped is returned when the listener exits while the service
// is still meant to run; suture restarts it.
var errServerStopped = errors.New("http server stopped unexpectedly")

// HTTPServer is the lifecycle of *http.Server.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService runs the read API under supervision. On cancel the
// server gets shutdownTimeout to drain in-flight bucket reads.
type HTTPServerService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
}

// NewHTTPServerService wraps server. A non-positive shutdownTimeout
// selects 10s.
func NewHTTPServerService(server HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultHTTPShutdownTimeout
	}
	return &HTTPServerService{server: server, shutdownTimeout: shutdownTimeout}
}

// Serve implements suture.Service.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	listenErr := make(chan error, 1)
	go func() { listenErr <- h.server.ListenAndServe() }()

	select {
	case err := <-listenErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return errServerStopped
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	//nolint:contextcheck // the parent is already canceled
	drainCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
	defer cancel()

	start := time.Now()
	if err := h.server.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	<-listenErr
	logging.Info().Dur("drained_in", time.Since(start)).Msg("HTTP server stopped")
	return ctx.Err()
}

func (h *HTTPServerService) String() string { return "http-server" }
