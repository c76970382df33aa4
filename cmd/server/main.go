// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/tasklane/internal/api"
	"github.com/tomtom215/tasklane/internal/config"
	"github.com/tomtom215/tasklane/internal/logging"
	"github.com/tomtom215/tasklane/internal/supervisor"
	"github.com/tomtom215/tasklane/internal/supervisor/services"
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("environment", cfg.Server.Environment).
		Str("taskview_backend", cfg.Cache.TaskViewBackend).
		Bool("nats_embedded", cfg.NATS.EmbeddedServer).
		Msg("Starting Tasklane")

	if cfg.Security.InternalToken == "" {
		logging.Warn().Msg("No internal token configured: /api/v1/internal is disabled and the write path cannot notify the bus over HTTP")
	}
	if cfg.IsProduction() && len(cfg.Security.CORSOrigins) == 1 && cfg.Security.CORSOrigins[0] == "*" {
		logging.Warn().Msg("CORS allows any origin in production; set CORS_ORIGINS")
	}
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is disabled")
	}

	c, err := newComponents(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize components")
	}
	defer c.close()

	handler := api.NewHandler(cfg, api.Deps{
		Tasks:     c.tasks,
		Users:     c.users,
		Files:     c.files,
		Notifier:  c.bus,
		Hub:       c.hub,
		Readiness: readinessChecks(c.db, c.view, c.publisher, c.bus),
	})
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(cfg.Security)))

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(cfg.Supervisor))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	if c.nats != nil {
		tree.AddDataService(services.NewNATSServerService(c.nats, cfg.Supervisor.ShutdownTimeout))
	}
	tree.AddMessagingService(services.NewWebSocketHubService(c.hub))
	tree.AddMessagingService(services.NewBusConsumerService(c.bus))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().Msg("Tasklane stopped")
}
