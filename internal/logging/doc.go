// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

// Package logging provides centralized zerolog-based structured logging for Tasklane.
//
// Every package logs through the global logger configured here, so the cache
// layer, the invalidation bus, the HTTP transport and the supervisor tree all
// emit the same JSON shape in production and the same console shape in
// development.
//
// # Quick Start
//
//	import "github.com/tomtom215/tasklane/internal/logging"
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Int64("viewer_id", viewerID).Msg("materialized tasks")
//	logging.Ctx(ctx).Warn().Err(err).Msg("stale project reference")
//
// # Adapters
//
// Two libraries in the stack expect their own logger interface:
//
//   - suture (via sutureslog) takes a *slog.Logger: use NewSlogLogger.
//   - Watermill takes a watermill.LoggerAdapter: use NewWatermillLogger.
//
// Both adapters write through zerolog so log level and output format stay
// consistent across the process.
//
// # Configuration
//
// Environment variables (mapped by internal/config):
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false (default: false)
//
// Always terminate log chains with .Msg() or .Send(); an unterminated event
// is never written.
package logging
