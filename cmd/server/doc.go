// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

/*
Command server runs the Tasklane read backend.

Tasklane serves the task buckets, the schedule, user profiles and file
access checks of a multi-user task tracker from process-local caches. The
authoritative rows live in PostgreSQL and are written by a separate write
path, which announces every committed change on the invalidation bus.

# Startup

 1. Configuration: koanf v2 (defaults, optional config.yaml, environment)
 2. Logging: zerolog
 3. PostgreSQL pool (pgx through database/sql)
 4. Task view store: Redis or BadgerDB (cache.taskview_backend)
 5. Invalidation bus: embedded or external NATS, Watermill publisher and
    subscriber, circuit breaker on publish
 6. Entity stores, subscription registry, WebSocket hub
 7. Supervisor tree (suture v4) running the bus consumer, the hub and the
    HTTP server

# Configuration

	HTTP_PORT=8080
	DATABASE_URL=postgres://tasklane@localhost:5432/tasklane
	TASKVIEW_BACKEND=redis           # or badger
	REDIS_URL=redis://localhost:6379/0
	NATS_EMBEDDED=true               # false to use NATS_URL
	NATS_URL=nats://127.0.0.1:4222
	INTERNAL_API_TOKEN=<secret>      # enables /api/v1/internal
	LOG_LEVEL=info
	LOG_FORMAT=json

A multi-process deployment points every process at the same external NATS
server with NATS_EMBEDDED=false. Each process keeps its own cache and
receives every invalidation.

# Signals

SIGINT and SIGTERM cancel the tree. The HTTP server drains within
server.shutdown_timeout, live connections are closed, then the bus, the
task view store and the database pool are released.
*/
package main
