// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

/*
Package supervisor runs Tasklane's long-running services under suture v4.

# Tree

	tasklane
	├── data-layer
	│   └── nats-server       (embedded NATS, when enabled)
	├── messaging-layer
	│   ├── bus-consumer      (invalidation bus -> cache + pushes)
	│   └── websocket-hub
	└── api-layer
	    └── http-server

Each layer counts failures on its own. A consumer that cannot reach NATS
backs off inside the messaging layer; the HTTP server keeps answering
reads from the cache it already holds, and the readiness probe reports the
bus as down.

# Restart Policy

Failures decay exponentially over FailureDecay seconds. Once the counter
passes FailureThreshold the layer waits FailureBackoff before restarting
again. Values come from the supervisor section of the configuration; zero
fields take suture's defaults (5, 30s, 15s, 10s shutdown).

# Logging

Supervisor events (service start, failure, backoff, shutdown timeouts) go
through sutureslog into the zerolog-backed slog logger from
internal/logging.

# What Is Not Supervised

The PostgreSQL pool, the task view store and the entity stores are
libraries rather than loops. They are opened before the tree starts and
closed after it stops.

See internal/supervisor/services for the service wrappers.
*/
package supervisor
