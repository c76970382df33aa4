// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

/*
Package eventbus keeps the entity stores of every process coherent.

The external write path publishes an Event after each commit. Every process
subscribes to the same topic and, per message and in arrival order:

 1. patches its local copy of the entity (see Bus.apply)
 2. reads the subscriber codes registered for the entity
 3. pushes the event to every code that has a live local connection

# Transport

Events travel over core NATS subjects through Watermill. JetStream is
disabled and no queue group is set, so every process receives every
message once, with no acknowledgement or replay. A process that misses a
message keeps a stale snapshot until the next update of that entity.

Publishing is guarded by a gobreaker circuit breaker. For single-node and
development deployments an embedded NATS server can be started in process.

# Apply rules

User, project and membership messages patch existing snapshots only. A
membership message that carries a complete row for an unknown id is
inserted, so members added after their project was loaded still resolve.
Task messages patch the secondary store copy when present and invalidate
the task index of the task's project, so the next read re-materializes
visibility for every viewer.

Malformed messages are logged and dropped. Dead connections are skipped.
*/
package eventbus
