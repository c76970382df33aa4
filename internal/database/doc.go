// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

/*
Package database provides read access to the authoritative PostgreSQL store.

The cache layer only reads: entities by id, a project's memberships, file
parents, and the denormalized task projection of one project for one viewer.
Writes belong to the external write path, which publishes on the
invalidation bus after commit.

# Errors

Every failed query is returned as a *StoreError carrying the operation name.
A row addressed by id that does not exist yields ErrNotFound, unwrapped.
Nothing here retries; callers surface the error.

# Driver

Connections go through database/sql with the pgx stdlib driver ("pgx").
Query durations and failures are recorded in internal/metrics.
*/
package database
