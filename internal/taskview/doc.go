// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

/*
Package taskview holds the flattened task projection keyed by task id.

It is the secondary fast-read store in front of PostgreSQL. Materialization
upserts whole projections into it, the invalidation bus patches single rows,
and the read API fetches rows by id. Writes are last-write-wins.

Two backends implement Store:

  - RedisStore: shared between processes, one JSON string per task under
    "<prefix>task:<id>". Patches run in a WATCH transaction.
  - BadgerStore: embedded, for single-node deployments and tests. Patches
    run in an update transaction retried on conflict.

Get skips ids that are not stored and returns rows ordered by id.
*/
package taskview
