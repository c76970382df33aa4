// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

/*
Package cache provides the process-local entity stores that sit in front of
PostgreSQL.

# Overview

Four independent stores are built once per process and injected wherever they
are needed (see Stores):

  - UserStore: user snapshots plus a phone -> user id index
  - ProjectStore: project snapshots
  - MembershipStore: membership snapshots plus a (project, user) index and
    a record of which projects were loaded in full
  - TaskIndex: viewer -> project -> set(task id), recording which projects
    have been materialized for which viewer

All stores share the same contract: Get returns an independent copy, Put
replaces a snapshot, and Patch merges a partial object over an existing
snapshot (nested maps are merged recursively, everything else is replaced).
Patch never creates an entry; a key the process has not loaded stays absent.

# Concurrency

Each store spreads keys over a fixed number of shards, each guarded by its
own sync.RWMutex. Readers of unrelated keys never contend, and mutations of a
single key are serialized by its shard lock.

# Freshness

There is no TTL and no eviction. Snapshots live for the lifetime of the
process and are kept current by the invalidation bus (internal/eventbus).
*/
package cache
