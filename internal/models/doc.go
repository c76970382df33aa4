// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

/*
Package models defines the entity snapshots shared by the cache layer, the
invalidation bus and the read API.

Entities:

  - User: profile row with a unique phone and a config block that points at
    the user's personal project.
  - Project: a shared or personal project.
  - Membership: the project-user link carrying role and per-project display
    overrides. At most one non-deleted membership exists per (project, user).
  - Task: the flattened task projection with its assignments, ticks,
    hashtags, comments and files.
  - File: an attachment whose parent is a tagged union (FileParent).

All entities are soft-deleted through DeletedAt and never hard-deleted.
Cross-entity links are by id only; no snapshot holds a pointer to another
entity's snapshot.

JSON tags are the wire contract with the write path: bus payloads are partial
objects using the same keys and are merged over the stored snapshot.
*/
package models
