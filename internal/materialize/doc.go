// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

/*
Package materialize loads a viewer's active tasks through the caches.

LoadActiveTasks answers from the task index and the secondary store when a
project is already indexed for the viewer. For the projects that are not, it
makes sure the project, its memberships and their users are in the entity
stores, fetches the task projection from PostgreSQL, writes it to the
secondary store and records the ids in the index. Writes happen only after
every fetch has succeeded, so a failed call leaves no partial projection.

Tasks read back from the secondary store are checked against the index. When
rows went missing, for instance after a Redis restart, the affected projects
are dropped from the index and fetched again within the same call.

Concurrent loads of the same (viewer, project) pair share one query. A
caller that is cancelled stops waiting without failing the others.

A project that no longer resolves is reported as a *StaleReferenceError,
logged and left out of the result. So is a task whose owner or active
assignee is gone from the users table. Any other error aborts the call.
*/
package materialize
