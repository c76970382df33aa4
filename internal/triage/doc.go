// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

/*
Package triage sorts a viewer's active tasks into UI containers.

Classify is pure: it looks only at the task, the viewer id and the current
time. Rules are evaluated in order and the first match wins:

 1. later time type                                   -> later
 2. recurring (regular descriptor present)            -> schedule
 3. not done and past its end time                    -> overdue
 4. one executor, not the owner, viewer owns the task,
    no controller                                     -> executor
 5. has an end time and is taken to work or a meeting -> schedule
 6. executor is not the owner and no controller       -> inbox/toexec
 7. anything else                                     -> inbox/new

Every task maps to exactly one result, so the buckets partition the
viewer's task set.
*/
package triage
