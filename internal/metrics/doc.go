// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

/*
Package metrics provides Prometheus collectors for Tasklane.

Collectors are registered on the default registry through promauto and are
exposed at /metrics by the API router.

# Available Metrics

Entity stores:
  - tasklane_store_lookups_total{kind,result}: snapshot lookups (hit, miss)
  - tasklane_store_entries{kind}: snapshots held per store

Materialization:
  - tasklane_materialize_duration_seconds{outcome}: LoadActiveTasks latency
  - tasklane_materialize_projects_total{result}: projects indexed, fetched, refetched or stale
  - tasklane_materialize_rows_total: task rows fetched from PostgreSQL

Authoritative and secondary stores:
  - tasklane_db_query_duration_seconds{operation}
  - tasklane_db_query_errors_total{operation}
  - tasklane_taskview_operations_total{backend,operation,result}

Invalidation bus:
  - tasklane_bus_published_total{entity_type,result}
  - tasklane_bus_received_total{entity_type,result}: applied, skipped, malformed
  - tasklane_bus_pushes_total{result}: delivered, dropped, offline

Transport:
  - tasklane_websocket_connections
  - tasklane_http_request_duration_seconds{method,route,status}
*/
package metrics
