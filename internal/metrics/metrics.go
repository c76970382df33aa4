// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Entity store metrics
	StoreLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasklane_store_lookups_total",
			Help: "Entity store lookups by kind and result (hit, miss)",
		},
		[]string{"kind", "result"},
	)

	StoreEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tasklane_store_entries",
			Help: "Number of snapshots held per entity store",
		},
		[]string{"kind"},
	)

	// Materialization metrics
	MaterializeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tasklane_materialize_duration_seconds",
			Help:    "Duration of LoadActiveTasks calls",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"outcome"},
	)

	MaterializeProjects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasklane_materialize_projects_total",
			Help: "Projects seen by materialization by result: indexed, fetched, refetched or stale",
		},
		[]string{"result"},
	)

	MaterializeRows = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tasklane_materialize_rows_total",
			Help: "Task rows fetched from the authoritative store",
		},
	)

	// Authoritative store metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tasklane_db_query_duration_seconds",
			Help:    "Duration of PostgreSQL queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasklane_db_query_errors_total",
			Help: "Total number of PostgreSQL query errors",
		},
		[]string{"operation"},
	)

	// Secondary store metrics
	TaskViewOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasklane_taskview_operations_total",
			Help: "Secondary task store operations by backend, operation and result",
		},
		[]string{"backend", "operation", "result"},
	)

	// Invalidation bus metrics
	BusPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasklane_bus_published_total",
			Help: "Invalidation messages published",
		},
		[]string{"entity_type", "result"},
	)

	BusReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasklane_bus_received_total",
			Help: "Invalidation messages received by this process",
		},
		[]string{"entity_type", "result"},
	)

	BusPushes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasklane_bus_pushes_total",
			Help: "Entity updates pushed to live connections",
		},
		[]string{"result"},
	)

	// Transport metrics
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tasklane_websocket_connections",
			Help: "Current number of registered live connections",
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tasklane_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "route", "status"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tasklane_http_active_requests",
			Help: "HTTP requests currently being served",
		},
	)
)

// RecordHTTPRequest records a served request under its route pattern.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// RecordStoreLookup records an entity store hit or miss.
func RecordStoreLookup(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	StoreLookups.WithLabelValues(kind, result).Inc()
}

// RecordDBQuery records a PostgreSQL query metric.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordMaterialize records a LoadActiveTasks call.
func RecordMaterialize(duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	MaterializeDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordTaskView records a secondary store operation.
func RecordTaskView(backend, operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	TaskViewOperations.WithLabelValues(backend, operation, result).Inc()
}

// RecordBusPublish records an invalidation publish.
func RecordBusPublish(entityType string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	BusPublished.WithLabelValues(entityType, result).Inc()
}
