// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

// Package metrics exposes Prometheus instrumentation for Eventhub.
//
// Metrics are registered with the default registry through promauto and
// served by promhttp at /metrics. Callers use the RecordX helpers rather
// than touching the collectors directly.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	// Sync Metrics
	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sync_duration_seconds",
			Help:    "Duration of external event sync runs in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_runs_total",
			Help: "Total number of sync runs by trigger and result",
		},
		[]string{"trigger", "result"}, // trigger: manual, scheduled, startup; result: completed, skipped
	)

	SyncEventsFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_events_fetched_total",
			Help: "Total number of canonical records produced per source",
		},
		[]string{"source"},
	)

	SyncItemsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_items_dropped_total",
			Help: "Total number of upstream items dropped during mapping",
		},
		[]string{"source"},
	)

	SyncFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_fetch_errors_total",
			Help: "Total number of failed upstream fetches",
		},
		[]string{"source"},
	)

	SyncEventsInserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_events_inserted_total",
			Help: "Total number of events inserted by sync",
		},
	)

	SyncEventsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_events_skipped_total",
			Help: "Total number of synced records skipped as duplicates",
		},
	)

	SyncStoreErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_store_errors_total",
			Help: "Total number of records that failed to persist",
		},
	)

	SyncLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sync_last_success_timestamp",
			Help: "Unix timestamp of the last completed sync run",
		},
	)

	// Enrichment Metrics
	EnrichmentResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_results_total",
			Help: "Total number of enrichment calls by kind and result",
		},
		[]string{"kind", "result"}, // kind: geocode, image; result: success, failure, timeout, disabled
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	// Event bus Metrics
	BusMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventbus_messages_published_total",
			Help: "Total number of messages published on the event bus",
		},
		[]string{"topic", "result"},
	)

	// Audit Metrics
	AuditEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_events_total",
			Help: "Total number of audit events by type and result",
		},
		[]string{"type", "result"}, // result: saved, error, dropped
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: success, failure, rejected
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// SyncRunSummary carries the counters of one sync run.
type SyncRunSummary struct {
	Duration    time.Duration
	Inserted    int
	Skipped     int
	StoreErrors int
}

// RecordSyncRun records the totals of a completed sync run.
func RecordSyncRun(trigger string, s SyncRunSummary) {
	SyncDuration.Observe(s.Duration.Seconds())
	SyncRunsTotal.WithLabelValues(trigger, "completed").Inc()
	SyncEventsInserted.Add(float64(s.Inserted))
	SyncEventsSkipped.Add(float64(s.Skipped))
	SyncStoreErrors.Add(float64(s.StoreErrors))
	SyncLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordSyncSkipped records a trigger that was refused because a run was in progress.
func RecordSyncSkipped(trigger string) {
	SyncRunsTotal.WithLabelValues(trigger, "skipped").Inc()
}

// RecordSourceFetch records one adapter outcome.
func RecordSourceFetch(source string, fetched int, err error) {
	if err != nil {
		SyncFetchErrors.WithLabelValues(source).Inc()
		return
	}
	SyncEventsFetched.WithLabelValues(source).Add(float64(fetched))
}

// RecordItemsDropped records upstream items discarded during mapping.
func RecordItemsDropped(source string, n int) {
	if n > 0 {
		SyncItemsDropped.WithLabelValues(source).Add(float64(n))
	}
}

// RecordEnrichment records one enrichment call outcome.
func RecordEnrichment(kind, result string) {
	EnrichmentResults.WithLabelValues(kind, result).Inc()
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(cacheType string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cacheType).Inc()
	} else {
		CacheMisses.WithLabelValues(cacheType).Inc()
	}
}

// RecordBusPublish records a publish attempt on the event bus.
func RecordBusPublish(topic string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	BusMessagesPublished.WithLabelValues(topic, result).Inc()
}
