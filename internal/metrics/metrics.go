// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

// Package metrics defines the Prometheus instrumentation for the
// service: API latency and throughput, upstream source calls, vector
// index operations, circuit breaker state, the rating pipeline, and
// the recommendation cache.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
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
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Upstream Source Metrics (encoder, classifier, metadata, weather)
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Duration of upstream source calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"}, // "encoder", "classifier", "metadata", "weather"
	)

	UpstreamRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_request_errors_total",
			Help: "Total number of failed upstream source calls",
		},
		[]string{"source"},
	)

	UpstreamRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_retries_total",
			Help: "Total number of upstream call retries",
		},
		[]string{"source"},
	)

	// Vector Index Metrics
	IndexOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "index_operation_duration_seconds",
			Help:    "Duration of vector index operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "namespace"}, // operation: "upsert", "fetch", "query"
	)

	IndexOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "index_operation_errors_total",
			Help: "Total number of failed vector index operations",
		},
		[]string{"operation", "namespace"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
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

	// Rating Pipeline Metrics
	RatingEventsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rating_events_published_total",
			Help: "Total number of rating events published to the pipeline",
		},
	)

	RatingEventsConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rating_events_consumed_total",
			Help: "Total number of rating events consumed from the pipeline",
		},
	)

	RatingEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rating_events_dropped_total",
			Help: "Total number of rating events dropped (parse or validation failure)",
		},
	)

	ProfileUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_updates_total",
			Help: "Total number of user profile updates",
		},
		[]string{"mode", "result"}, // mode: "cold_start", "warm_update"; result: "success", "failure"
	)

	// Ingestion Metrics
	ItemsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "items_ingested_total",
			Help: "Total number of item ingestion attempts",
		},
		[]string{"result"}, // "stored", "exists", "failure"
	)

	// Recommendation Cache Metrics
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

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (TTL expiry)",
		},
		[]string{"cache_type"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordUpstreamRequest records an upstream source call.
func RecordUpstreamRequest(source string, duration time.Duration, err error) {
	UpstreamRequestDuration.WithLabelValues(source).Observe(duration.Seconds())
	if err != nil {
		UpstreamRequestErrors.WithLabelValues(source).Inc()
	}
}

// RecordUpstreamRetry records an upstream call retry.
func RecordUpstreamRetry(source string) {
	UpstreamRetries.WithLabelValues(source).Inc()
}

// RecordIndexOperation records a vector index operation.
func RecordIndexOperation(operation, namespace string, duration time.Duration, err error) {
	IndexOperationDuration.WithLabelValues(operation, namespace).Observe(duration.Seconds())
	if err != nil {
		IndexOperationErrors.WithLabelValues(operation, namespace).Inc()
	}
}

// RecordProfileUpdate records a user profile update attempt.
func RecordProfileUpdate(mode string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	ProfileUpdates.WithLabelValues(mode, result).Inc()
}

// RecordIngestion records an item ingestion attempt.
// result is "stored", "exists", or "failure".
func RecordIngestion(result string) {
	ItemsIngested.WithLabelValues(result).Inc()
}
