// Package metrics holds the Prometheus collectors of the search service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booksearch_requests_total",
			Help: "Search requests by outcome (ok, empty_query, catalog_failure, not_configured, stale)",
		},
		[]string{"outcome"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "booksearch_stage_duration_seconds",
			Help:    "Duration of each pipeline stage",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	SourceCandidates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booksearch_source_candidates_total",
			Help: "Candidates returned per source",
		},
		[]string{"source"},
	)

	SourceErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booksearch_source_errors_total",
			Help: "Source failures per source",
		},
		[]string{"source"},
	)

	SkippedRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booksearch_skipped_rows_total",
			Help: "Upstream rows rejected at the parsing boundary",
		},
		[]string{"source", "reason"},
	)

	RerankOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booksearch_rerank_outcomes_total",
			Help: "Reranker outcomes (applied, skipped, unavailable)",
		},
		[]string{"outcome"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "booksearch_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booksearch_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "booksearch_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "status"},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "booksearch_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)
