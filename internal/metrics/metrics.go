package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DispatchesTotal tracks touch dispatch outcomes per channel
	DispatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreachstack_dispatches_total",
			Help: "Total number of touch dispatch attempts",
		},
		[]string{"channel", "outcome"},
	)

	// PipelineStageFailures tracks pipeline stage failures
	PipelineStageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreachstack_pipeline_stage_failures_total",
			Help: "Total number of pipeline stage failures",
		},
		[]string{"stage", "severity"},
	)

	// RateLimitDenials tracks rate limiter denials per scope
	RateLimitDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreachstack_rate_limit_denials_total",
			Help: "Total number of rate limited operations",
		},
		[]string{"scope"},
	)

	// CircuitTransitions tracks circuit breaker state transitions
	CircuitTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreachstack_circuit_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"scope", "to_state"},
	)

	// RetryAttempts tracks retry attempts per operation
	RetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreachstack_retry_attempts_total",
			Help: "Total number of retry attempts",
		},
		[]string{"operation"},
	)

	// DispatchLatency tracks end to end dispatch latency
	DispatchLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "outreachstack_dispatch_latency_seconds",
			Help:    "Dispatch latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"channel"},
	)

	// IdentityHealthScore tracks the last computed health score per identity
	IdentityHealthScore = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "outreachstack_identity_health_score",
			Help: "Last computed health score of a sending identity",
		},
		[]string{"tenant", "identity"},
	)

	// SuppressionsTotal tracks recipients added to the suppression list
	SuppressionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreachstack_suppressions_total",
			Help: "Total number of recipients suppressed",
		},
		[]string{"reason"},
	)
)
