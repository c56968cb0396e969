// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the admin console security pipeline.
package observability

import "github.com/prometheus/client_golang/prometheus"

// RequestBuckets defines histogram buckets for console request latencies,
// ranging from 1ms to 5s.
var RequestBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

var (
	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adminguard_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adminguard_request_duration_seconds",
			Help:    "Request duration",
			Buckets: RequestBuckets,
		},
		[]string{"method"},
	)

	// PipelineOutcomesTotal counts pipeline results by chain and outcome
	// (forward, redirect, deny, error).
	PipelineOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adminguard_pipeline_outcomes_total",
			Help: "Security pipeline outcomes",
		},
		[]string{"chain", "outcome"},
	)

	// AuthenticationsTotal counts authentication attempts by credential
	// kind (form, remember_me) and result (success, failure, throttled).
	AuthenticationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adminguard_authentications_total",
			Help: "Authentication attempts",
		},
		[]string{"kind", "result"},
	)

	// AccessDecisionsTotal counts access decisions (grant, deny).
	AccessDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adminguard_access_decisions_total",
			Help: "Access decisions",
		},
		[]string{"decision"},
	)

	// LogoutsTotal counts processed logouts.
	LogoutsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "adminguard_logouts_total",
			Help: "Logouts",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		PipelineOutcomesTotal,
		AuthenticationsTotal,
		AccessDecisionsTotal,
		LogoutsTotal,
	)
}
