// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the visualization backend.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LLMBuckets covers model inference latencies from 100ms up to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

// ExecBuckets covers sandboxed code execution from 50ms up to 60s.
var ExecBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60}

var (
	// RequestsTotal counts HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentviz_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agentviz_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: LLMBuckets,
		},
		[]string{"method"},
	)

	// JobsActive tracks visualization jobs currently in flight.
	JobsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "agentviz_jobs_active",
			Help: "Visualization jobs in flight",
		},
	)

	// JobsTotal counts finished jobs by terminal status.
	JobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentviz_jobs_total",
			Help: "Finished visualization jobs",
		},
		[]string{"status"},
	)

	// ModelRequestsTotal counts chat completion calls to model backends.
	ModelRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentviz_model_requests_total",
			Help: "Model backend requests",
		},
		[]string{"provider", "model", "status"},
	)

	// ModelLatency records model backend latency in seconds.
	ModelLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agentviz_model_latency_seconds",
			Help:    "Model backend latency",
			Buckets: LLMBuckets,
		},
		[]string{"provider", "model"},
	)

	// ModelTokensTotal counts tokens by direction (input/output).
	ModelTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentviz_model_tokens_total",
			Help: "Token count",
		},
		[]string{"provider", "model", "direction"},
	)

	// ExecutionsTotal counts sandbox executions by outcome.
	ExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentviz_executions_total",
			Help: "Sandbox code executions",
		},
		[]string{"status"},
	)

	// ExecutionDuration records sandbox execution time in seconds.
	ExecutionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "agentviz_execution_duration_seconds",
			Help:    "Sandbox execution duration",
			Buckets: ExecBuckets,
		},
	)

	// RepairsTotal counts repair attempts by stage and whether the
	// repaired result replaced the direct one.
	RepairsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentviz_repairs_total",
			Help: "Code repair attempts",
		},
		[]string{"stage", "adopted"},
	)

	// RateLimitRejectedTotal counts requests rejected by the rate limiter.
	RateLimitRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentviz_ratelimit_rejected_total",
			Help: "Rate limit rejections",
		},
		[]string{"tier"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		JobsActive,
		JobsTotal,
		ModelRequestsTotal,
		ModelLatency,
		ModelTokensTotal,
		ExecutionsTotal,
		ExecutionDuration,
		RepairsTotal,
		RateLimitRejectedTotal,
	)
}
