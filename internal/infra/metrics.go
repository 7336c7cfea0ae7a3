package infra

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "studio"

var (
	// StageDuration observes how long each pipeline stage takes.
	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "pipeline",
		Name:      "stage_seconds",
		Help:      "Duration of creative pipeline stages.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"stage"})

	// StageFallbacks counts degradations per stage and reason.
	StageFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "pipeline",
		Name:      "fallbacks_total",
		Help:      "Pipeline stages that degraded to a fallback.",
	}, []string{"stage", "reason"})

	// RenderOutcomes counts rasterization attempts per backend.
	RenderOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "render",
		Name:      "backend_total",
		Help:      "Rasterization attempts by backend and outcome.",
	}, []string{"backend", "outcome"})

	// SQLDuration observes statements by operation and sqlinline marker.
	SQLDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "sql",
		Name:      "statement_seconds",
		Help:      "Duration of SQL statements by sqlinline marker.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op", "statement"})

	// RateLimitRejections counts requests refused by the limiter.
	RateLimitRejections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "ratelimit",
		Name:      "rejections_total",
		Help:      "Requests rejected by the per-user rate limiter.",
	})
)
