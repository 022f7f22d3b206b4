package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Classifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complykit_classifications_total",
			Help: "Total number of completed classifications by risk level and matched rule",
		},
		[]string{"risk_level", "rule"},
	)

	ValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complykit_advance_validation_failures_total",
			Help: "Advance attempts rejected because required questions were unanswered",
		},
		[]string{"step"},
	)

	PersistenceFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "complykit_persistence_fallbacks_total",
			Help: "Results written to the pending cache because the store insert failed",
		},
	)

	PendingReplayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complykit_pending_replayed_total",
			Help: "Pending results replayed into the store",
		},
		[]string{"outcome"},
	)

	GenerationCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complykit_generation_calls_total",
			Help: "Text generation requests by purpose and outcome",
		},
		[]string{"purpose", "outcome"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "complykit_generation_duration_seconds",
			Help:    "Latency of text generation requests",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"purpose"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complykit_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"route", "code"},
	)
)
