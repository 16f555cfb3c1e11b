// Package metrics exposes Prometheus collectors for provider calls and
// analysis runs. Collectors register themselves on the default registry;
// the serve command mounts promhttp to publish them.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bestmap_provider_requests_total",
			Help: "Total provider fetches by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bestmap_provider_request_duration_seconds",
			Help:    "Duration of provider fetches in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5},
		},
		[]string{"source"},
	)

	Analyses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bestmap_analyses_total",
			Help: "Completed analyses by risk tier and reliability",
		},
		[]string{"risk_tier", "reliability"},
	)

	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bestmap_analysis_duration_seconds",
			Help:    "End-to-end analysis duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)
)

// ObserveProvider records one provider fetch. Outcome is "ok" or "error".
func ObserveProvider(source string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ProviderRequests.WithLabelValues(source, outcome).Inc()
	ProviderRequestDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
}

// ObserveAnalysis records one completed analysis.
func ObserveAnalysis(riskTier, reliability string, start time.Time) {
	Analyses.WithLabelValues(riskTier, reliability).Inc()
	AnalysisDuration.Observe(time.Since(start).Seconds())
}
