// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Draft outcome label values.
const (
	OutcomeGenerated  = "generated"
	OutcomeFallback   = "fallback"
	OutcomeBadRequest = "bad_request"
)

var (
	DraftsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copilot_drafts_total",
			Help: "Total number of draft requests by outcome",
		},
		[]string{"outcome"},
	)

	GenerationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copilot_generation_failures_total",
			Help: "Total number of failed generation calls by reason",
		},
		[]string{"reason"},
	)

	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "copilot_generation_duration_seconds",
			Help:    "Duration of generation calls in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		},
	)

	BadRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "copilot_bad_requests_total",
			Help: "Total number of draft requests rejected by input validation",
		},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copilot_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"backend"},
	)

	DraftValidationDefects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "copilot_draft_validation_defects_total",
			Help: "Composed drafts that failed the response shape check and were replaced",
		},
	)
)
