package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "travelplanner_api_request_duration_seconds",
			Help:    "Model API request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 0.1s to ~100s
		},
		[]string{"model", "status"},
	)

	rateLimiterWaitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "travelplanner_rate_limiter_wait_duration_seconds",
			Help:    "Rate limiter wait duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~32s
		},
		[]string{"model"},
	)

	generationSteps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelplanner_generation_steps_total",
			Help: "Generation steps completed by stage and outcome",
		},
		[]string{"stage", "status"}, // stage: "metadata"/"days", status: "success"/"error"
	)

	daysGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "travelplanner_days_generated_total",
			Help: "Total itinerary days generated",
		},
	)
)

// RecordAPIRequest records a model API request duration
func RecordAPIRequest(model string, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	apiRequestDuration.WithLabelValues(model, status).Observe(duration.Seconds())
}

// RecordRateLimiterWait records time spent waiting on the rate limiter
func RecordRateLimiterWait(model string, duration time.Duration) {
	rateLimiterWaitDuration.WithLabelValues(model).Observe(duration.Seconds())
}

// RecordGenerationStep counts a completed generation step
func RecordGenerationStep(stage string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	generationSteps.WithLabelValues(stage, status).Inc()
}

// AddDaysGenerated counts successfully generated itinerary days
func AddDaysGenerated(n int) {
	daysGenerated.Add(float64(n))
}
