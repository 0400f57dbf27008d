// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API metrics.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventlens_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventlens_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventlens_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	// Training metrics.
	TrainingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventlens_training_runs_total",
			Help: "Total number of model training runs",
		},
		[]string{"status"}, // "success", "error", "skipped"
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "eventlens_training_duration_seconds",
			Help:    "Duration of model training runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
	)

	TrainingLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventlens_training_last_success_timestamp",
			Help: "Unix timestamp of the last successful training run",
		},
	)

	// Recommendation serving metrics.
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventlens_recommendation_requests_total",
			Help: "Total number of recommendation lookups",
		},
		[]string{"kind"}, // "user", "similar"
	)

	ColdStartFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventlens_cold_start_fallbacks_total",
			Help: "Total number of popularity fallbacks for unknown users",
		},
	)

	InteractionsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventlens_interactions_recorded_total",
			Help: "Total number of interactions accepted into the log",
		},
		[]string{"type"},
	)

	// Model state gauges, updated after every successful training run.
	ModelUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventlens_model_users",
			Help: "Number of users in the serving model",
		},
	)

	ModelEvents = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventlens_model_events",
			Help: "Number of events in the serving model",
		},
	)

	ModelFactors = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventlens_model_factors",
			Help: "Latent factor count of the serving model",
		},
	)

	ModelExplainedVariance = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventlens_model_explained_variance",
			Help: "Explained variance ratio of the serving model",
		},
	)
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordTrainingRun records the outcome of one training run and, on
// success, refreshes the model gauges.
func RecordTrainingRun(duration time.Duration, nUsers, nEvents, nFactors int, explainedVariance float64, err error) {
	TrainingDuration.Observe(duration.Seconds())
	if err != nil {
		TrainingRunsTotal.WithLabelValues("error").Inc()
		return
	}
	TrainingRunsTotal.WithLabelValues("success").Inc()
	TrainingLastSuccess.SetToCurrentTime()
	ModelUsers.Set(float64(nUsers))
	ModelEvents.Set(float64(nEvents))
	ModelFactors.Set(float64(nFactors))
	ModelExplainedVariance.Set(explainedVariance)
}

// RecordTrainingSkipped records a scheduled run that was skipped, e.g.
// because the interaction log was below the configured minimum.
func RecordTrainingSkipped() {
	TrainingRunsTotal.WithLabelValues("skipped").Inc()
}

// RecordRecommendation records one recommendation lookup.
func RecordRecommendation(kind string, coldStart bool) {
	RecommendationRequests.WithLabelValues(kind).Inc()
	if coldStart {
		ColdStartFallbacks.Inc()
	}
}

// RecordInteraction records one accepted interaction by type.
func RecordInteraction(interactionType string) {
	InteractionsRecorded.WithLabelValues(interactionType).Inc()
}
