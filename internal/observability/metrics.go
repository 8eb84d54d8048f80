package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. Watch for: p95/p99 latency increases.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight. Watch for: saturation, capacity limits.
	HTTPRequestsInFlight prometheus.Gauge

	// Classifications by predicted class. Watch for: distribution shifts (drift or sensor issues).
	PredictionsTotal *prometheus.CounterVec

	// Confidence of each prediction, in percent. Watch for: sustained low confidence = model mismatch with live data.
	PredictionConfidence prometheus.Histogram

	// Rejected /predict payloads by field. Watch for: a single field dominating = client contract break.
	ValidationFailuresTotal *prometheus.CounterVec

	// Air-pollution API call rate. Watch for: error vs success ratio.
	UpstreamCallsTotal *prometheus.CounterVec

	// External API latency per request. Watch for: p95 > 2s (upstream degradation).
	UpstreamDuration *prometheus.HistogramVec

	// Circuit breaker state per upstream component: 0 closed, 1 half-open, 2 open.
	CircuitBreakerState *prometheus.GaugeVec

	// 1 when model artifacts loaded, 0 when inference is unavailable.
	ModelLoaded prometheus.Gauge
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	PredictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aqiPredictionsTotal",
			Help: "Total number of AQI classifications by predicted class",
		},
		[]string{"class"},
	)
	PredictionConfidence = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aqiPredictionConfidencePercent",
			Help:    "Classifier confidence per prediction, in percent",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 95, 100},
		},
	)
	ValidationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aqiValidationFailuresTotal",
			Help: "Rejected pollutant payloads by offending field",
		},
		[]string{"field"},
	)
	UpstreamCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airPollutionApiCallsTotal",
			Help: "Total number of air-pollution API calls",
		},
		[]string{"status"},
	)
	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "airPollutionApiDurationSeconds",
			Help:    "Air-pollution API latency in seconds (per request)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)
	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuitBreakerState",
			Help: "Circuit breaker state per component: 0 closed, 1 half-open, 2 open",
		},
		[]string{"component"},
	)
	ModelLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "aqiModelLoaded",
			Help: "Whether the classifier artifacts loaded at startup (1) or inference is unavailable (0)",
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		PredictionsTotal, PredictionConfidence, ValidationFailuresTotal,
		UpstreamCallsTotal, UpstreamDuration,
		CircuitBreakerState, ModelLoaded,
	)
}

// RecordPrediction records one classification outcome.
func RecordPrediction(class string, confidence float64) {
	PredictionsTotal.WithLabelValues(class).Inc()
	PredictionConfidence.Observe(confidence)
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
