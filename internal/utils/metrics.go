// internal/utils/metrics.go
package utils

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the private registry for everything the studio exports on /metrics.
var Registry = prometheus.NewRegistry()

var (
	apiRequests = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "magicstudio_api_requests_total",
			Help: "HTTP requests by route, method and status class.",
		},
		[]string{"route", "method", "status"},
	)
	apiLatency = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "magicstudio_api_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	attemptsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "magicstudio_attempts_total",
			Help: "Creation attempts by terminal outcome.",
		},
		[]string{"outcome"},
	)
	remoteCalls = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "magicstudio_remote_calls_total",
			Help: "Calls to text and image capabilities by provider and result.",
		},
		[]string{"capability", "provider", "result"},
	)
	remoteLatency = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "magicstudio_remote_call_duration_seconds",
			Help:    "Latency of text and image capability calls.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		},
		[]string{"capability", "provider"},
	)
	rateLimitRetries = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Name: "magicstudio_rate_limit_retries_total",
			Help: "Image generation retries triggered by a rate-limit signal.",
		},
	)
	errorsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "magicstudio_errors_total",
			Help: "Errors by type and component.",
		},
		[]string{"type", "component"},
	)
)

// APIMetrics records studio metrics and mirrors the interesting ones to the log
type APIMetrics struct {
	logger *Logger
}

var (
	apiMetrics     *APIMetrics
	apiMetricsOnce sync.Once
)

// GetAPIMetrics returns the shared metrics recorder
func GetAPIMetrics() *APIMetrics {
	apiMetricsOnce.Do(func() {
		apiMetrics = &APIMetrics{logger: GetLogger()}
	})
	return apiMetrics
}

// RecordAPIRequest records metrics for an API request
func (am *APIMetrics) RecordAPIRequest(route, method string, statusCode int, duration time.Duration) {
	apiRequests.WithLabelValues(route, method, strconv.Itoa(statusCode/100)+"xx").Inc()
	apiLatency.WithLabelValues(route).Observe(duration.Seconds())

	am.logger.Debug("API request completed", map[string]interface{}{
		"route":       route,
		"method":      method,
		"status":      statusCode,
		"duration_ms": duration.Milliseconds(),
	})
}

// RecordRemoteCall records one text or image capability call
func (am *APIMetrics) RecordRemoteCall(capability, provider string, err error, duration time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	remoteCalls.WithLabelValues(capability, provider, result).Inc()
	remoteLatency.WithLabelValues(capability, provider).Observe(duration.Seconds())
}

// RecordAttempt records the terminal outcome of a creation attempt
func (am *APIMetrics) RecordAttempt(outcome string) {
	attemptsTotal.WithLabelValues(outcome).Inc()
}

// RecordRateLimitRetry counts a backoff-and-retry
func (am *APIMetrics) RecordRateLimitRetry() {
	rateLimitRetries.Inc()
}

// RecordError records an error metric
func (am *APIMetrics) RecordError(errorType, component string) {
	errorsTotal.WithLabelValues(errorType, component).Inc()

	am.logger.Debug("Error recorded", map[string]interface{}{
		"type":      errorType,
		"component": component,
	})
}
