// Package metrics exposes the Prometheus collectors of the service.
package metrics

import (
	"time" // Durations

	"github.com/prometheus/client_golang/prometheus"          // Collector types
	"github.com/prometheus/client_golang/prometheus/promauto" // Auto-registered collectors
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "restaurant_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "restaurant_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "restaurant_login_attempts_total",
		Help: "Login attempts by role and result",
	}, []string{"role", "result"})

	stateWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "restaurant_state_writes_total",
		Help: "Writes of the shared state document by result",
	}, []string{"result"})

	paymentOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "restaurant_payment_operations_total",
		Help: "Payment provider operations by operation and result",
	}, []string{"operation", "result"})

	paymentDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "restaurant_payment_duration_seconds",
		Help:    "Duration of payment provider calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveLogin counts a login attempt; result is "success" or "failure"
func ObserveLogin(role, result string) {
	loginAttempts.WithLabelValues(role, result).Inc()
}

// ObserveStateWrite counts a state document write
func ObserveStateWrite(result string) {
	stateWrites.WithLabelValues(result).Inc()
}

// ObservePayment records a provider call, e.g. ("create", "success")
func ObservePayment(operation, result string, duration time.Duration) {
	paymentOperations.WithLabelValues(operation, result).Inc()
	paymentDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
