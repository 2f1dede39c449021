// Package metrics owns the Prometheus registry and every collector the
// service exposes at /metrics: the per-request instruments recorded by the
// metrics middleware, the Go runtime and process collectors, and the
// gopsutil-backed system gauges.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RequestMetrics tracks HTTP request processing.
//
// Metrics:
//   - <ns>_requests_total: request count by method, path, status
//   - <ns>_request_latency_seconds: request latency histogram by method, path
//   - <ns>_errors_total: exception count by method, path, exception kind
//
// All three instruments are safe for concurrent update from in-flight
// requests; their state lives for the whole process and is never reset.
type RequestMetrics struct {
	registry *prometheus.Registry

	requestsTotal  *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	errorsTotal    *prometheus.CounterVec
}

// NewRequestMetrics creates and registers the request instruments with the
// provided registry. If registry is nil a fresh one is created.
func NewRequestMetrics(namespace string, registry *prometheus.Registry) *RequestMetrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	rm := &RequestMetrics{
		registry: registry,

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed.",
			},
			[]string{"method", "path", "status"},
		),

		requestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_latency_seconds",
				Help:      "Request latency in seconds.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of exceptions raised by requests.",
			},
			[]string{"method", "path", "exception"},
		),
	}

	registry.MustRegister(
		rm.requestsTotal,
		rm.requestLatency,
		rm.errorsTotal,
	)

	return rm
}

// RecordRequest records the final outcome of one request: exactly one
// counter increment and one latency observation.
func (rm *RequestMetrics) RecordRequest(method, path string, status int, elapsed time.Duration) {
	rm.requestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	rm.requestLatency.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// RecordError increments the error counter for one raised exception.
// The exception label is the declared error kind or the dynamic type of a
// recovered panic value.
func (rm *RequestMetrics) RecordError(method, path, exception string) {
	rm.errorsTotal.WithLabelValues(method, path, exception).Inc()
}

// Registry returns the registry all collectors are registered on.
func (rm *RequestMetrics) Registry() *prometheus.Registry {
	return rm.registry
}

// Handler returns the HTTP handler rendering the registry in the standard
// text exposition format. It is mounted at /metrics.
func (rm *RequestMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(rm.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}
