// Package observability provides metrics for the WellAtlas application.
package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the metric collectors for the application.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	storeQueriesTotal   *prometheus.CounterVec
}

// NewMetrics creates a new instance of Metrics, initializing all metric
// collectors. It returns an error if any metric collector fails to register.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wellatlas_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status code.",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wellatlas_http_request_duration_seconds",
				Help:    "HTTP request latency by method and route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		storeQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wellatlas_store_queries_total",
				Help: "Total number of record store queries by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
	}

	for _, collector := range []prometheus.Collector{
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.storeQueriesTotal,
		collectors.NewGoCollector(),
	} {
		if err := registry.Register(collector); err != nil {
			return nil, fmt.Errorf("failed to register metrics collector: %w", err)
		}
	}

	return m, nil
}

// ObserveHTTPRequest records one served HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, route, status string, elapsed time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveStoreQuery records one record store query outcome.
func (m *Metrics) ObserveStoreQuery(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.storeQueriesTotal.WithLabelValues(operation, outcome).Inc()
}

// Handler returns an HTTP handler serving the metrics registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
