package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusCollector exports recommender metrics.
type PrometheusCollector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration prometheus.Histogram
	errorsTotal     *prometheus.CounterVec
	catalogItems    prometheus.Gauge
	indexBuild      prometheus.Gauge
	registry        *prometheus.Registry
}

// NewPrometheusCollector creates a collector with a private registry.
func NewPrometheusCollector() *PrometheusCollector {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nextbest_recommend_requests_total",
			Help: "Total number of recommendation requests by status",
		},
		[]string{"status"},
	)

	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nextbest_recommend_duration_seconds",
			Help:    "Latency of recommendation lookups",
			Buckets: []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nextbest_errors_total",
			Help: "Total number of errors by operation and error type",
		},
		[]string{"operation", "error_type"},
	)

	catalogItems := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "nextbest_catalog_items",
		Help: "Number of products in the loaded catalog",
	})

	indexBuild := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "nextbest_index_build_seconds",
		Help: "Time spent building the similarity index",
	})

	registry.MustRegister(requestsTotal, requestDuration, errorsTotal, catalogItems, indexBuild)

	return &PrometheusCollector{
		requestsTotal:   requestsTotal,
		requestDuration: requestDuration,
		errorsTotal:     errorsTotal,
		catalogItems:    catalogItems,
		indexBuild:      indexBuild,
		registry:        registry,
	}
}

// RecordRequest counts a request and observes its latency.
func (m *PrometheusCollector) RecordRequest(ctx context.Context, status string, d time.Duration) {
	m.requestsTotal.WithLabelValues(status).Inc()
	m.requestDuration.Observe(d.Seconds())
}

// RecordError counts an error.
func (m *PrometheusCollector) RecordError(ctx context.Context, operation, errorType string) {
	m.errorsTotal.WithLabelValues(operation, errorType).Inc()
}

// SetCatalogItems sets the catalog size gauge.
func (m *PrometheusCollector) SetCatalogItems(ctx context.Context, n int) {
	m.catalogItems.Set(float64(n))
}

// RecordIndexBuild sets the index build time gauge.
func (m *PrometheusCollector) RecordIndexBuild(ctx context.Context, d time.Duration) {
	m.indexBuild.Set(d.Seconds())
}

// Registry returns the registry for HTTP exposure.
func (m *PrometheusCollector) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *PrometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
