// internal/monitoring/metrics.go
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsManager owns the Prometheus collectors of the service. Collectors
// live on a private registry so several managers can coexist in tests.
type MetricsManager struct {
	registry *prometheus.Registry

	// Scraping metrics
	fetchTotal      *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
	extractionTotal *prometheus.CounterVec

	// Batch metrics
	batchItemsTotal *prometheus.CounterVec
	batchesTotal    *prometheus.CounterVec
	batchSize       prometheus.Histogram
	batchDuration   prometheus.Histogram

	// API metrics
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	exportsTotal      *prometheus.CounterVec
}

// MetricsConfig configuration for metrics
type MetricsConfig struct {
	Namespace       string `json:"namespace"`
	EnableGoMetrics bool   `json:"enable_go_metrics"`
}

// NewMetricsManager creates a new metrics manager
func NewMetricsManager(config MetricsConfig) *MetricsManager {
	if config.Namespace == "" {
		config.Namespace = "pricescrapexter"
	}

	reg := prometheus.NewRegistry()
	if config.EnableGoMetrics {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	mm := &MetricsManager{registry: reg}
	mm.initializeMetrics(config.Namespace)
	return mm
}

func (mm *MetricsManager) initializeMetrics(namespace string) {
	factory := promauto.With(mm.registry)

	mm.fetchTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_total",
			Help:      "Page fetches by outcome",
		},
		[]string{"outcome"},
	)

	mm.fetchDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Page fetch duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
		},
		[]string{"outcome"},
	)

	mm.extractionTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_total",
			Help:      "Price extractions by winning strategy",
		},
		[]string{"strategy"},
	)

	mm.batchItemsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_items_total",
			Help:      "Batch items by result status",
		},
		[]string{"status"},
	)

	mm.batchesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Completed batches by status",
		},
		[]string{"status"},
	)

	mm.batchSize = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of products per batch",
			Buckets:   prometheus.LinearBuckets(1, 5, 10),
		},
	)

	mm.batchDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Batch duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	mm.httpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "API requests by route and status code",
		},
		[]string{"route", "code"},
	)

	mm.httpDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "API request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	mm.exportsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Exports by format",
		},
		[]string{"format"},
	)
}

// RecordFetch records a page fetch. outcome is "success" or an error kind.
func (mm *MetricsManager) RecordFetch(outcome string, duration time.Duration) {
	mm.fetchTotal.WithLabelValues(outcome).Inc()
	mm.fetchDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordExtraction records the strategy that produced a price, or "none".
func (mm *MetricsManager) RecordExtraction(strategy string) {
	mm.extractionTotal.WithLabelValues(strategy).Inc()
}

// RecordItem records the result of one batch item.
func (mm *MetricsManager) RecordItem(status string) {
	mm.batchItemsTotal.WithLabelValues(status).Inc()
}

// RecordBatch records a completed batch.
func (mm *MetricsManager) RecordBatch(status string, size int, duration time.Duration) {
	mm.batchesTotal.WithLabelValues(status).Inc()
	mm.batchSize.Observe(float64(size))
	mm.batchDuration.Observe(duration.Seconds())
}

// RecordHTTPRequest records a served API request.
func (mm *MetricsManager) RecordHTTPRequest(route string, code int, duration time.Duration) {
	mm.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
	mm.httpDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordExport records an export in the given format.
func (mm *MetricsManager) RecordExport(format string) {
	mm.exportsTotal.WithLabelValues(format).Inc()
}

// Registry exposes the underlying registry.
func (mm *MetricsManager) Registry() *prometheus.Registry {
	return mm.registry
}

// MetricsHandler returns an HTTP handler for metrics endpoint
func (mm *MetricsManager) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(mm.registry, promhttp.HandlerOpts{})
}
