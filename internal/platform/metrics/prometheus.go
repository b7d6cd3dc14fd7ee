package metrics

import (
	"net/http"
	"time"

	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsManager holds the service's Prometheus collectors.
type MetricsManager struct {
	Registry         *prometheus.Registry
	ListingsCreated  prometheus.Counter
	GeocodeCacheHits *prometheus.CounterVec
	OperationErrors  *prometheus.CounterVec
	OperationLatency *prometheus.HistogramVec
}

// NewMetricsManager registers the collectors on a private registry.
// namespace must be a valid metric name prefix (no dashes).
func NewMetricsManager(namespace string) *MetricsManager {
	registry := prometheus.NewRegistry()

	listingsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_created_total",
		Help:      "Total number of listings created through hostListing.",
	})
	geocodeCacheHits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "geocode_cache_requests_total",
		Help:      "Geocode cache lookups by result (hit, miss, error).",
	}, []string{"result"})
	operationErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_errors_total",
		Help:      "Total number of failed graph operations by operation and error type.",
	}, []string{"operation", "error_type"})
	operationLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_latency_seconds",
		Help:      "Latency of graph operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	registry.MustRegister(
		listingsCreated,
		geocodeCacheHits,
		operationErrors,
		operationLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &MetricsManager{
		Registry:         registry,
		ListingsCreated:  listingsCreated,
		GeocodeCacheHits: geocodeCacheHits,
		OperationErrors:  operationErrors,
		OperationLatency: operationLatency,
	}
}

// ObserveOperation records latency and, when errType is not empty, an error for operation.
func (m *MetricsManager) ObserveOperation(operation string, started time.Time, errType string) {
	if m == nil {
		return
	}
	m.OperationLatency.WithLabelValues(operation).Observe(time.Since(started).Seconds())
	if errType != "" {
		m.OperationErrors.WithLabelValues(operation, errType).Inc()
	}
}

// IncListingsCreated is nil-safe so components can run without metrics.
func (m *MetricsManager) IncListingsCreated() {
	if m == nil {
		return
	}
	m.ListingsCreated.Inc()
}

// ObserveGeocodeCache counts a cache lookup result.
func (m *MetricsManager) ObserveGeocodeCache(result string) {
	if m == nil {
		return
	}
	m.GeocodeCacheHits.WithLabelValues(result).Inc()
}

// NewMetricsServer returns an HTTP server exposing /metrics on port.
func NewMetricsServer(port string, appLogger *logger.Logger, registry *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	appLogger.Info("Prometheus metrics server configured", zap.String("port", port), zap.String("path", "/metrics"))

	return &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
