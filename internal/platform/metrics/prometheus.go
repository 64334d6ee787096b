package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/northtrade/marketplace/ingestion-service/internal/platform/logger"
)

// Manager holds the custom Prometheus metrics for the ingestion pipeline.
type Manager struct {
	Registry           *prometheus.Registry
	ItemsCreatedTotal  prometheus.Counter
	ItemsUpdatedTotal  prometheus.Counter
	ItemErrorsTotal    prometheus.Counter
	ImagesStoredTotal  prometheus.Counter
	ImageFailuresTotal prometheus.Counter
	SyncDocsTotal      prometheus.Counter
	SyncFailuresTotal  prometheus.Counter
	BatchLatency       prometheus.Histogram
}

// NewManager initializes and registers the ingestion metrics on a private
// registry.
func NewManager(namespace string) *Manager {
	registry := prometheus.NewRegistry()

	itemsCreatedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "items_created_total",
		Help:      "Total number of canonical listings created by ingestion.",
	})
	itemsUpdatedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "items_updated_total",
		Help:      "Total number of canonical listings updated by re-ingestion.",
	})
	itemErrorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "item_errors_total",
		Help:      "Total number of batch items that failed reconciliation.",
	})
	imagesStoredTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "images_stored_total",
		Help:      "Total number of images fetched and stored.",
	})
	imageFailuresTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "image_failures_total",
		Help:      "Total number of candidate images skipped due to fetch or upload failure.",
	})
	syncDocsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_sync_docs_total",
		Help:      "Total number of documents upserted into the search index.",
	})
	syncFailuresTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_sync_failures_total",
		Help:      "Total number of search sync attempts that exhausted retries.",
	})
	batchLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "batch_latency_seconds",
		Help:      "Latency of whole-batch ingestion calls.",
		Buckets:   prometheus.DefBuckets,
	})

	registry.MustRegister(
		itemsCreatedTotal,
		itemsUpdatedTotal,
		itemErrorsTotal,
		imagesStoredTotal,
		imageFailuresTotal,
		syncDocsTotal,
		syncFailuresTotal,
		batchLatency,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &Manager{
		Registry:           registry,
		ItemsCreatedTotal:  itemsCreatedTotal,
		ItemsUpdatedTotal:  itemsUpdatedTotal,
		ItemErrorsTotal:    itemErrorsTotal,
		ImagesStoredTotal:  imagesStoredTotal,
		ImageFailuresTotal: imageFailuresTotal,
		SyncDocsTotal:      syncDocsTotal,
		SyncFailuresTotal:  syncFailuresTotal,
		BatchLatency:       batchLatency,
	}
}

// StartServer exposes /metrics on the given port. An empty port disables
// the server.
func StartServer(port string, appLogger *logger.Logger, registry *prometheus.Registry) error {
	if port == "" {
		appLogger.Info("Prometheus metrics server port not configured, server will not start.")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	appLogger.Info("Prometheus metrics server starting", zap.String("port", port), zap.String("path", "/metrics"))

	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}
	return server.ListenAndServe()
}
