// Package metrics exposes Prometheus instrumentation for wikirec.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

var (
	// Recommendation metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wikirec_recommendations_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"},
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wikirec_recommend_duration_seconds",
			Help:    "End-to-end recommendation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RecommendResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wikirec_recommend_results",
			Help:    "Number of recommendations returned per request",
			Buckets: []float64{0, 1, 2, 3, 5, 10},
		},
	)

	EmbeddingFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wikirec_embedding_failures_total",
			Help: "Total number of failed embedding calls",
		},
		[]string{"provider"},
	)

	// History metrics
	HistoryOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wikirec_history_operations_total",
			Help: "Total number of history operations by kind and outcome",
		},
		[]string{"operation", "outcome"},
	)

	HistoryStorageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wikirec_history_storage_failures_total",
			Help: "Total number of history storage failures",
		},
		[]string{"operation"},
	)

	StorageDegraded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wikirec_storage_degraded",
			Help: "1 when consecutive history storage failures reached the escalation threshold",
		},
	)

	// Index metrics
	IndexBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wikirec_index_build_duration_seconds",
			Help:    "Duration of index builds in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"backend"},
	)

	IndexSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wikirec_index_records",
			Help: "Number of records in the active index",
		},
	)

	CatalogReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wikirec_catalog_reloads_total",
			Help: "Total number of catalog reloads by outcome",
		},
		[]string{"outcome"},
	)

	// Encyclopedia client metrics
	WikiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wikirec_wiki_request_duration_seconds",
			Help:    "Duration of encyclopedia API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "outcome"},
	)
)

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}

// RecordRecommendation records one recommendation request.
func RecordRecommendation(duration time.Duration, results int, err error) {
	RecommendationsTotal.WithLabelValues(outcome(err)).Inc()
	RecommendDuration.Observe(duration.Seconds())
	if err == nil {
		RecommendResults.Observe(float64(results))
	}
}

// RecordEmbeddingFailure counts a failed embedding call.
func RecordEmbeddingFailure(provider string) {
	EmbeddingFailures.WithLabelValues(provider).Inc()
}

// RecordHistoryOperation records a history operation. Failures are also
// counted as storage failures.
func RecordHistoryOperation(operation string, err error) {
	HistoryOperations.WithLabelValues(operation, outcome(err)).Inc()
	if err != nil {
		HistoryStorageFailures.WithLabelValues(operation).Inc()
	}
}

// SetStorageDegraded flips the degraded gauge.
func SetStorageDegraded(degraded bool) {
	if degraded {
		StorageDegraded.Set(1)
		return
	}
	StorageDegraded.Set(0)
}

// RecordIndexBuild records a completed index build.
func RecordIndexBuild(backend string, duration time.Duration, records int) {
	IndexBuildDuration.WithLabelValues(backend).Observe(duration.Seconds())
	IndexSize.Set(float64(records))
}

// RecordCatalogReload counts a catalog reload attempt.
func RecordCatalogReload(err error) {
	CatalogReloads.WithLabelValues(outcome(err)).Inc()
}

// RecordWikiRequest records an encyclopedia API call.
func RecordWikiRequest(operation string, duration time.Duration, err error) {
	WikiRequestDuration.WithLabelValues(operation, outcome(err)).Observe(duration.Seconds())
}

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
