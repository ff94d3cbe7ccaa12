package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	chatRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "askdb_chat_requests_total",
			Help: "Total number of chat messages processed, by detected locale.",
		},
		[]string{"locale"},
	)
	languageDetectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "askdb_language_detections_total",
			Help: "Total number of language detections, by resulting locale.",
		},
		[]string{"locale"},
	)
	oracleRequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "askdb_oracle_requests_total",
			Help: "Total number of completion requests sent to the model endpoint.",
		},
	)
	oracleFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "askdb_oracle_failures_total",
			Help: "Total number of completion requests that returned an error.",
		},
	)
	generationCacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "askdb_generation_cache_hits_total",
			Help: "Total number of SQL generations served from cache.",
		},
	)
	generationCacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "askdb_generation_cache_misses_total",
			Help: "Total number of SQL generations that required a model call.",
		},
	)
	queryCacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "askdb_query_cache_hits_total",
			Help: "Total number of query executions served from cache.",
		},
	)
	queryCacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "askdb_query_cache_misses_total",
			Help: "Total number of query executions that reached the database.",
		},
	)
	storeQueryDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "askdb_store_query_duration_seconds",
			Help:    "Database query latency.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15},
		},
	)
)

func init() {
	prometheus.MustRegister(
		chatRequestsTotal,
		languageDetectionsTotal,
		oracleRequestsTotal,
		oracleFailuresTotal,
		generationCacheHitsTotal,
		generationCacheMissesTotal,
		queryCacheHitsTotal,
		queryCacheMissesTotal,
		storeQueryDurationSeconds,
	)
}

func IncrementChatRequests(locale string) {
	chatRequestsTotal.WithLabelValues(locale).Inc()
}

func IncrementLanguageDetections(locale string) {
	languageDetectionsTotal.WithLabelValues(locale).Inc()
}

func IncrementOracleRequests() {
	oracleRequestsTotal.Inc()
}

func IncrementOracleFailures() {
	oracleFailuresTotal.Inc()
}

func IncrementGenerationCacheHits() {
	generationCacheHitsTotal.Inc()
}

func IncrementGenerationCacheMisses() {
	generationCacheMissesTotal.Inc()
}

func IncrementQueryCacheHits() {
	queryCacheHitsTotal.Inc()
}

func IncrementQueryCacheMisses() {
	queryCacheMissesTotal.Inc()
}

func ObserveStoreQueryDuration(elapsed time.Duration) {
	storeQueryDurationSeconds.Observe(elapsed.Seconds())
}
