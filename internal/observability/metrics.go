package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chirp_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// FeedBuildLatency records how long a feed variant takes to select and enrich.
	FeedBuildLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chirp_feed_build_latency_seconds",
		Help:    "Feed assembly latency in seconds by variant",
		Buckets: prometheus.DefBuckets,
	}, []string{"variant"})

	// FeedItemsServed counts enriched posts returned per feed variant.
	FeedItemsServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_feed_items_served_total",
		Help: "Total number of enriched posts served by feed variant",
	}, []string{"variant"})

	// EnrichmentDegraded counts feed items emitted with defaulted derived fields.
	EnrichmentDegraded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_feed_enrichment_degraded_total",
		Help: "Total number of feed items emitted without full enrichment",
	}, []string{"stage"})

	// ImageUploads counts uploaded image files by outcome.
	ImageUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_image_uploads_total",
		Help: "Total number of uploaded image files by outcome",
	}, []string{"kind", "outcome"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// TrackFeed returns a function that records feed latency and item count when called (e.g. defer).
func TrackFeed(variant string) func(items int) {
	start := time.Now()
	return func(items int) {
		FeedBuildLatency.WithLabelValues(variant).Observe(time.Since(start).Seconds())
		FeedItemsServed.WithLabelValues(variant).Add(float64(items))
	}
}
