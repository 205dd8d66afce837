package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogfeed_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blogfeed_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// FeedResolutions counts resolved feed pages by context (home, group, profile, follow, search).
	FeedResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogfeed_feed_resolutions_total",
		Help: "Total number of feed pages resolved by context",
	}, []string{"context"})

	// HomeCacheLookups counts home timeline cache lookups by result (hit, miss, bypass, error).
	HomeCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogfeed_home_cache_lookups_total",
		Help: "Total number of home timeline cache lookups",
	}, []string{"result"})

	// Mutations counts content mutations by kind and outcome.
	Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogfeed_mutations_total",
		Help: "Total number of create, edit and delete attempts",
	}, []string{"kind", "outcome"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// RecordMutation increments the mutation counter for kind ("post.create", ...) and outcome.
func RecordMutation(kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	Mutations.WithLabelValues(kind, outcome).Inc()
}
