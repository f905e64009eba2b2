package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request latency (seconds)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// DB query latency (seconds)
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation", "table"},
	)

	// MQ consume latency (milliseconds)
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	// Contract mutation counts
	ContractMutationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contract_mutation_count",
			Help: "Total number of contract mutations",
		},
		[]string{"operation"}, // operation: create, status_update
	)

	// Milestone mutation counts
	MilestoneMutationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "milestone_mutation_count",
			Help: "Total number of milestone mutations",
		},
		[]string{"operation"}, // operation: create, status_update, complete, overdue
	)

	// Cache invalidation counts
	CacheInvalidationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_invalidation_count",
			Help: "Total number of cache key-prefix invalidations",
		},
		[]string{"resource"},
	)
)

// RecordHTTPRequestDuration records HTTP request latency.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordDBQueryDuration records database query latency.
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// RecordMQConsumeLatency records MQ consumption latency.
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

// IncrementContractMutation bumps the contract mutation counter.
func IncrementContractMutation(operation string) {
	ContractMutationCount.WithLabelValues(operation).Inc()
}

// IncrementMilestoneMutation bumps the milestone mutation counter.
func IncrementMilestoneMutation(operation string) {
	MilestoneMutationCount.WithLabelValues(operation).Inc()
}

// IncrementCacheInvalidation bumps the cache invalidation counter.
func IncrementCacheInvalidation(resource string) {
	CacheInvalidationCount.WithLabelValues(resource).Inc()
}
