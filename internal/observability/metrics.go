package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleamart_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fleamart_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// UploadsAccepted counts image uploads that passed validation and were stored.
	UploadsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fleamart_uploads_accepted_total",
		Help: "Total number of uploaded files accepted and stored",
	})

	// UploadsRejected counts uploaded files dropped during validation by reason.
	UploadsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleamart_uploads_rejected_total",
		Help: "Total number of uploaded files rejected during validation",
	}, []string{"reason"})

	// LikeToggles counts like toggle operations by target type and direction.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleamart_like_toggles_total",
		Help: "Total number of like toggles by target and direction",
	}, []string{"target", "direction"})

	// AuthAttempts counts authentication attempts by method and outcome.
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleamart_auth_attempts_total",
		Help: "Total number of authentication attempts by method and outcome",
	}, []string{"method", "outcome"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}
