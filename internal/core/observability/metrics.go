// Package observability registers and records Prometheus metrics for
// the mesh cache service.
package observability

import (
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var modeLabel atomic.Value

func init() {
	modeLabel.Store("direct")
}

func SetMode(s string) {
	if s == "" {
		s = "direct"
	}
	modeLabel.Store(s)
}

func getMode() string {
	if v := modeLabel.Load(); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "direct"
}

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status", "mode"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status", "mode"},
	)

	meshMappingDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mesh_mapping_duration_seconds",
			Help:    "Duration of coordinate to mesh code mapping in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
		[]string{"level"},
	)

	meshCellsMapped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mesh_cells_mapped_total",
			Help: "Total mesh cells produced by area queries.",
		},
		[]string{"level"},
	)

	cacheOpDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cache_op_duration_seconds",
			Help:    "Duration of cache backend operations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"op", "outcome"},
	)

	cacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_results_total",
			Help: "Cache results by outcome.",
		},
		[]string{"outcome", "mode"},
	)

	kafkaConsumerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_consumer_errors_total",
			Help: "Kafka invalidation consumer errors by kind.",
		},
		[]string{"kind"},
	)

	invalidationsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invalidations_processed_total",
			Help: "Invalidation events processed by outcome.",
		},
		[]string{"outcome"},
	)

	buildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_build_info",
			Help: "Build information for the binary.",
		},
		[]string{"version"},
	)
)

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	m := getMode()
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st, m).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st, m).Observe(durationSeconds)
}

func ObserveMeshMapping(level string, cells int, durationSeconds float64) {
	meshMappingDurationSeconds.WithLabelValues(level).Observe(durationSeconds)
	meshCellsMapped.WithLabelValues(level).Add(float64(cells))
}

func ObserveCacheOp(op string, err error, durationSeconds float64) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	cacheOpDurationSeconds.WithLabelValues(op, outcome).Observe(durationSeconds)
}

func AddCacheHits(n int) {
	cacheResults.WithLabelValues("hit", getMode()).Add(float64(n))
}

func AddCacheMisses(n int) {
	cacheResults.WithLabelValues("miss", getMode()).Add(float64(n))
}

func IncKafkaConsumerError(kind string) {
	kafkaConsumerErrors.WithLabelValues(kind).Inc()
}

func IncInvalidation(outcome string) {
	invalidationsProcessed.WithLabelValues(outcome).Inc()
}

func ExposeBuildInfo(version string) {
	if version == "" {
		version = "dev"
	}
	buildInfo.WithLabelValues(version).Set(1)
}
