package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SnapshotBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reviewlens_snapshot_build_duration_seconds",
			Help:    "Full pipeline duration (fetch, clean, enrich) in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	SnapshotBuilds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviewlens_snapshot_builds_total",
			Help: "Total snapshot build attempts",
		},
		[]string{"status"},
	)

	SnapshotRows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "reviewlens_snapshot_rows",
			Help: "Reviews in the current snapshot",
		},
	)

	RowsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reviewlens_rows_dropped_total",
			Help: "Rows dropped for missing review text",
		},
	)

	FilterRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviewlens_filter_requests_total",
			Help: "Filter evaluations served",
		},
		[]string{"endpoint"},
	)

	ViewSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reviewlens_view_rows",
			Help:    "Rows matched per filter evaluation",
			Buckets: []float64{0, 10, 100, 1000, 10000, 100000},
		},
	)

	SourceCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviewlens_source_cache_hits_total",
			Help: "Raw dataset cache hits",
		},
		[]string{"cache_type"},
	)

	SourceCacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviewlens_source_cache_misses_total",
			Help: "Raw dataset cache misses",
		},
		[]string{"cache_type"},
	)
)

func Init() {
	prometheus.MustRegister(SnapshotBuildDuration)
	prometheus.MustRegister(SnapshotBuilds)
	prometheus.MustRegister(SnapshotRows)
	prometheus.MustRegister(RowsDropped)
	prometheus.MustRegister(FilterRequests)
	prometheus.MustRegister(ViewSize)
	prometheus.MustRegister(SourceCacheHits)
	prometheus.MustRegister(SourceCacheMisses)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
