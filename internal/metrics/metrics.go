package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "galleries"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// ReconcileDroppedRefs ссылки, выброшенные при самовосстановлении списка
	ReconcileDroppedRefs = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_dropped_refs_total",
			Help:      "Image references dropped because the file no longer exists.",
		},
	)

	// CascadeDeleteFailures файлы, которые не удалось удалить вместе с галереей
	CascadeDeleteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cascade_delete_failures_total",
			Help:      "Files that failed to delete during gallery removal.",
		},
	)

	OrphansPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphans_purged_total",
			Help:      "Orphaned files removed by the purge job.",
		},
	)
)
