// Package metrics defines the application's Prometheus metrics. They are
// registered onto the metrics server's registry in internal/server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SignalReadsTotal counts signal reads by result (ok, unknown, error).
	SignalReadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vehicle_signal_reads_total",
			Help: "Total number of signal read operations",
		},
		[]string{"result"},
	)

	// SignalWritesTotal counts signal writes by result
	// (ok, unknown, rejected, read_only, error).
	SignalWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vehicle_signal_writes_total",
			Help: "Total number of signal write operations",
		},
		[]string{"result"},
	)

	// ValidationFailuresTotal counts rejected writes per signal name.
	ValidationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vehicle_signal_validation_failures_total",
			Help: "Total number of writes rejected by a signal validator",
		},
		[]string{"signal"},
	)

	// SnapshotCacheHitsTotal counts get-all calls served from the cache.
	SnapshotCacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vehicle_signal_snapshot_cache_hits_total",
			Help: "Total number of signal snapshot reads served from the cache",
		},
	)

	// SnapshotCacheMissesTotal counts get-all calls that hit the store.
	SnapshotCacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vehicle_signal_snapshot_cache_misses_total",
			Help: "Total number of signal snapshot reads that fell through to the store",
		},
	)
)

// Register adds all application metrics to the given registry.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(
		SignalReadsTotal,
		SignalWritesTotal,
		ValidationFailuresTotal,
		SnapshotCacheHitsTotal,
		SnapshotCacheMissesTotal,
	)
}
