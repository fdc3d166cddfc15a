package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Cache reads answered from the cache store",
		},
		[]string{"entity"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Cache reads that fell through to the authoritative store",
		},
		[]string{"entity"},
	)

	CacheNegativeHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_negative_hits_total",
			Help: "Cache reads answered by a confirmed-absent marker",
		},
		[]string{"entity"},
	)

	CacheFillContended = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_fill_contended_total",
			Help: "Cache fills that waited on another caller's fill lock",
		},
		[]string{"entity"},
	)

	LockAcquisitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lock_acquisitions_total",
			Help: "Named lock acquisitions by outcome (acquired, contended)",
		},
		[]string{"outcome"},
	)

	ReconcilerTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconciler_transitions_total",
			Help: "Order status transitions applied by the timeout sweeps",
		},
		[]string{"sweep"},
	)
)

func init() {
	prometheus.MustRegister(
		CacheHits,
		CacheMisses,
		CacheNegativeHits,
		CacheFillContended,
		LockAcquisitions,
		ReconcilerTransitions,
	)
}
