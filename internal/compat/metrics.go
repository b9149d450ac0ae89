package compat

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// lookupsTotal counts verdict lookups by result (hit, miss, forced, unreadable)
	lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hposcan_cache_lookups_total",
		Help: "Compatibility verdict lookups by result",
	}, []string{"result"})

	detectorRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hposcan_detector_runs_total",
		Help: "Compatibility detector runs by verdict",
	}, []string{"verdict"})

	refreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hposcan_cache_refreshes_total",
		Help: "Per-target results of bulk cache refreshes",
	}, []string{"result"})

	storeErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hposcan_cache_store_errors_total",
		Help: "Cache store failures by operation",
	}, []string{"operation"})
)
