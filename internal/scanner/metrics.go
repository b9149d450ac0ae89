package scanner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hposcan_scans_total",
		Help: "Scans by outcome code",
	}, []string{"code"})

	findingsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hposcan_findings_total",
		Help: "Findings reported across all scans",
	})

	filesScannedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hposcan_files_scanned_total",
		Help: "Source files matched across all scans",
	})

	// scanDuration covers resolution, verdict lookup and matching
	scanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hposcan_scan_duration_seconds",
		Help:    "Scan duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
	})
)
