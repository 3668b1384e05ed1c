package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// scansTotal counts detection runs.
	// Labels: kind (contact kind, or "check" for stateless checks), status (success, error)
	scansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "estate",
		Subsystem: "dedup",
		Name:      "scans_total",
		Help:      "Total duplicate detection runs",
	}, []string{"kind", "status"})

	// groupsFound tracks how many groups each run reports after dismissals.
	// Labels: kind
	groupsFound = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "estate",
		Subsystem: "dedup",
		Name:      "groups_found",
		Help:      "Duplicate groups reported per detection run",
		Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
	}, []string{"kind"})

	// scanDuration measures detection latency, storage round trips included.
	// Labels: kind
	scanDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "estate",
		Subsystem: "dedup",
		Name:      "scan_duration_seconds",
		Help:      "Duplicate detection run duration in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"kind"})
)

const checkKind = "check"

func recordRun(kind string, seconds float64, groups int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	scansTotal.WithLabelValues(kind, status).Inc()
	scanDuration.WithLabelValues(kind).Observe(seconds)
	if err == nil {
		groupsFound.WithLabelValues(kind).Observe(float64(groups))
	}
}
