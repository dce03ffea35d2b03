package syncer

import (
	"github.com/szopper/go-szopper/metrics"
)

const subsystem = "syncer"

var (
	statusGauge = metrics.NewGauge(
		"status",
		subsystem,
		"current connection status, 1 for the active one",
		[]string{"status"},
	)
	connects = metrics.NewCounter(
		"connects",
		subsystem,
		"connection attempts to peers by outcome",
		[]string{"outcome"},
	)
	syncs = metrics.NewCounter(
		"syncs",
		subsystem,
		"full synchronizations by outcome",
		[]string{"outcome"},
	)
	conflicts = metrics.NewCounter(
		"conflicts",
		subsystem,
		"items present on both devices during a sync",
		[]string{"strategy"},
	)
	failures = metrics.NewCounter(
		"failures",
		subsystem,
		"classified failures",
		[]string{"kind"},
	)
	syncDuration = metrics.NewHistogramWithBuckets(
		"sync_duration_seconds",
		subsystem,
		"duration of successful synchronizations",
		[]string{},
		[]float64{0.5, 1, 2, 5, 10, 20, 30},
	).WithLabelValues()
	resolvedItems = metrics.NewHistogramWithBuckets(
		"resolved_items",
		subsystem,
		"number of items after merging",
		[]string{},
		[]float64{0, 10, 50, 100, 500, 1000},
	).WithLabelValues()
)

func reportStatus(prev, cur ConnectionStatus) {
	statusGauge.WithLabelValues(prev.String()).Set(0)
	statusGauge.WithLabelValues(cur.String()).Set(1)
}
