package discovery

import "github.com/szopper/go-szopper/metrics"

const subsystem = "discovery"

var (
	passes = metrics.NewCounter(
		"passes",
		subsystem,
		"number of discovery passes started",
		[]string{},
	).WithLabelValues()
	existing = metrics.NewCounter(
		"existing_connections",
		subsystem,
		"passes answered by an existing connection",
		[]string{},
	).WithLabelValues()
	sourceErrors = metrics.NewCounter(
		"source_errors",
		subsystem,
		"discovery sources that stopped with an error",
		[]string{"source"},
	)
	peers = metrics.NewGauge(
		"peers",
		subsystem,
		"peers in the latest discovery snapshot",
		[]string{},
	).WithLabelValues()
)
