package retry

import "github.com/szopper/go-szopper/metrics"

const subsystem = "retry"

var (
	attemptsCount = metrics.NewCounter(
		"attempts",
		subsystem,
		"number of attempts per retried operation",
		[]string{"op"},
	)
	outcomes = metrics.NewCounter(
		"outcomes",
		subsystem,
		"final outcome of retried operations",
		[]string{"op", "outcome"},
	)
)
