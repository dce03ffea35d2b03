package p2p

import (
	"github.com/libp2p/go-libp2p/core/network"

	"github.com/szopper/go-szopper/metrics"
)

const subsystem = "p2p"

var (
	connections = metrics.NewGauge(
		"connections",
		subsystem,
		"number of open libp2p connections",
		[]string{"dir"},
	)
	inboundDropped = metrics.NewCounter(
		"inbound_dropped",
		subsystem,
		"sync streams closed because the accept queue was full",
		[]string{},
	).WithLabelValues()
	discovered = metrics.NewCounter(
		"discovered",
		subsystem,
		"peers reported by discovery sources",
		[]string{"method"},
	)
)

func connectionsMeter() *network.NotifyBundle {
	return &network.NotifyBundle{
		ConnectedF: func(_ network.Network, c network.Conn) {
			connections.WithLabelValues(c.Stat().Direction.String()).Inc()
		},
		DisconnectedF: func(_ network.Network, c network.Conn) {
			connections.WithLabelValues(c.Stat().Direction.String()).Dec()
		},
	}
}
