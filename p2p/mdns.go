package p2p

import (
	"context"
	"fmt"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/peerstore"
	"github.com/libp2p/go-libp2p/p2p/discovery/mdns"
	"go.uber.org/zap"

	"github.com/szopper/go-szopper/common/types"
)

// MDNSSource finds peers advertising the szopper service on the local network.
// Found peers run the app, they are reported with the SERVICE method.
type MDNSSource struct {
	h *Host
}

// MDNS returns a discovery source backed by mDNS service advertisement.
func (fh *Host) MDNS() *MDNSSource {
	return &MDNSSource{h: fh}
}

func (*MDNSSource) Name() string { return "mdns" }

// Run advertises the service and reports peers until ctx is done.
func (m *MDNSSource) Run(ctx context.Context, emit func(types.PeerEndpoint)) error {
	found := make(chan peer.AddrInfo, 16)
	svc := mdns.NewMdnsService(m.h, m.h.cfg.ServiceName, notifee(func(info peer.AddrInfo) {
		select {
		case found <- info:
		case <-ctx.Done():
		}
	}))
	if err := svc.Start(); err != nil {
		return fmt.Errorf("start mdns: %w", err)
	}
	defer func() {
		if err := svc.Close(); err != nil {
			m.h.logger.Debug("failed to close mdns service", zap.Error(err))
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case info := <-found:
			if info.ID == m.h.ID() {
				continue
			}
			m.h.Peerstore().AddAddrs(info.ID, info.Addrs, peerstore.TempAddrTTL)
			m.h.MarkKnown(info.ID)
			discovered.WithLabelValues(types.DiscoveryService.String()).Inc()
			emit(m.h.Endpoint(info.ID, types.DiscoveryService))
		}
	}
}

type notifee func(peer.AddrInfo)

func (n notifee) HandlePeerFound(info peer.AddrInfo) { n(info) }
