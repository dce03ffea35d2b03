package p2p

import (
	"context"

	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"

	"github.com/szopper/go-szopper/common/types"
)

// PeerSource reports peers the host is connected to or has addresses for,
// whether or not they run szopper.
type PeerSource struct {
	h *Host
}

// Peers returns a discovery source over the host's peer book and connections.
func (fh *Host) Peers() *PeerSource {
	return &PeerSource{h: fh}
}

func (*PeerSource) Name() string { return "peers" }

// Run reports already known peers, then every new connection until ctx is done.
func (p *PeerSource) Run(ctx context.Context, emit func(types.PeerEndpoint)) error {
	connected := make(chan peer.ID, 16)
	bundle := &network.NotifyBundle{
		ConnectedF: func(_ network.Network, c network.Conn) {
			select {
			case connected <- c.RemotePeer():
			case <-ctx.Done():
			default:
			}
		},
	}
	p.h.Network().Notify(bundle)
	defer p.h.Network().StopNotify(bundle)

	seen := map[peer.ID]struct{}{p.h.ID(): {}}
	for _, pid := range append(p.h.Network().Peers(), p.h.Peerstore().PeersWithAddrs()...) {
		if _, ok := seen[pid]; ok {
			continue
		}
		seen[pid] = struct{}{}
		p.report(pid, emit)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case pid := <-connected:
			p.report(pid, emit)
		}
	}
}

func (p *PeerSource) report(pid peer.ID, emit func(types.PeerEndpoint)) {
	discovered.WithLabelValues(types.DiscoveryPeer.String()).Inc()
	emit(p.h.Endpoint(pid, types.DiscoveryPeer))
}

// DetectExistingConnection returns a connected peer known to run szopper, if any.
func (fh *Host) DetectExistingConnection(_ context.Context) (types.PeerEndpoint, bool, error) {
	for _, pid := range fh.Network().Peers() {
		if fh.Network().Connectedness(pid) != network.Connected || !fh.Known(pid) {
			continue
		}
		ep := fh.Endpoint(pid, types.DiscoveryPeer)
		ep.HasKnownApp = true
		ep.IsAvailable = true
		return ep, true, nil
	}
	return types.PeerEndpoint{}, false, nil
}
