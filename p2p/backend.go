package p2p

import (
	"context"
	"fmt"
	"strings"

	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/peerstore"
	ma "github.com/multiformats/go-multiaddr"
	"go.uber.org/zap"

	"github.com/szopper/go-szopper/common/types"
	"github.com/szopper/go-szopper/transport"
)

// Tokens used in the handshake of libp2p sessions.
var Tokens = transport.Tokens{
	Server: "SZOPPER_SYNC_P2P_SERVER",
	Client: "SZOPPER_SYNC_P2P_CLIENT",
}

var _ transport.Backend = (*Host)(nil)

func (*Host) Kind() types.TransportKind { return types.TransportLibp2p }

func (*Host) Tokens() transport.Tokens { return Tokens }

// OpenStream opens a sync stream to the peer, or in server role takes
// the next stream opened by a remote peer.
func (fh *Host) OpenStream(ctx context.Context, ep types.PeerEndpoint, server bool) (transport.Stream, error) {
	if server {
		return fh.inbound.Accept(ctx)
	}
	pid, err := peer.Decode(ep.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", transport.ErrNoAddress, ep.ID, err)
	}
	addrs := make([]ma.Multiaddr, 0, len(ep.Addrs))
	for _, raw := range ep.Addrs {
		addr, err := ma.NewMultiaddr(raw)
		if err != nil {
			fh.logger.Debug("skipping invalid address", zap.String("addr", raw), zap.Error(err))
			continue
		}
		addrs = append(addrs, addr)
	}
	if len(addrs) > 0 {
		fh.Peerstore().AddAddrs(pid, addrs, peerstore.TempAddrTTL)
	}
	if err := fh.Connect(ctx, peer.AddrInfo{ID: pid}); err != nil {
		return nil, fmt.Errorf("connect %s: %w", pid, err)
	}
	s, err := fh.NewStream(network.WithNoDial(ctx, "already connected"), pid, ProtocolID)
	if err != nil {
		return nil, fmt.Errorf("open stream to %s: %w", pid, err)
	}
	fh.MarkKnown(pid)
	return s, nil
}

// Endpoint describes pid as seen through this host.
func (fh *Host) Endpoint(pid peer.ID, method types.DiscoveryMethod) types.PeerEndpoint {
	addrs := fh.Peerstore().Addrs(pid)
	raw := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		raw = append(raw, addr.String())
	}
	return types.PeerEndpoint{
		ID:              pid.String(),
		DisplayName:     fh.displayName(pid),
		IsAvailable:     fh.Network().Connectedness(pid) == network.Connected || len(addrs) > 0,
		HasKnownApp:     method == types.DiscoveryService || fh.Known(pid),
		DiscoveryMethod: method,
		Transport:       types.TransportLibp2p,
		Addrs:           raw,
	}
}

// displayName is the device name from the identify agent, or a short peer id.
func (fh *Host) displayName(pid peer.ID) string {
	if v, err := fh.Peerstore().Get(pid, "AgentVersion"); err == nil {
		if agent, ok := v.(string); ok {
			if name, ok := strings.CutPrefix(agent, agentPrefix); ok && name != "" {
				return name
			}
		}
	}
	return pid.ShortString()
}
