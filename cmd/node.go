package cmd

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/szopper/go-szopper/common/types"
	"github.com/szopper/go-szopper/discovery"
	"github.com/szopper/go-szopper/p2p"
	"github.com/szopper/go-szopper/syncer"
	"github.com/szopper/go-szopper/syncproto"
	"github.com/szopper/go-szopper/transport"
	"github.com/szopper/go-szopper/transport/tcp"
)

var errSync = errors.New("sync failed")

// node bundles the transports and discovery of a running device.
type node struct {
	cli      *cli
	app      *app
	logger   *zap.Logger
	tcp      *tcp.Backend
	host     *p2p.Host
	backends []transport.Backend

	// mu serializes merges into the store.
	mu sync.Mutex
}

// startNode creates the transports. With listen the TCP backend accepts
// sessions. The libp2p host is started unless withP2P is false.
func (c *cli) startNode(ctx context.Context, a *app, listen, withP2P bool) (*node, error) {
	n := &node{
		cli:    c,
		app:    a,
		logger: a.logger,
		tcp:    tcp.New(tcp.WithConfig(c.cfg.TCP), tcp.WithLogger(a.logger.Named("tcp"))),
	}
	if listen {
		if err := n.tcp.Listen(); err != nil {
			return nil, err
		}
	}
	n.backends = append(n.backends, n.tcp)
	if withP2P {
		host, err := p2p.New(ctx, a.logger.Named("p2p"), c.cfg.P2P, p2p.Prologue)
		if err != nil {
			n.tcp.Close()
			return nil, err
		}
		n.host = host
		n.backends = append(n.backends, host)
	}
	return n, nil
}

func (n *node) Close() {
	if err := n.tcp.Close(); err != nil {
		n.logger.Debug("failed to close tcp backend", zap.Error(err))
	}
	if n.host != nil {
		if err := n.host.Stop(); err != nil {
			n.logger.Debug("failed to stop p2p host", zap.Error(err))
		}
	}
}

// aggregator discovers peers through the libp2p host and the static
// addresses of the config.
func (n *node) aggregator() *discovery.Aggregator {
	cfg := n.cli.cfg.Discovery
	var sources []discovery.Source
	if len(cfg.Static) > 0 {
		endpoints := make([]types.PeerEndpoint, 0, len(cfg.Static))
		for _, addr := range cfg.Static {
			endpoints = append(endpoints, tcp.ManualEndpoint(addr))
		}
		sources = append(sources, discovery.NewStatic(endpoints...))
	}
	var detector discovery.ConnectionDetector
	if n.host != nil {
		detector = n.host
		sources = append(sources, n.host.Peers())
		if n.cli.cfg.P2P.MDNS {
			sources = append(sources, n.host.MDNS())
		}
	}
	return discovery.New(detector, sources,
		discovery.WithLogger(n.logger.Named("discovery")),
		discovery.WithConfig(cfg),
	)
}

func (n *node) syncer(backends ...transport.Backend) *syncer.Syncer {
	if len(backends) == 0 {
		backends = n.backends
	}
	logger := n.logger.Named("sync")
	cfg := n.cli.cfg
	builder := syncproto.NewBuilder(n.app.deviceID)
	newSession := func() syncer.Session {
		return transport.New(backends,
			transport.WithLogger(logger),
			transport.WithConfig(cfg.Session),
			transport.WithBuilder(builder),
		)
	}
	return syncer.New(n.app.deviceID, newSession, n.aggregator(),
		syncer.WithLogger(logger),
		syncer.WithConfig(cfg.Sync),
	)
}

// exchange runs a sync over the connected session of s and stores the
// merged list.
func (n *node) exchange(ctx context.Context, s *syncer.Syncer) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	local, err := n.app.store.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	merged, ok := s.PerformSync(ctx, local)
	if !ok {
		return 0, lastError(s)
	}
	if err := n.app.store.ReplaceAll(ctx, merged); err != nil {
		return 0, err
	}
	return len(merged), nil
}

func lastError(s *syncer.Syncer) error {
	if err := s.LastError(); err != nil {
		return err
	}
	return errSync
}
