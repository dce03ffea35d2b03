// Package p2p runs the libp2p host used to find nearby szopper devices
// and to carry sync sessions between them.
package p2p

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	lp2plog "github.com/ipfs/go-log/v2"
	"github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/protocol"
	"github.com/libp2p/go-libp2p/core/transport"
	"github.com/libp2p/go-libp2p/p2p/host/peerstore/pstoremem"
	"github.com/libp2p/go-libp2p/p2p/muxer/yamux"
	"github.com/libp2p/go-libp2p/p2p/net/connmgr"
	tptu "github.com/libp2p/go-libp2p/p2p/net/upgrader"
	"github.com/libp2p/go-libp2p/p2p/security/noise"
	"github.com/libp2p/go-libp2p/p2p/transport/tcp"
	"go.uber.org/zap"

	synctransport "github.com/szopper/go-szopper/transport"
)

const (
	// ProtocolID of sync streams.
	ProtocolID = protocol.ID("/szopper/sync/1.0.0")
	// ServiceName advertised over mDNS.
	ServiceName = "_szopper._tcp"

	agentPrefix = "szopper/"
)

// Prologue is mixed into the noise handshake, hosts with a different prologue can't connect.
var Prologue = []byte("szopper-sync-1.0")

// DefaultConfig config.
func DefaultConfig() Config {
	return Config{
		Listen:             []string{"/ip4/0.0.0.0/tcp/7513"},
		LogLevel:           "warn",
		LowPeers:           8,
		HighPeers:          32,
		GracePeersShutdown: 30 * time.Second,
		AcceptQueue:        8,
		KnownPeers:         256,
		ServiceName:        ServiceName,
		MDNS:               true,
	}
}

// Config for the p2p layer.
type Config struct {
	DataDir            string        `mapstructure:"data-dir"`
	LogLevel           string        `mapstructure:"log-level"`
	Listen             []string      `mapstructure:"listen"`
	DeviceName         string        `mapstructure:"device-name"`
	LowPeers           int           `mapstructure:"low-peers"`
	HighPeers          int           `mapstructure:"high-peers"`
	GracePeersShutdown time.Duration `mapstructure:"grace-peers-shutdown"`
	AcceptQueue        int           `mapstructure:"accept-queue"`
	// KnownPeers bounds the cache of peers that spoke the sync protocol.
	KnownPeers  int    `mapstructure:"known-peers"`
	ServiceName string `mapstructure:"service-name"`
	MDNS        bool   `mapstructure:"mdns"`
}

// New initializes a libp2p host configured for szopper.
func New(_ context.Context, logger *zap.Logger, cfg Config, prologue []byte, opts ...Opt) (*Host, error) {
	logger.Info("starting libp2p host", zap.Strings("listen", cfg.Listen), zap.String("data_dir", cfg.DataDir))
	key, err := EnsureIdentity(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	lp2plog.SetPrimaryCore(logger.Core())
	if lvl, err := lp2plog.LevelFromString(cfg.LogLevel); err == nil {
		lp2plog.SetAllLoggers(lvl)
	} else {
		logger.Warn("invalid libp2p log level", zap.String("level", cfg.LogLevel), zap.Error(err))
	}
	cm, err := connmgr.NewConnManager(cfg.LowPeers, cfg.HighPeers, connmgr.WithGracePeriod(cfg.GracePeersShutdown))
	if err != nil {
		return nil, fmt.Errorf("p2p create conn mgr: %w", err)
	}
	streamer := *yamux.DefaultTransport
	ps, err := pstoremem.NewPeerstore()
	if err != nil {
		return nil, fmt.Errorf("can't create peer store: %w", err)
	}
	lopts := []libp2p.Option{
		libp2p.Identity(key),
		libp2p.ListenAddrStrings(cfg.Listen...),
		libp2p.UserAgent(agentPrefix + cfg.DeviceName),
		libp2p.Transport(func(upgrader transport.Upgrader, rcmgr network.ResourceManager) (transport.Transport, error) {
			return tcp.NewTCPTransport(upgrader, rcmgr)
		}),
		libp2p.Security(noise.ID, func(id protocol.ID, privkey crypto.PrivKey, muxers []tptu.StreamMuxer) (*noise.SessionTransport, error) {
			tp, err := noise.New(id, privkey, muxers)
			if err != nil {
				return nil, err
			}
			return tp.WithSessionOptions(noise.Prologue(prologue))
		}),
		libp2p.Muxer(yamux.ID, &streamer),
		libp2p.ConnectionManager(cm),
		libp2p.Peerstore(ps),
		libp2p.DisableRelay(),
	}
	h, err := libp2p.New(lopts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize libp2p host: %w", err)
	}
	logger.Info("local node identity", zap.Stringer("identity", h.ID()))
	opts = append(opts, WithConfig(cfg), WithLog(logger))
	return Upgrade(h, opts...)
}

// Opt is for configuring Host.
type Opt func(fh *Host)

// WithLog configures logger for Host.
func WithLog(logger *zap.Logger) Opt {
	return func(fh *Host) {
		fh.logger = logger
	}
}

// WithConfig sets Config for Host.
func WithConfig(cfg Config) Opt {
	return func(fh *Host) {
		fh.cfg = cfg
	}
}

// Host wraps a libp2p host with the sync protocol handler, a sync backend
// and discovery sources.
type Host struct {
	host.Host

	cfg     Config
	logger  *zap.Logger
	inbound *synctransport.Inbound
	// peers that advertised the service or opened a sync stream
	known *lru.Cache[peer.ID, struct{}]
	conns *network.NotifyBundle
}

// Upgrade creates Host instance from host.Host.
func Upgrade(h host.Host, opts ...Opt) (*Host, error) {
	fh := &Host{
		Host:   h,
		cfg:    DefaultConfig(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(fh)
	}
	known, err := lru.New[peer.ID, struct{}](max(fh.cfg.KnownPeers, 1))
	if err != nil {
		return nil, fmt.Errorf("create known peers cache: %w", err)
	}
	fh.known = known
	fh.inbound = synctransport.NewInbound(fh.cfg.AcceptQueue)
	fh.conns = connectionsMeter()
	h.Network().Notify(fh.conns)
	h.SetStreamHandler(ProtocolID, fh.handleStream)
	return fh, nil
}

func (fh *Host) handleStream(s network.Stream) {
	remote := s.Conn().RemotePeer()
	fh.MarkKnown(remote)
	if !fh.inbound.Offer(s) {
		inboundDropped.Inc()
		fh.logger.Debug("dropped sync stream, accept queue is full", zap.Stringer("peer", remote))
		return
	}
	fh.logger.Debug("accepted sync stream", zap.Stringer("peer", remote))
}

// MarkKnown records that pid runs szopper.
func (fh *Host) MarkKnown(pid peer.ID) {
	fh.known.Add(pid, struct{}{})
}

// Known reports whether pid is known to run szopper.
func (fh *Host) Known(pid peer.ID) bool {
	if fh.known.Contains(pid) {
		return true
	}
	protos, err := fh.Peerstore().SupportsProtocols(pid, ProtocolID)
	return err == nil && len(protos) > 0
}

// Stop background workers and release external resources.
func (fh *Host) Stop() error {
	fh.RemoveStreamHandler(ProtocolID)
	fh.Network().StopNotify(fh.conns)
	fh.inbound.Close()
	if err := fh.Host.Close(); err != nil {
		return fmt.Errorf("failed to close libp2p host: %w", err)
	}
	return nil
}
