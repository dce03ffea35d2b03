// Package tcp is a transport backend over plain TCP connections,
// used on local networks and for manually entered addresses.
package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"slices"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/szopper/go-szopper/common/types"
	"github.com/szopper/go-szopper/transport"
)

// DefaultPort is used when an address has no port.
const DefaultPort = 8888

// Tokens used in the handshake of TCP sessions.
var Tokens = transport.Tokens{
	Server: "SZOPPER_SYNC_SERVER",
	Client: "SZOPPER_SYNC_CLIENT",
}

// Config of the TCP backend.
type Config struct {
	Listen      string        `mapstructure:"listen"`
	DialTimeout time.Duration `mapstructure:"dial-timeout"`
	AcceptQueue int           `mapstructure:"accept-queue"`
}

// DefaultConfig listens on all interfaces at DefaultPort.
func DefaultConfig() Config {
	return Config{
		Listen:      net.JoinHostPort("0.0.0.0", strconv.Itoa(DefaultPort)),
		DialTimeout: 10 * time.Second,
		AcceptQueue: 8,
	}
}

// Opt configures a Backend.
type Opt func(*Backend)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Opt {
	return func(b *Backend) {
		b.logger = logger
	}
}

// WithConfig sets the Config.
func WithConfig(cfg Config) Opt {
	return func(b *Backend) {
		b.cfg = cfg
	}
}

// Backend dials peers as a client and accepts them as a server.
type Backend struct {
	logger *zap.Logger
	cfg    Config
	dialer net.Dialer

	mu       sync.Mutex
	listener net.Listener
	inbound  *transport.Inbound
	done     chan struct{}
}

var _ transport.Backend = (*Backend)(nil)

// New creates a Backend. Call Listen to take the server role.
func New(opts ...Opt) *Backend {
	b := &Backend{
		logger: zap.NewNop(),
		cfg:    DefaultConfig(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.dialer.Timeout = b.cfg.DialTimeout
	return b
}

func (*Backend) Kind() types.TransportKind { return types.TransportTCP }

func (*Backend) Tokens() transport.Tokens { return Tokens }

// Listen starts accepting connections on Config.Listen.
func (b *Backend) Listen() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listener != nil {
		return errors.New("already listening")
	}
	ln, err := net.Listen("tcp", b.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", b.cfg.Listen, err)
	}
	b.listener = ln
	b.inbound = transport.NewInbound(b.cfg.AcceptQueue)
	b.done = make(chan struct{})
	go b.acceptLoop(ln, b.inbound, b.done)
	b.logger.Info("listening for sync connections", zap.Stringer("address", ln.Addr()))
	return nil
}

// Addr is the listening address, nil before Listen.
func (b *Backend) Addr() net.Addr {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listener == nil {
		return nil
	}
	return b.listener.Addr()
}

func (b *Backend) acceptLoop(ln net.Listener, inbound *transport.Inbound, done chan struct{}) {
	defer close(done)
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			b.logger.Warn("accept failed", zap.Error(err))
			continue
		}
		if !inbound.Offer(conn) {
			b.logger.Debug("dropped connection, accept queue is full",
				zap.Stringer("remote", conn.RemoteAddr()),
			)
			continue
		}
		b.logger.Debug("accepted connection", zap.Stringer("remote", conn.RemoteAddr()))
	}
}

// OpenStream dials the first address of peer, or in server role
// takes the next accepted connection.
func (b *Backend) OpenStream(ctx context.Context, peer types.PeerEndpoint, server bool) (transport.Stream, error) {
	if server {
		b.mu.Lock()
		inbound := b.inbound
		b.mu.Unlock()
		if inbound == nil {
			return nil, errors.New("tcp backend is not listening")
		}
		return inbound.Accept(ctx)
	}
	addr, err := Address(peer)
	if err != nil {
		return nil, err
	}
	conn, err := b.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return conn, nil
}

// Close stops listening and closes queued connections.
func (b *Backend) Close() error {
	b.mu.Lock()
	ln, inbound, done := b.listener, b.inbound, b.done
	b.listener, b.inbound = nil, nil
	b.mu.Unlock()
	if ln == nil {
		return nil
	}
	err := ln.Close()
	<-done
	inbound.Close()
	return err
}

// Address returns the host:port to dial for peer.
func Address(peer types.PeerEndpoint) (string, error) {
	for _, addr := range append(slices.Clone(peer.Addrs), peer.ID) {
		if addr == "" {
			continue
		}
		if _, _, err := net.SplitHostPort(addr); err == nil {
			return addr, nil
		}
		if ip := net.ParseIP(addr); ip != nil {
			return net.JoinHostPort(addr, strconv.Itoa(DefaultPort)), nil
		}
	}
	return "", fmt.Errorf("%w: %s", transport.ErrNoAddress, peer.ID)
}

// ManualEndpoint creates an endpoint for an address typed in by the user.
// A missing port defaults to DefaultPort.
func ManualEndpoint(addr string) types.PeerEndpoint {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, strconv.Itoa(DefaultPort))
	}
	return types.PeerEndpoint{
		ID:              addr,
		DisplayName:     addr,
		IsAvailable:     true,
		HasKnownApp:     false,
		DiscoveryMethod: types.DiscoveryManual,
		Transport:       types.TransportTCP,
		Addrs:           []string{addr},
	}
}
