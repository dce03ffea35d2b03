// Package transport implements a sync session over a line oriented stream:
// connection setup, the greeting token handshake and message framing.
package transport

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/szopper/go-szopper/common/types"
	"github.com/szopper/go-szopper/syncproto"
)

var (
	// ErrHandshake is wrapped by every handshake failure.
	ErrHandshake = errors.New("handshake failed")
	// ErrProtocol means the peer sent a frame that is not a valid message.
	ErrProtocol = errors.New("protocol violation")
	// ErrUnknownTransport means no backend is registered for the peer's transport.
	ErrUnknownTransport = errors.New("unknown transport")
	// ErrNoAddress means the peer has no address a backend could dial.
	ErrNoAddress = errors.New("peer has no address")
	// ErrNotEstablished is returned by I/O on a session without a completed handshake.
	ErrNotEstablished = errors.New("session not established")
	// ErrFrameTooLarge means a received line exceeded Config.MaxFrameSize.
	ErrFrameTooLarge = errors.New("frame too large")
	// ErrInvalidFrame means an outgoing frame contains the line delimiter.
	ErrInvalidFrame = errors.New("frame contains line delimiter")
)

// State of a Session.
type State uint8

const (
	Idle State = iota
	Connecting
	Handshaking
	Established
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Handshaking:
		return "handshaking"
	case Established:
		return "established"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Tokens are the fixed greetings of the handshake.
type Tokens struct {
	Server string
	Client string
}

// Config for sessions.
type Config struct {
	HandshakeTimeout time.Duration `mapstructure:"handshake-timeout"`
	ValidateTimeout  time.Duration `mapstructure:"validate-timeout"`
	WriteTimeout     time.Duration `mapstructure:"write-timeout"`
	MaxFrameSize     int           `mapstructure:"max-frame-size"`
}

// DefaultConfig for sessions.
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout: 10 * time.Second,
		ValidateTimeout:  5 * time.Second,
		WriteTimeout:     10 * time.Second,
		MaxFrameSize:     4 << 20,
	}
}

// Opt configures a Session.
type Opt func(*Session)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Opt {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithConfig sets the Config.
func WithConfig(cfg Config) Opt {
	return func(s *Session) {
		s.cfg = cfg
	}
}

// WithBuilder sets the builder used for liveness messages.
func WithBuilder(b *syncproto.Builder) Opt {
	return func(s *Session) {
		s.builder = b
	}
}

// Session is a single connection attempt to a peer. It moves through
// Idle, Connecting, Handshaking and Established, and ends Closed.
// A closed session can't be reused.
type Session struct {
	logger   *zap.Logger
	cfg      Config
	builder  *syncproto.Builder
	backends map[types.TransportKind]Backend

	mu     sync.Mutex
	state  State
	peer   types.PeerEndpoint
	stream Stream
	err    error

	readMu  sync.Mutex
	reader  *bufio.Reader
	pending []byte

	writeMu sync.Mutex
}

// New creates an Idle session that can reach peers through backends.
func New(backends []Backend, opts ...Opt) *Session {
	s := &Session{
		logger:   zap.NewNop(),
		cfg:      DefaultConfig(),
		backends: make(map[types.TransportKind]Backend, len(backends)),
	}
	for _, b := range backends {
		s.backends[b.Kind()] = b
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.builder == nil {
		s.builder = syncproto.NewBuilder("")
	}
	return s
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Peer returns the peer passed to Connect.
func (s *Session) Peer() types.PeerEndpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peer
}

// Err returns the most recent failure, nil if nothing failed.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Session) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *Session) setState(state State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Closed {
		return false
	}
	s.state = state
	return true
}

// Connect opens a stream to peer and performs the handshake in the given role.
// It returns true only when the session is Established. On failure the stream
// is released and the session is Closed.
func (s *Session) Connect(ctx context.Context, peer types.PeerEndpoint, server bool) bool {
	s.mu.Lock()
	if s.state != Idle {
		state := s.state
		s.err = fmt.Errorf("connect in state %s", state)
		s.mu.Unlock()
		return false
	}
	s.state = Connecting
	s.peer = peer
	s.mu.Unlock()

	logger := s.logger.With(zap.Object("peer", peer), zap.Bool("server", server))
	backend, ok := s.backends[peer.Transport]
	if !ok {
		s.abort(fmt.Errorf("%w: %q", ErrUnknownTransport, peer.Transport))
		logger.Debug("no backend for peer")
		return false
	}
	stream, err := backend.OpenStream(ctx, peer, server)
	if err != nil {
		s.abort(fmt.Errorf("open stream: %w", err))
		logger.Debug("failed to open stream", zap.Error(err))
		return false
	}

	s.mu.Lock()
	if s.state == Closed {
		// closed concurrently while dialing
		s.mu.Unlock()
		_ = stream.Close()
		s.fail(fmt.Errorf("open stream: %w", ErrNotEstablished))
		return false
	}
	s.stream = stream
	s.state = Handshaking
	s.mu.Unlock()

	s.readMu.Lock()
	s.reader = bufio.NewReader(stream)
	s.readMu.Unlock()

	if err := s.handshake(ctx, backend.Tokens(), server); err != nil {
		s.abort(err)
		logger.Debug("handshake failed", zap.Error(err))
		return false
	}
	if !s.setState(Established) {
		s.fail(fmt.Errorf("%w: closed during handshake", ErrHandshake))
		return false
	}
	logger.Debug("session established")
	return true
}

func (s *Session) handshake(ctx context.Context, tokens Tokens, server bool) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.HandshakeTimeout)
	defer cancel()
	if server {
		if err := s.writeLine(ctx, tokens.Server); err != nil {
			return fmt.Errorf("%w: send greeting: %w", ErrHandshake, err)
		}
		return s.expect(ctx, tokens.Client)
	}
	if err := s.expect(ctx, tokens.Server); err != nil {
		return err
	}
	if err := s.writeLine(ctx, tokens.Client); err != nil {
		return fmt.Errorf("%w: send reply: %w", ErrHandshake, err)
	}
	return nil
}

func (s *Session) expect(ctx context.Context, token string) error {
	line, err := s.readLine(ctx)
	if err != nil {
		return fmt.Errorf("%w: await %s: %w", ErrHandshake, token, err)
	}
	if line != token {
		return fmt.Errorf("%w: expected %q, received %q", ErrHandshake, token, truncate(line, 64))
	}
	return nil
}

func (s *Session) established() (Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Established {
		return nil, fmt.Errorf("%w: %s", ErrNotEstablished, s.state)
	}
	return s.stream, nil
}

// Send writes one frame. It returns false if the frame is invalid,
// the session isn't Established or the write fails.
func (s *Session) Send(ctx context.Context, frame string) bool {
	if _, err := s.established(); err != nil {
		s.fail(err)
		return false
	}
	if err := s.writeLine(ctx, frame); err != nil {
		s.fail(fmt.Errorf("send: %w", err))
		return false
	}
	return true
}

// Receive reads one frame. A partially received frame is kept across calls,
// so a receive interrupted by ctx can be resumed.
func (s *Session) Receive(ctx context.Context) (string, bool) {
	if _, err := s.established(); err != nil {
		s.fail(err)
		return "", false
	}
	line, err := s.readLine(ctx)
	if err != nil {
		s.fail(fmt.Errorf("receive: %w", err))
		return "", false
	}
	return line, true
}

// SendMessage encodes and sends msg.
func (s *Session) SendMessage(ctx context.Context, msg *syncproto.Message) bool {
	buf, err := syncproto.Encode(msg)
	if err != nil {
		s.fail(err)
		return false
	}
	return s.Send(ctx, string(buf))
}

// ReceiveMessage receives the next frame and decodes it.
// Frames that don't decode into a valid message are failures.
func (s *Session) ReceiveMessage(ctx context.Context) (*syncproto.Message, bool) {
	line, ok := s.Receive(ctx)
	if !ok {
		return nil, false
	}
	msg, err := syncproto.Decode([]byte(line))
	if err != nil {
		s.fail(err)
		return nil, false
	}
	if !syncproto.ValidateMessage(msg) {
		s.fail(fmt.Errorf("%w: payload doesn't match %s", ErrProtocol, msg.Type))
		return nil, false
	}
	return msg, true
}

// Validate checks that the peer speaks the protocol: it sends a PING and waits
// for a PONG within Config.ValidateTimeout. PINGs from the peer are answered
// while waiting, so both sides may validate at the same time.
func (s *Session) Validate(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ValidateTimeout)
	defer cancel()
	if !s.SendMessage(ctx, s.builder.Ping()) {
		return false
	}
	for {
		msg, ok := s.ReceiveMessage(ctx)
		if !ok {
			return false
		}
		switch msg.Type {
		case syncproto.TypePong:
			return true
		case syncproto.TypePing:
			if !s.SendMessage(ctx, s.builder.Pong()) {
				return false
			}
		case syncproto.TypeDisconnect:
			s.fail(fmt.Errorf("%w: peer disconnected during validation", ErrProtocol))
			return false
		default:
			s.logger.Debug("ignoring message while validating", zap.Stringer("msg", msg))
		}
	}
}

// Close releases the stream. It is safe to call in any state and more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.state == Closed {
		s.mu.Unlock()
		return nil
	}
	s.state = Closed
	stream := s.stream
	s.mu.Unlock()
	if stream == nil {
		return nil
	}
	if err := stream.Close(); err != nil {
		return fmt.Errorf("close stream: %w", err)
	}
	return nil
}

func (s *Session) abort(err error) {
	s.fail(err)
	if cerr := s.Close(); cerr != nil {
		s.logger.Debug("failed to close stream", zap.Error(cerr))
	}
}

func (s *Session) currentStream() Stream {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream
}

func (s *Session) writeLine(ctx context.Context, frame string) error {
	if strings.ContainsRune(frame, '\n') {
		return ErrInvalidFrame
	}
	stream := s.currentStream()
	if stream == nil {
		return ErrNotEstablished
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	release := bindContext(ctx, s.cfg.WriteTimeout, stream.SetWriteDeadline)
	defer release()
	buf := make([]byte, 0, len(frame)+1)
	buf = append(buf, frame...)
	buf = append(buf, '\n')
	if _, err := stream.Write(buf); err != nil {
		return ctxErr(ctx, err)
	}
	return nil
}

func (s *Session) readLine(ctx context.Context) (string, error) {
	stream := s.currentStream()
	if stream == nil {
		return "", ErrNotEstablished
	}
	s.readMu.Lock()
	defer s.readMu.Unlock()
	release := bindContext(ctx, 0, stream.SetReadDeadline)
	defer release()
	for {
		chunk, err := s.reader.ReadSlice('\n')
		s.pending = append(s.pending, chunk...)
		if len(s.pending) > s.cfg.MaxFrameSize+1 {
			s.pending = nil
			return "", fmt.Errorf("%w: limit %d bytes", ErrFrameTooLarge, s.cfg.MaxFrameSize)
		}
		switch {
		case err == nil:
			line := bytes.TrimSuffix(s.pending, []byte{'\n'})
			line = bytes.TrimSuffix(line, []byte{'\r'})
			s.pending = s.pending[:0]
			return string(line), nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		default:
			return "", ctxErr(ctx, err)
		}
	}
}

var aLongTimeAgo = time.Unix(1, 0)

// bindContext applies ctx deadline, or now+timeout when it is earlier, to the
// stream and interrupts blocked I/O when ctx is canceled. The returned func
// must be called once the I/O completes.
func bindContext(ctx context.Context, timeout time.Duration, set func(time.Time) error) func() {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	_ = set(deadline)
	fired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		defer close(fired)
		_ = set(aLongTimeAgo)
	})
	return func() {
		if !stop() {
			<-fired
		}
		_ = set(time.Time{})
	}
}

// ctxErr attributes err to ctx when ctx caused it.
func ctxErr(ctx context.Context, err error) error {
	if cerr := ctx.Err(); cerr != nil {
		return fmt.Errorf("%w: %w", cerr, err)
	}
	// the stream deadline may fire before the context timer does
	if d, ok := ctx.Deadline(); ok && errors.Is(err, os.ErrDeadlineExceeded) && !time.Now().Before(d) {
		return fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
	}
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
