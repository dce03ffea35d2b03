// Package syncer drives a sync session with one peer: it connects, exchanges
// item lists and merges them, reporting progress as a connection status.
package syncer

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/szopper/go-szopper/common/types"
	"github.com/szopper/go-szopper/conflict"
	"github.com/szopper/go-szopper/log"
	"github.com/szopper/go-szopper/retry"
	"github.com/szopper/go-szopper/syncerr"
	"github.com/szopper/go-szopper/syncproto"
)

var (
	// ErrNotConnected is returned for exchanges attempted without an established session.
	ErrNotConnected = errors.New("not connected to a peer")
	// ErrPeerDisconnected is returned when the peer ends the session during an exchange.
	ErrPeerDisconnected = errors.New("peer disconnected")

	errConnect  = errors.New("connection failed")
	errValidate = errors.New("connection validation failed")
	errSend     = errors.New("send failed")
	errReceive  = errors.New("receive failed")
)

// Config for the Syncer.
type Config struct {
	ConnectRetry  retry.Config `mapstructure:"connect-retry"`
	TransferRetry retry.Config `mapstructure:"transfer-retry"`
	// SyncTimeout bounds a whole PerformSync.
	SyncTimeout time.Duration `mapstructure:"sync-timeout"`
	// RemoteProcessingDelay is the pause between the sync request and the item list.
	RemoteProcessingDelay time.Duration     `mapstructure:"remote-processing-delay"`
	Strategy              conflict.Strategy `mapstructure:"strategy"`
}

// DefaultConfig returns the default config.
func DefaultConfig() Config {
	return Config{
		ConnectRetry:          retry.DefaultConfig(),
		TransferRetry:         retry.DefaultConfig().WithAttempts(2),
		SyncTimeout:           30 * time.Second,
		RemoteProcessingDelay: time.Second,
		Strategy:              conflict.LastUpdatedWins,
	}
}

// Opt for configuring Syncer.
type Opt func(*Syncer)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Opt {
	return func(s *Syncer) {
		s.logger = logger
	}
}

// WithConfig sets the config.
func WithConfig(cfg Config) Opt {
	return func(s *Syncer) {
		s.cfg = cfg
	}
}

// WithClock sets the clock used for pauses, backoff and timestamps.
func WithClock(clock clockwork.Clock) Opt {
	return func(s *Syncer) {
		s.clock = clock
	}
}

// WithStrategy overrides the conflict strategy from the config.
func WithStrategy(strategy conflict.Strategy) Opt {
	return func(s *Syncer) {
		s.strategy = &strategy
	}
}

// Syncer synchronizes the local item list with one peer at a time.
// All methods are safe for concurrent use, exchanges with the peer are serialized.
type Syncer struct {
	logger     *zap.Logger
	cfg        Config
	clock      clockwork.Clock
	strategy   *conflict.Strategy
	builder    *syncproto.Builder
	retry      *retry.Executor
	newSession func() Session
	discoverer Discoverer

	// exchange is held for the duration of an exchange with the peer.
	exchange sync.Mutex

	mu     sync.Mutex
	status statusFeed
	// gen is bumped every time the session is closed. Operations started on
	// an older generation don't change status or lastErr.
	gen        uint64
	cancel     context.CancelFunc
	session    Session
	peer       types.PeerEndpoint
	sessionID  string
	lastErr    *syncerr.Error
	attemptErr error
	lastSync   int64
}

// New creates a Syncer for the local device. newSession is called for every
// connection attempt and must return a fresh, idle session.
func New(deviceID string, newSession func() Session, discoverer Discoverer, opts ...Opt) *Syncer {
	s := &Syncer{
		logger:     zap.NewNop(),
		cfg:        DefaultConfig(),
		clock:      clockwork.NewRealClock(),
		newSession: newSession,
		discoverer: discoverer,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.strategy == nil {
		s.strategy = &s.cfg.Strategy
	}
	s.builder = syncproto.NewBuilder(deviceID, syncproto.WithClock(s.clock))
	s.retry = retry.New(
		retry.WithLogger(s.logger),
		retry.WithClock(s.clock),
		retry.WithErrorHook(s.recordAttempt),
	)
	reportStatus(Disconnected, Disconnected)
	return s
}

// Status returns the current connection status.
func (s *Syncer) Status() ConnectionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status.current
}

// Subscribe returns a channel delivering the current status and every later
// change. A slow reader only observes the latest status. The returned func
// releases the subscription and closes the channel.
func (s *Syncer) Subscribe() (<-chan ConnectionStatus, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ch := s.status.subscribe()
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.status.unsubscribe(id)
		})
	}
}

// LastError is the classification of the most recent failure, nil if none.
func (s *Syncer) LastError() *syncerr.Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Peer is the peer of the current session.
func (s *Syncer) Peer() (types.PeerEndpoint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peer, s.session != nil
}

func (s *Syncer) setStatus(status ConnectionStatus) {
	s.mu.Lock()
	prev := s.status.current
	changed := s.status.set(status)
	s.mu.Unlock()
	s.statusChanged(prev, status, changed)
}

// update sets the status if the session of generation gen is still current.
func (s *Syncer) update(gen uint64, status ConnectionStatus) bool {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return false
	}
	prev := s.status.current
	changed := s.status.set(status)
	s.mu.Unlock()
	s.statusChanged(prev, status, changed)
	return true
}

func (s *Syncer) statusChanged(prev, status ConnectionStatus, changed bool) {
	if !changed {
		return
	}
	reportStatus(prev, status)
	s.logger.Debug("connection status changed",
		zap.Stringer("from", prev),
		zap.Stringer("to", status),
	)
}

func (s *Syncer) swapStatus(from, to ConnectionStatus) {
	s.mu.Lock()
	changed := s.status.current == from && s.status.set(to)
	s.mu.Unlock()
	if changed {
		reportStatus(from, to)
	}
}

func (s *Syncer) recordAttempt(_ string, _ int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attemptErr = err
}

func (s *Syncer) resetAttempt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attemptErr = nil
}

// failure returns the error of the last failed attempt, falling back to
// ctx error and then to fallback.
func (s *Syncer) failure(ctx context.Context, fallback error) error {
	s.mu.Lock()
	err := s.attemptErr
	s.attemptErr = nil
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fallback
}

func (s *Syncer) fail(ctx context.Context, gen uint64, serr *syncerr.Error) {
	failures.WithLabelValues(serr.Kind.String()).Inc()
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		s.logger.Debug("session closed during operation", log.ZContext(ctx), zap.Object("error", serr))
		return
	}
	s.lastErr = serr
	prev := s.status.current
	changed := s.status.set(Error)
	s.mu.Unlock()
	s.statusChanged(prev, Error, changed)
	s.logger.Warn("sync failure", log.ZContext(ctx), zap.Object("error", serr))
}

// DiscoverPeers starts a discovery pass, see discovery.Aggregator.Discover.
// The status is Discovering until the pass ends.
func (s *Syncer) DiscoverPeers(ctx context.Context) <-chan []types.PeerEndpoint {
	s.mu.Lock()
	busy := s.session != nil
	s.mu.Unlock()
	if !busy {
		s.setStatus(Discovering)
	}
	in := s.discoverer.Discover(ctx)
	out := make(chan []types.PeerEndpoint, 1)
	go func() {
		defer close(out)
		defer s.swapStatus(Discovering, Disconnected)
		for snapshot := range in {
			select {
			case out <- snapshot:
			case <-ctx.Done():
			}
		}
	}()
	return out
}

// Connect establishes and validates a session with peer, replacing the
// current one. server selects the handshake role. Failed attempts are
// retried according to Config.ConnectRetry.
// A Disconnect while connecting interrupts the attempts, Connect then
// returns false and leaves the status Disconnected.
func (s *Syncer) Connect(ctx context.Context, peer types.PeerEndpoint, server bool) bool {
	s.exchange.Lock()
	defer s.exchange.Unlock()

	ctx, cancel := context.WithCancel(log.WithNewSessionID(ctx))
	defer cancel()
	s.mu.Lock()
	prev := s.detach()
	gen := s.gen
	s.cancel = cancel
	s.mu.Unlock()
	s.closeQuietly(prev)

	logger := s.logger.With(log.ZContext(ctx), zap.Object("peer", peer), zap.Bool("server", server))
	logger.Info("connecting to peer")
	s.update(gen, Connecting)
	s.resetAttempt()

	sess, ok := retry.Execute(ctx, s.retry, "connect", s.cfg.ConnectRetry,
		func(ctx context.Context) (Session, bool, error) {
			sess := s.newSession()
			if !sess.Connect(ctx, peer, server) {
				return nil, false, sessionErr(sess, errConnect)
			}
			if !sess.Validate(ctx) {
				err := sessionErr(sess, errValidate)
				if cerr := sess.Close(); cerr != nil {
					logger.Debug("failed to close session", zap.Error(cerr))
				}
				return nil, false, err
			}
			return sess, true, nil
		})
	if !ok {
		connects.WithLabelValues("failure").Inc()
		s.fail(ctx, gen, syncerr.ClassifyConnection("connect", s.failure(ctx, errConnect)))
		return false
	}
	id, _ := log.SessionID(ctx)
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		logger.Info("disconnected while connecting")
		s.closeQuietly(sess)
		return false
	}
	s.cancel = nil
	s.session = sess
	s.peer = peer
	s.sessionID = id
	from := s.status.current
	changed := s.status.set(Connected)
	s.mu.Unlock()
	s.statusChanged(from, Connected, changed)
	connects.WithLabelValues("success").Inc()
	logger.Info("connected to peer")
	return true
}

// active returns the current session and its generation, with ctx carrying
// the session id.
func (s *Syncer) active(ctx context.Context) (Session, context.Context, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, ctx, s.gen, false
	}
	switch s.status.current {
	case Connected, Syncing:
	default:
		return nil, ctx, s.gen, false
	}
	return s.session, log.WithSessionID(ctx, s.sessionID), s.gen, true
}

// SendItems sends the item list to the peer.
func (s *Syncer) SendItems(ctx context.Context, items []types.Item) bool {
	s.exchange.Lock()
	defer s.exchange.Unlock()
	sess, ctx, gen, ok := s.active(ctx)
	if !ok {
		s.fail(ctx, gen, syncerr.New(syncerr.ConnectionFailed, "send_items", ErrNotConnected))
		return false
	}
	s.update(gen, Syncing)
	if err := s.sendItems(ctx, sess, items); err != nil {
		s.fail(ctx, gen, syncerr.ClassifyTransfer("send_items", err))
		return false
	}
	return s.update(gen, Connected)
}

// ReceiveItems waits for the item list of the peer. It returns an empty list
// when the attempts are exhausted, the session stays Connected.
func (s *Syncer) ReceiveItems(ctx context.Context) []types.Item {
	s.exchange.Lock()
	defer s.exchange.Unlock()
	sess, ctx, gen, ok := s.active(ctx)
	if !ok {
		s.fail(ctx, gen, syncerr.New(syncerr.ConnectionFailed, "receive_items", ErrNotConnected))
		return []types.Item{}
	}
	s.update(gen, Syncing)
	items, err := s.receiveItems(ctx, sess)
	if err != nil {
		serr := syncerr.ClassifyTransfer("receive_items", err)
		failures.WithLabelValues(serr.Kind.String()).Inc()
		s.logger.Info("no items received", log.ZContext(ctx), zap.Object("error", serr))
		items = []types.Item{}
	}
	s.update(gen, Connected)
	return items
}

// PerformSync exchanges item lists with the peer and returns the merged list.
// The whole exchange is bounded by Config.SyncTimeout. On failure the status
// is Error and the session stays open until Disconnect.
func (s *Syncer) PerformSync(ctx context.Context, local []types.Item) ([]types.Item, bool) {
	s.exchange.Lock()
	defer s.exchange.Unlock()
	sess, ctx, gen, ok := s.active(ctx)
	if !ok {
		s.fail(ctx, gen, syncerr.New(syncerr.ConnectionFailed, "sync", ErrNotConnected))
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.SyncTimeout)
	defer cancel()
	start := s.clock.Now()
	logger := s.logger.With(log.ZContext(ctx))
	logger.Info("starting sync", zap.Int("local_items", len(local)))
	s.update(gen, Syncing)

	merged, err := s.performSync(ctx, sess, local)
	if err != nil {
		syncs.WithLabelValues("failure").Inc()
		s.fail(ctx, gen, syncerr.ClassifyTransfer("sync", err))
		return nil, false
	}
	s.mu.Lock()
	s.lastSync = types.Millis(s.clock.Now())
	s.mu.Unlock()
	syncs.WithLabelValues("success").Inc()
	syncDuration.Observe(s.clock.Since(start).Seconds())
	if !s.update(gen, Connected) {
		logger.Info("disconnected during sync")
		return nil, false
	}
	logger.Info("sync completed", zap.Int("items", len(merged)))
	return merged, true
}

func (s *Syncer) performSync(ctx context.Context, sess Session, local []types.Item) ([]types.Item, error) {
	s.mu.Lock()
	lastSync := s.lastSync
	s.mu.Unlock()
	if !sess.SendMessage(ctx, s.builder.SyncRequest(lastSync)) {
		return nil, sessionErr(sess, errSend)
	}
	if s.cfg.RemoteProcessingDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-s.clock.After(s.cfg.RemoteProcessingDelay):
		}
	}
	if err := s.sendItems(ctx, sess, local); err != nil {
		return nil, err
	}
	remote, err := s.receiveItems(ctx, sess)
	if err != nil {
		return nil, err
	}
	res := conflict.Resolve(local, remote, *s.strategy)
	conflicts.WithLabelValues(res.Strategy.String()).Add(float64(res.Conflicts))
	resolvedItems.Observe(float64(len(res.Items)))
	s.logger.Debug("resolved item lists",
		log.ZContext(ctx),
		zap.Int("local", len(local)),
		zap.Int("remote", len(remote)),
		zap.Int("conflicts", res.Conflicts),
		zap.Stringer("strategy", res.Strategy),
	)
	return res.Items, nil
}

func (s *Syncer) sendItems(ctx context.Context, sess Session, items []types.Item) error {
	s.resetAttempt()
	ok := retry.ExecuteBool(ctx, s.retry, "send_items", s.cfg.TransferRetry,
		func(ctx context.Context) (bool, error) {
			if !sess.SendMessage(ctx, s.builder.ProductList(items)) {
				return false, sessionErr(sess, errSend)
			}
			return true, nil
		})
	if !ok {
		return s.failure(ctx, errSend)
	}
	return nil
}

func (s *Syncer) receiveItems(ctx context.Context, sess Session) ([]types.Item, error) {
	s.resetAttempt()
	items, ok := retry.Execute(ctx, s.retry, "receive_items", s.cfg.TransferRetry,
		func(ctx context.Context) ([]types.Item, bool, error) {
			items, err := s.awaitItems(ctx, sess)
			return items, err == nil, err
		})
	if !ok {
		return nil, s.failure(ctx, errReceive)
	}
	return items, nil
}

// awaitItems reads messages until the peer's item list arrives.
// Pings are answered, other control messages are skipped.
func (s *Syncer) awaitItems(ctx context.Context, sess Session) ([]types.Item, error) {
	for {
		msg, ok := sess.ReceiveMessage(ctx)
		if !ok {
			return nil, sessionErr(sess, errReceive)
		}
		switch msg.Type {
		case syncproto.TypeProductList:
			list := msg.Payload.(*syncproto.ProductList)
			return slices.DeleteFunc(slices.Clone(list.Items), func(item types.Item) bool {
				if err := item.Validate(); err != nil {
					s.logger.Debug("skipping invalid item", log.ZContext(ctx), zap.Error(err))
					return true
				}
				return false
			}), nil
		case syncproto.TypePing:
			if !sess.SendMessage(ctx, s.builder.Pong()) {
				return nil, sessionErr(sess, errSend)
			}
		case syncproto.TypeDisconnect:
			return nil, ErrPeerDisconnected
		default:
			s.logger.Debug("skipping message", log.ZContext(ctx), zap.Stringer("msg", msg))
		}
	}
}

// Disconnect tells the peer the session ends and closes it.
// It never fails, the status is Disconnected afterwards.
func (s *Syncer) Disconnect(ctx context.Context) {
	// an exchange in progress is interrupted by closing the session
	if s.exchange.TryLock() {
		defer s.exchange.Unlock()
		s.mu.Lock()
		sess := s.session
		s.mu.Unlock()
		if sess != nil {
			if !sess.SendMessage(ctx, s.builder.Disconnect()) {
				s.logger.Debug("failed to notify peer about disconnect", zap.Error(sess.Err()))
			}
		}
	}
	s.mu.Lock()
	sess := s.detach()
	prev := s.status.current
	changed := s.status.set(Disconnected)
	s.mu.Unlock()
	s.closeQuietly(sess)
	s.statusChanged(prev, Disconnected, changed)
}

// detach forgets the current session and starts a new generation.
// Must be called with mu held.
func (s *Syncer) detach() Session {
	sess := s.session
	s.session = nil
	s.peer = types.PeerEndpoint{}
	s.sessionID = ""
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return sess
}

func (s *Syncer) closeQuietly(sess Session) {
	if sess == nil {
		return
	}
	if err := sess.Close(); err != nil {
		s.logger.Debug("failed to close session", zap.Error(err))
	}
}

func sessionErr(sess Session, fallback error) error {
	if err := sess.Err(); err != nil {
		return err
	}
	return fallback
}
