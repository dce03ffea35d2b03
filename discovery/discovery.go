// Package discovery aggregates nearby peers reported by several discovery
// mechanisms into a stream of deduplicated snapshots.
package discovery

import (
	"cmp"
	"context"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/szopper/go-szopper/common/types"
)

//go:generate mockgen -typed -package=discovery -destination=./mocks.go -source=./discovery.go

// Source reports endpoints found by one discovery mechanism.
// Run blocks until ctx is done and must release every registration it made
// before returning.
type Source interface {
	Name() string
	Run(ctx context.Context, emit func(types.PeerEndpoint)) error
}

// ConnectionDetector reports a peer the transport is already connected to.
type ConnectionDetector interface {
	DetectExistingConnection(ctx context.Context) (types.PeerEndpoint, bool, error)
}

// Config for the Aggregator.
type Config struct {
	// Timeout bounds a single discovery pass, zero disables it.
	Timeout time.Duration `mapstructure:"timeout"`
	// ContinueAfterExisting runs sources even when a connection already exists.
	ContinueAfterExisting bool `mapstructure:"continue-after-existing"`
	// Static addresses reported as manually entered peers.
	Static []string `mapstructure:"static"`
}

// DefaultConfig returns the default Config.
func DefaultConfig() Config {
	return Config{
		Timeout: 15 * time.Second,
	}
}

// Opt configures an Aggregator.
type Opt func(*Aggregator)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Opt {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// WithTimeout bounds every discovery pass.
func WithTimeout(d time.Duration) Opt {
	return func(a *Aggregator) {
		a.timeout = d
	}
}

// WithContinueAfterExisting keeps discovering after an existing connection was reported.
func WithContinueAfterExisting() Opt {
	return func(a *Aggregator) {
		a.continueAfterExisting = true
	}
}

// WithConfig applies Config.
func WithConfig(cfg Config) Opt {
	return func(a *Aggregator) {
		a.timeout = cfg.Timeout
		a.continueAfterExisting = cfg.ContinueAfterExisting
	}
}

// Aggregator merges endpoints from its sources.
type Aggregator struct {
	logger                *zap.Logger
	detector              ConnectionDetector
	sources               []Source
	timeout               time.Duration
	continueAfterExisting bool
}

// New creates an Aggregator. detector may be nil.
func New(detector ConnectionDetector, sources []Source, opts ...Opt) *Aggregator {
	a := &Aggregator{
		logger:   zap.NewNop(),
		detector: detector,
		sources:  sources,
		timeout:  DefaultConfig().Timeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Discover starts a discovery pass. Every change of the accumulated peer set
// is delivered as a sorted snapshot. The channel is closed once ctx is done
// or the pass times out, and all sources have stopped by then.
//
// A peer already connected at the transport layer is reported first, as a
// PEER endpoint that runs the app. Unless configured otherwise the sources
// are not started in that case.
func (a *Aggregator) Discover(ctx context.Context) <-chan []types.PeerEndpoint {
	out := make(chan []types.PeerEndpoint, 1)
	passes.Inc()
	var cancel context.CancelFunc
	if a.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	go func() {
		defer close(out)
		defer cancel()
		a.run(ctx, out)
	}()
	return out
}

func (a *Aggregator) run(ctx context.Context, out chan<- []types.PeerEndpoint) {
	set := newPeerSet()
	if a.detector != nil {
		ep, ok, err := a.detector.DetectExistingConnection(ctx)
		switch {
		case err != nil:
			a.logger.Debug("existing connection check failed", zap.Error(err))
		case ok:
			ep.DiscoveryMethod = types.DiscoveryPeer
			ep.HasKnownApp = true
			ep.IsAvailable = true
			existing.Inc()
			a.logger.Info("found existing connection", zap.Object("peer", &ep))
			set.add(ep)
			if !send(ctx, out, set.snapshot()) {
				return
			}
			if !a.continueAfterExisting {
				<-ctx.Done()
				return
			}
		}
	}

	found := make(chan types.PeerEndpoint)
	var eg errgroup.Group
	for _, src := range a.sources {
		eg.Go(func() error {
			err := src.Run(ctx, func(ep types.PeerEndpoint) {
				select {
				case found <- ep:
				case <-ctx.Done():
				}
			})
			if err != nil {
				sourceErrors.WithLabelValues(src.Name()).Inc()
				a.logger.Warn("discovery source failed", zap.String("source", src.Name()), zap.Error(err))
			}
			return nil
		})
	}
	stopped := make(chan struct{})
	go func() {
		eg.Wait()
		close(stopped)
	}()
	defer func() {
		<-stopped
		a.logger.Debug("discovery pass finished", zap.Int("peers", set.len()))
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case ep := <-found:
			if !set.add(ep) {
				continue
			}
			snapshot := set.snapshot()
			peers.Set(float64(len(snapshot)))
			if !send(ctx, out, snapshot) {
				return
			}
		}
	}
}

func send(ctx context.Context, out chan<- []types.PeerEndpoint, snapshot []types.PeerEndpoint) bool {
	select {
	case out <- snapshot:
		return true
	case <-ctx.Done():
		return false
	}
}

// peerSet deduplicates endpoints by id.
type peerSet struct {
	byID map[string]types.PeerEndpoint
}

func newPeerSet() *peerSet {
	return &peerSet{byID: map[string]types.PeerEndpoint{}}
}

func (s *peerSet) len() int {
	return len(s.byID)
}

// add merges ep into the set and reports whether the set changed.
// A SERVICE finding replaces any other method, the reverse never happens.
func (s *peerSet) add(ep types.PeerEndpoint) bool {
	prev, ok := s.byID[ep.ID]
	if !ok {
		s.byID[ep.ID] = ep
		return true
	}
	if prev.DiscoveryMethod == types.DiscoveryService && ep.DiscoveryMethod != types.DiscoveryService {
		return false
	}
	if ep.DiscoveryMethod != types.DiscoveryService && ep.DiscoveryMethod != prev.DiscoveryMethod {
		return false
	}
	ep.HasKnownApp = ep.HasKnownApp || prev.HasKnownApp
	if equal(prev, ep) {
		return false
	}
	s.byID[ep.ID] = ep
	return true
}

// snapshot returns the endpoints ordered by display name, then id.
func (s *peerSet) snapshot() []types.PeerEndpoint {
	rst := make([]types.PeerEndpoint, 0, len(s.byID))
	for _, ep := range s.byID {
		ep.Addrs = slices.Clone(ep.Addrs)
		rst = append(rst, ep)
	}
	slices.SortFunc(rst, func(a, b types.PeerEndpoint) int {
		return cmp.Or(cmp.Compare(a.DisplayName, b.DisplayName), cmp.Compare(a.ID, b.ID))
	})
	return rst
}

func equal(a, b types.PeerEndpoint) bool {
	return a.ID == b.ID &&
		a.DisplayName == b.DisplayName &&
		a.IsAvailable == b.IsAvailable &&
		a.HasKnownApp == b.HasKnownApp &&
		a.DiscoveryMethod == b.DiscoveryMethod &&
		a.Transport == b.Transport &&
		slices.Equal(a.Addrs, b.Addrs)
}
