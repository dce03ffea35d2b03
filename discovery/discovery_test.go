package discovery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/szopper/go-szopper/common/types"
	"github.com/szopper/go-szopper/log/logtest"
)

// chanSource emits endpoints pushed to it until ctx is done.
type chanSource struct {
	name    string
	eps     chan types.PeerEndpoint
	stopped chan struct{}
}

func newChanSource(name string) *chanSource {
	return &chanSource{
		name:    name,
		eps:     make(chan types.PeerEndpoint),
		stopped: make(chan struct{}),
	}
}

func (s *chanSource) Name() string { return s.name }

func (s *chanSource) Run(ctx context.Context, emit func(types.PeerEndpoint)) error {
	defer close(s.stopped)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ep := <-s.eps:
			emit(ep)
		}
	}
}

func (s *chanSource) push(t *testing.T, ep types.PeerEndpoint) {
	t.Helper()
	select {
	case s.eps <- ep:
	case <-time.After(5 * time.Second):
		require.FailNow(t, "source is not running")
	}
}

func next(t *testing.T, out <-chan []types.PeerEndpoint) []types.PeerEndpoint {
	t.Helper()
	select {
	case snapshot, ok := <-out:
		require.True(t, ok, "discovery closed")
		return snapshot
	case <-time.After(5 * time.Second):
		require.FailNow(t, "no snapshot")
	}
	return nil
}

func ids(eps []types.PeerEndpoint) []string {
	rst := make([]string, 0, len(eps))
	for _, ep := range eps {
		rst = append(rst, ep.ID)
	}
	return rst
}

func peerEndpoint(id string, method types.DiscoveryMethod) types.PeerEndpoint {
	return types.PeerEndpoint{
		ID:              id,
		DisplayName:     id,
		IsAvailable:     true,
		HasKnownApp:     method == types.DiscoveryService,
		DiscoveryMethod: method,
		Transport:       types.TransportLibp2p,
	}
}

func TestDeduplicate(t *testing.T) {
	src := newChanSource("peers")
	a := New(nil, []Source{src}, WithLogger(logtest.New(t)), WithTimeout(0))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := a.Discover(ctx)

	src.push(t, peerEndpoint("b", types.DiscoveryPeer))
	require.Equal(t, []string{"b"}, ids(next(t, out)))

	src.push(t, peerEndpoint("a", types.DiscoveryPeer))
	require.Equal(t, []string{"a", "b"}, ids(next(t, out)))

	// same peer again, unchanged
	src.push(t, peerEndpoint("a", types.DiscoveryPeer))
	src.push(t, peerEndpoint("c", types.DiscoveryPeer))
	require.Equal(t, []string{"a", "b", "c"}, ids(next(t, out)))
}

func TestServiceUpgradesPeer(t *testing.T) {
	peers := newChanSource("peers")
	svc := newChanSource("mdns")
	a := New(nil, []Source{peers, svc}, WithLogger(logtest.New(t)))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := a.Discover(ctx)

	peers.push(t, peerEndpoint("a", types.DiscoveryPeer))
	snapshot := next(t, out)
	require.Equal(t, types.DiscoveryPeer, snapshot[0].DiscoveryMethod)
	require.False(t, snapshot[0].HasKnownApp)

	svc.push(t, peerEndpoint("a", types.DiscoveryService))
	snapshot = next(t, out)
	require.Len(t, snapshot, 1)
	require.Equal(t, types.DiscoveryService, snapshot[0].DiscoveryMethod)
	require.True(t, snapshot[0].HasKnownApp)

	// never downgraded
	peers.push(t, peerEndpoint("a", types.DiscoveryPeer))
	peers.push(t, peerEndpoint("b", types.DiscoveryPeer))
	snapshot = next(t, out)
	require.Equal(t, []string{"a", "b"}, ids(snapshot))
	require.Equal(t, types.DiscoveryService, snapshot[0].DiscoveryMethod)
}

func TestExistingConnection(t *testing.T) {
	ctrl := gomock.NewController(t)
	detector := NewMockConnectionDetector(ctrl)
	existing := peerEndpoint("group", types.DiscoveryService)
	existing.HasKnownApp = false
	detector.EXPECT().DetectExistingConnection(gomock.Any()).Return(existing, true, nil)

	src := NewMockSource(ctrl)
	a := New(detector, []Source{src}, WithLogger(logtest.New(t)))
	ctx, cancel := context.WithCancel(context.Background())
	out := a.Discover(ctx)

	snapshot := next(t, out)
	require.Len(t, snapshot, 1)
	require.Equal(t, "group", snapshot[0].ID)
	require.Equal(t, types.DiscoveryPeer, snapshot[0].DiscoveryMethod)
	require.True(t, snapshot[0].HasKnownApp)

	cancel()
	for range out {
		require.FailNow(t, "unexpected snapshot")
	}
}

func TestContinueAfterExisting(t *testing.T) {
	ctrl := gomock.NewController(t)
	detector := NewMockConnectionDetector(ctrl)
	detector.EXPECT().DetectExistingConnection(gomock.Any()).
		Return(peerEndpoint("group", types.DiscoveryPeer), true, nil)
	src := newChanSource("peers")
	a := New(detector, []Source{src}, WithContinueAfterExisting())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := a.Discover(ctx)

	require.Equal(t, []string{"group"}, ids(next(t, out)))
	src.push(t, peerEndpoint("other", types.DiscoveryPeer))
	require.Equal(t, []string{"group", "other"}, ids(next(t, out)))
}

func TestDetectorError(t *testing.T) {
	ctrl := gomock.NewController(t)
	detector := NewMockConnectionDetector(ctrl)
	detector.EXPECT().DetectExistingConnection(gomock.Any()).
		Return(types.PeerEndpoint{}, false, errors.New("radio off"))
	src := newChanSource("peers")
	a := New(detector, []Source{src})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := a.Discover(ctx)

	src.push(t, peerEndpoint("a", types.DiscoveryPeer))
	require.Equal(t, []string{"a"}, ids(next(t, out)))
}

func TestSourceFailureIsolated(t *testing.T) {
	ctrl := gomock.NewController(t)
	failing := NewMockSource(ctrl)
	failing.EXPECT().Name().Return("broken").AnyTimes()
	failing.EXPECT().Run(gomock.Any(), gomock.Any()).Return(errors.New("unsupported"))
	src := newChanSource("peers")
	a := New(nil, []Source{failing, src}, WithLogger(logtest.New(t)))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := a.Discover(ctx)

	src.push(t, peerEndpoint("a", types.DiscoveryPeer))
	require.Equal(t, []string{"a"}, ids(next(t, out)))
}

func TestCancelStopsSources(t *testing.T) {
	first := newChanSource("first")
	second := newChanSource("second")
	a := New(nil, []Source{first, second})
	ctx, cancel := context.WithCancel(context.Background())
	out := a.Discover(ctx)
	first.push(t, peerEndpoint("a", types.DiscoveryPeer))
	next(t, out)

	cancel()
	select {
	case _, ok := <-out:
		require.False(t, ok)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "discovery not closed")
	}
	// the channel is closed only after every source returned
	for _, src := range []*chanSource{first, second} {
		select {
		case <-src.stopped:
		default:
			require.FailNow(t, "source still running", src.name)
		}
	}
}

func TestTimeout(t *testing.T) {
	src := newChanSource("peers")
	a := New(nil, []Source{src}, WithTimeout(50*time.Millisecond))
	out := a.Discover(context.Background())
	select {
	case _, ok := <-out:
		require.False(t, ok)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "discovery did not time out")
	}
	<-src.stopped
}

func TestStaticSource(t *testing.T) {
	manual := types.PeerEndpoint{ID: "10.0.0.2:8888", DisplayName: "10.0.0.2:8888", Transport: types.TransportTCP}
	a := New(nil, []Source{NewStatic(manual)})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	snapshot := next(t, a.Discover(ctx))
	require.Len(t, snapshot, 1)
	require.Equal(t, types.DiscoveryManual, snapshot[0].DiscoveryMethod)
}

func TestFreshPass(t *testing.T) {
	a := New(nil, []Source{NewStatic(peerEndpoint("a", types.DiscoveryPeer))})
	for range 2 {
		ctx, cancel := context.WithCancel(context.Background())
		require.Equal(t, []string{"a"}, ids(next(t, a.Discover(ctx))))
		cancel()
	}
}
