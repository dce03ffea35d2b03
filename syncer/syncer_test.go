package syncer

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/szopper/go-szopper/common/types"
	"github.com/szopper/go-szopper/conflict"
	"github.com/szopper/go-szopper/log/logtest"
	"github.com/szopper/go-szopper/syncerr"
	"github.com/szopper/go-szopper/syncproto"
)

var testPeer = types.PeerEndpoint{
	ID:              "10.0.0.2:8888",
	DisplayName:     "kitchen",
	IsAvailable:     true,
	DiscoveryMethod: types.DiscoveryManual,
	Transport:       types.TransportTCP,
	Addrs:           []string{"10.0.0.2:8888"},
}

// ofType matches messages of the given type.
type ofType syncproto.MessageType

func (m ofType) Matches(x any) bool {
	msg, ok := x.(*syncproto.Message)
	return ok && msg.Type == syncproto.MessageType(m)
}

func (m ofType) String() string {
	return "message of type " + string(m)
}

type tester struct {
	*Syncer
	ctrl     *gomock.Controller
	clock    clockwork.FakeClock
	sessions []*MockSession
	disc     *MockDiscoverer
	remote   *syncproto.Builder
}

func newTester(t *testing.T, sessions int, opts ...Opt) *tester {
	ctrl := gomock.NewController(t)
	ts := &tester{
		ctrl:   ctrl,
		clock:  clockwork.NewFakeClock(),
		disc:   NewMockDiscoverer(ctrl),
		remote: syncproto.NewBuilder("remote"),
	}
	for range sessions {
		ts.sessions = append(ts.sessions, NewMockSession(ctrl))
	}
	created := 0
	newSession := func() Session {
		require.Less(t, created, len(ts.sessions), "unexpected session")
		sess := ts.sessions[created]
		created++
		return sess
	}
	opts = append([]Opt{WithLogger(logtest.New(t)), WithClock(ts.clock)}, opts...)
	ts.Syncer = New("local", newSession, ts.disc, opts...)
	return ts
}

// connected returns a tester with an established session.
func connected(t *testing.T, opts ...Opt) (*tester, *MockSession) {
	ts := newTester(t, 1, opts...)
	sess := ts.sessions[0]
	sess.EXPECT().Connect(gomock.Any(), testPeer, false).Return(true)
	sess.EXPECT().Validate(gomock.Any()).Return(true)
	require.True(t, ts.Connect(context.Background(), testPeer, false))
	return ts, sess
}

func async[T any](fn func() T) <-chan T {
	rst := make(chan T, 1)
	go func() {
		rst <- fn()
	}()
	return rst
}

func TestConnect(t *testing.T) {
	ts, _ := connected(t)
	require.Equal(t, Connected, ts.Status())
	peer, ok := ts.Peer()
	require.True(t, ok)
	require.Equal(t, testPeer, peer)
	require.Nil(t, ts.LastError())
}

func TestConnectRetried(t *testing.T) {
	ts := newTester(t, 3)
	for _, sess := range ts.sessions[:2] {
		sess.EXPECT().Connect(gomock.Any(), testPeer, true).Return(false)
		sess.EXPECT().Err().Return(errors.New("dial tcp: connection refused")).AnyTimes()
	}
	ts.sessions[2].EXPECT().Connect(gomock.Any(), testPeer, true).Return(true)
	ts.sessions[2].EXPECT().Validate(gomock.Any()).Return(true)

	rst := async(func() bool { return ts.Connect(context.Background(), testPeer, true) })
	ts.clock.BlockUntil(1)
	require.Equal(t, Connecting, ts.Status())
	ts.clock.Advance(time.Second)
	ts.clock.BlockUntil(1)
	ts.clock.Advance(2 * time.Second)
	require.True(t, <-rst)
	require.Equal(t, Connected, ts.Status())
}

func TestConnectExhausted(t *testing.T) {
	ts := newTester(t, 3)
	for _, sess := range ts.sessions {
		sess.EXPECT().Connect(gomock.Any(), testPeer, false).Return(false)
		sess.EXPECT().Err().Return(errors.New("dial tcp: connection refused")).AnyTimes()
	}
	rst := async(func() bool { return ts.Connect(context.Background(), testPeer, false) })
	ts.clock.BlockUntil(1)
	ts.clock.Advance(time.Second)
	ts.clock.BlockUntil(1)
	ts.clock.Advance(2 * time.Second)
	require.False(t, <-rst)
	require.Equal(t, Error, ts.Status())
	serr := ts.LastError()
	require.NotNil(t, serr)
	require.Equal(t, syncerr.ConnectionFailed, serr.Kind)
	require.Equal(t, "connect", serr.Op)
	_, ok := ts.Peer()
	require.False(t, ok)
}

func TestConnectValidationFailure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ConnectRetry.MaxAttempts = 1
	ts := newTester(t, 1, WithConfig(cfg))
	sess := ts.sessions[0]
	sess.EXPECT().Connect(gomock.Any(), testPeer, false).Return(true)
	sess.EXPECT().Validate(gomock.Any()).Return(false)
	sess.EXPECT().Err().Return(context.DeadlineExceeded)
	sess.EXPECT().Close().Return(nil)

	require.False(t, ts.Connect(context.Background(), testPeer, false))
	require.Equal(t, Error, ts.Status())
	require.Equal(t, syncerr.ConnectionTimeout, ts.LastError().Kind)
}

func TestConnectReplacesSession(t *testing.T) {
	ts := newTester(t, 2)
	for _, sess := range ts.sessions {
		sess.EXPECT().Connect(gomock.Any(), testPeer, false).Return(true)
		sess.EXPECT().Validate(gomock.Any()).Return(true)
	}
	ts.sessions[0].EXPECT().Close().Return(nil)
	require.True(t, ts.Connect(context.Background(), testPeer, false))
	require.True(t, ts.Connect(context.Background(), testPeer, false))
}

func TestPerformSync(t *testing.T) {
	ts, sess := connected(t)
	local := []types.Item{
		{ID: "1", Name: "milk", Bought: true, CreatedAt: 1000, UpdatedAt: 1500},
		{ID: "2", Name: "bread", CreatedAt: 1000, UpdatedAt: 1200},
	}
	remote := []types.Item{
		{ID: "1", Name: "milk", CreatedAt: 1000, UpdatedAt: 1300},
		{ID: "2", Name: "bread", Bought: true, CreatedAt: 1000, UpdatedAt: 1400},
		{ID: "4", Name: "eggs", CreatedAt: 1000, UpdatedAt: 1250},
	}
	gomock.InOrder(
		sess.EXPECT().SendMessage(gomock.Any(), ofType(syncproto.TypeSyncRequest)).Return(true),
		sess.EXPECT().SendMessage(gomock.Any(), ofType(syncproto.TypeProductList)).
			DoAndReturn(func(_ context.Context, msg *syncproto.Message) bool {
				require.Equal(t, local, msg.Payload.(*syncproto.ProductList).Items)
				return true
			}),
		sess.EXPECT().ReceiveMessage(gomock.Any()).Return(ts.remote.SyncRequest(0), true),
		sess.EXPECT().ReceiveMessage(gomock.Any()).Return(ts.remote.Ping(), true),
		sess.EXPECT().SendMessage(gomock.Any(), ofType(syncproto.TypePong)).Return(true),
		sess.EXPECT().ReceiveMessage(gomock.Any()).Return(ts.remote.ProductList(remote), true),
	)

	type result struct {
		items []types.Item
		ok    bool
	}
	rst := async(func() result {
		items, ok := ts.PerformSync(context.Background(), local)
		return result{items, ok}
	})
	ts.clock.BlockUntil(1)
	require.Equal(t, Syncing, ts.Status())
	ts.clock.Advance(time.Second)

	res := <-rst
	require.True(t, res.ok)
	require.Equal(t, []types.Item{local[0], remote[1], remote[2]}, res.items)
	require.Equal(t, Connected, ts.Status())
}

func TestPerformSyncMergeAll(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RemoteProcessingDelay = 0
	ts, sess := connected(t, WithConfig(cfg), WithStrategy(conflict.MergeAll))
	local := []types.Item{{ID: "1", Name: "Milk", Bought: true, UpdatedAt: 1200}}
	remote := []types.Item{{ID: "1", Name: "Organic Milk", UpdatedAt: 1400}}
	sess.EXPECT().SendMessage(gomock.Any(), gomock.Any()).Return(true).Times(2)
	sess.EXPECT().ReceiveMessage(gomock.Any()).Return(ts.remote.ProductList(remote), true)

	items, ok := ts.PerformSync(context.Background(), local)
	require.True(t, ok)
	require.Equal(t, []types.Item{{ID: "1", Name: "Organic Milk", Bought: true, UpdatedAt: 1400}}, items)
}

func TestPerformSyncNotConnected(t *testing.T) {
	ts := newTester(t, 0)
	items, ok := ts.PerformSync(context.Background(), nil)
	require.False(t, ok)
	require.Nil(t, items)
	require.Equal(t, Error, ts.Status())
	require.ErrorIs(t, ts.LastError(), ErrNotConnected)
}

func TestPerformSyncTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SyncTimeout = 50 * time.Millisecond
	ts, sess := connected(t, WithConfig(cfg))
	sess.EXPECT().SendMessage(gomock.Any(), ofType(syncproto.TypeSyncRequest)).Return(true)

	// the fake clock never releases the pause, the sync deadline does
	_, ok := ts.PerformSync(context.Background(), nil)
	require.False(t, ok)
	require.Equal(t, Error, ts.Status())
	require.Equal(t, syncerr.ConnectionTimeout, ts.LastError().Kind)
	_, open := ts.Peer()
	require.True(t, open, "session stays until disconnect")
}

func TestReceiveItemsPeerDisconnected(t *testing.T) {
	ts, sess := connected(t)
	sess.EXPECT().ReceiveMessage(gomock.Any()).Return(ts.remote.Disconnect(), true).Times(2)

	rst := async(func() []types.Item { return ts.ReceiveItems(context.Background()) })
	ts.clock.BlockUntil(1)
	ts.clock.Advance(time.Second)
	items := <-rst
	require.NotNil(t, items)
	require.Empty(t, items)
	require.Equal(t, Connected, ts.Status())
	require.Nil(t, ts.LastError())
}

func TestReceiveItemsExhausted(t *testing.T) {
	ts, sess := connected(t)
	sess.EXPECT().ReceiveMessage(gomock.Any()).Return(nil, false).Times(2)
	sess.EXPECT().Err().Return(errors.New("read: connection reset")).Times(2)

	rst := async(func() []types.Item { return ts.ReceiveItems(context.Background()) })
	ts.clock.BlockUntil(1)
	ts.clock.Advance(time.Second)
	require.Empty(t, <-rst)
	require.Equal(t, Connected, ts.Status())
	require.Nil(t, ts.LastError())
	_, open := ts.Peer()
	require.True(t, open)
}

func TestReceiveItemsNotConnected(t *testing.T) {
	ts := newTester(t, 0)
	require.Empty(t, ts.ReceiveItems(context.Background()))
	require.Equal(t, Error, ts.Status())
	require.ErrorIs(t, ts.LastError(), ErrNotConnected)
}

func TestPerformSyncDecodeError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TransferRetry.MaxAttempts = 1
	cfg.RemoteProcessingDelay = 0
	ts, sess := connected(t, WithConfig(cfg))
	sess.EXPECT().SendMessage(gomock.Any(), ofType(syncproto.TypeSyncRequest)).Return(true)
	sess.EXPECT().SendMessage(gomock.Any(), ofType(syncproto.TypeProductList)).Return(true)
	sess.EXPECT().ReceiveMessage(gomock.Any()).Return(nil, false)
	sess.EXPECT().Err().Return(syncproto.ErrDecode)

	_, ok := ts.PerformSync(context.Background(), nil)
	require.False(t, ok)
	require.Equal(t, Error, ts.Status())
	require.Equal(t, syncerr.DecodeError, ts.LastError().Kind)
	require.False(t, ts.LastError().Retryable())
}

func TestReceiveItemsSkipsInvalidItems(t *testing.T) {
	ts, sess := connected(t)
	list := []types.Item{
		{Name: "ghost"},
		{ID: "1", Name: "milk"},
		{ID: "2", Name: strings.Repeat("x", types.MaxNameLength+1)},
		{ID: "3"},
	}
	sess.EXPECT().ReceiveMessage(gomock.Any()).Return(ts.remote.Heartbeat("kitchen"), true)
	sess.EXPECT().ReceiveMessage(gomock.Any()).Return(ts.remote.ProductList(list), true)

	require.Equal(t, list[1:2], ts.ReceiveItems(context.Background()))
	require.Equal(t, Connected, ts.Status())
}

func TestSendItems(t *testing.T) {
	ts, sess := connected(t)
	gomock.InOrder(
		sess.EXPECT().SendMessage(gomock.Any(), ofType(syncproto.TypeProductList)).Return(false),
		sess.EXPECT().Err().Return(errors.New("broken pipe")),
		sess.EXPECT().SendMessage(gomock.Any(), ofType(syncproto.TypeProductList)).Return(true),
	)
	rst := async(func() bool { return ts.SendItems(context.Background(), []types.Item{{ID: "1"}}) })
	ts.clock.BlockUntil(1)
	ts.clock.Advance(time.Second)
	require.True(t, <-rst)
	require.Equal(t, Connected, ts.Status())
}

func TestDisconnect(t *testing.T) {
	ts, sess := connected(t)
	sess.EXPECT().SendMessage(gomock.Any(), ofType(syncproto.TypeDisconnect)).Return(false)
	sess.EXPECT().Err().Return(errors.New("closed"))
	sess.EXPECT().Close().Return(nil)
	ts.Disconnect(context.Background())
	require.Equal(t, Disconnected, ts.Status())
	_, ok := ts.Peer()
	require.False(t, ok)

	// without a session
	ts.Disconnect(context.Background())
	require.Equal(t, Disconnected, ts.Status())
}

// blockUntilClosed makes I/O on sess block until the session is closed.
func blockUntilClosed(sess *MockSession) <-chan struct{} {
	closed := make(chan struct{})
	sess.EXPECT().Close().DoAndReturn(func() error {
		close(closed)
		return nil
	})
	sess.EXPECT().Err().Return(net.ErrClosed).AnyTimes()
	return closed
}

func TestDisconnectDuringReceive(t *testing.T) {
	ts, sess := connected(t)
	closed := blockUntilClosed(sess)
	sess.EXPECT().ReceiveMessage(gomock.Any()).DoAndReturn(
		func(context.Context) (*syncproto.Message, bool) {
			<-closed
			return nil, false
		}).Times(2)

	rst := async(func() []types.Item { return ts.ReceiveItems(context.Background()) })
	require.Eventually(t, func() bool {
		return ts.Status() == Syncing
	}, time.Second, time.Millisecond)
	ts.Disconnect(context.Background())
	require.Equal(t, Disconnected, ts.Status())

	ts.clock.BlockUntil(1)
	ts.clock.Advance(time.Second)
	require.Empty(t, <-rst)
	require.Equal(t, Disconnected, ts.Status())
	require.Nil(t, ts.LastError())
}

func TestDisconnectDuringSync(t *testing.T) {
	ts, sess := connected(t)
	closed := blockUntilClosed(sess)
	sess.EXPECT().SendMessage(gomock.Any(), ofType(syncproto.TypeSyncRequest)).DoAndReturn(
		func(context.Context, *syncproto.Message) bool {
			<-closed
			return false
		})

	rst := async(func() bool {
		_, ok := ts.PerformSync(context.Background(), []types.Item{{ID: "1", Name: "milk"}})
		return ok
	})
	require.Eventually(t, func() bool {
		return ts.Status() == Syncing
	}, time.Second, time.Millisecond)
	ts.Disconnect(context.Background())
	require.False(t, <-rst)
	require.Equal(t, Disconnected, ts.Status())
	require.Nil(t, ts.LastError())
}

func TestDisconnectWhileConnecting(t *testing.T) {
	t.Run("between attempts", func(t *testing.T) {
		ts := newTester(t, 1)
		sess := ts.sessions[0]
		sess.EXPECT().Connect(gomock.Any(), testPeer, false).Return(false)
		sess.EXPECT().Err().Return(errors.New("dial tcp: connection refused")).AnyTimes()

		rst := async(func() bool { return ts.Connect(context.Background(), testPeer, false) })
		ts.clock.BlockUntil(1)
		ts.Disconnect(context.Background())
		require.False(t, <-rst)
		require.Equal(t, Disconnected, ts.Status())
		require.Nil(t, ts.LastError())
	})
	t.Run("attempt succeeds after disconnect", func(t *testing.T) {
		ts := newTester(t, 1)
		sess := ts.sessions[0]
		validating := make(chan struct{})
		release := make(chan struct{})
		sess.EXPECT().Connect(gomock.Any(), testPeer, true).Return(true)
		sess.EXPECT().Validate(gomock.Any()).DoAndReturn(func(context.Context) bool {
			close(validating)
			<-release
			return true
		})
		sess.EXPECT().Close().Return(nil)

		rst := async(func() bool { return ts.Connect(context.Background(), testPeer, true) })
		<-validating
		ts.Disconnect(context.Background())
		close(release)
		require.False(t, <-rst)
		require.Equal(t, Disconnected, ts.Status())
		_, open := ts.Peer()
		require.False(t, open)
	})
}

func TestDiscoverPeers(t *testing.T) {
	ts := newTester(t, 0)
	in := make(chan []types.PeerEndpoint, 1)
	ts.disc.EXPECT().Discover(gomock.Any()).Return(in)

	out := ts.DiscoverPeers(context.Background())
	require.Equal(t, Discovering, ts.Status())
	in <- []types.PeerEndpoint{testPeer}
	require.Equal(t, []types.PeerEndpoint{testPeer}, <-out)
	close(in)
	_, ok := <-out
	require.False(t, ok)
	require.Eventually(t, func() bool {
		return ts.Status() == Disconnected
	}, time.Second, time.Millisecond)
}

func TestSubscribe(t *testing.T) {
	ts := newTester(t, 1)
	statuses, cancel := ts.Subscribe()
	require.Equal(t, Disconnected, <-statuses)

	sess := ts.sessions[0]
	sess.EXPECT().Connect(gomock.Any(), testPeer, false).Return(true)
	sess.EXPECT().Validate(gomock.Any()).Return(true)
	require.True(t, ts.Connect(context.Background(), testPeer, false))
	// intermediate Connecting was replaced by the latest status
	require.Equal(t, Connected, <-statuses)

	cancel()
	cancel()
	_, ok := <-statuses
	require.False(t, ok)
}
