package syncerr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/szopper/go-szopper/syncproto"
	"github.com/szopper/go-szopper/transport"
)

func TestClassifyConnection(t *testing.T) {
	for _, tc := range []struct {
		err  error
		kind Kind
	}{
		{errors.New("Permission denied by user"), PermissionDenied},
		{fmt.Errorf("open: %w", os.ErrPermission), PermissionDenied},
		{errors.New("socket Timeout"), ConnectionTimeout},
		{fmt.Errorf("dial: %w", context.DeadlineExceeded), ConnectionTimeout},
		{&net.OpError{Op: "dial", Err: os.ErrDeadlineExceeded}, ConnectionTimeout},
		{errors.New("connection refused"), ConnectionFailed},
		{&net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, ConnectionFailed},
		{errors.New("network is unreachable"), PeerNotFound},
		{&net.OpError{Op: "dial", Err: syscall.EHOSTUNREACH}, PeerNotFound},
		{fmt.Errorf("%w: expected x", transport.ErrHandshake), HandshakeFailed},
		{fmt.Errorf("%w: bluetooth", transport.ErrUnknownTransport), UnknownPeer},
		{errors.New("broken pipe"), NetworkError},
		{nil, UnexpectedError},
	} {
		t.Run(fmt.Sprint(tc.err), func(t *testing.T) {
			serr := ClassifyConnection("connect", tc.err)
			require.Equal(t, tc.kind, serr.Kind)
			require.Equal(t, "connect", serr.Op)
			if tc.err != nil {
				require.ErrorIs(t, serr, tc.err)
			}
		})
	}
}

func TestClassifyTransfer(t *testing.T) {
	for _, tc := range []struct {
		err  error
		kind Kind
	}{
		{fmt.Errorf("%w: bad json", syncproto.ErrDecode), DecodeError},
		{errors.New("serialization failed"), DecodeError},
		{fmt.Errorf("%w: mismatch", transport.ErrProtocol), ProtocolError},
		{errors.New("unexpected protocol version"), ProtocolError},
		{errors.New("read timeout"), ConnectionTimeout},
		{os.ErrDeadlineExceeded, ConnectionTimeout},
		{errors.New("connection reset by peer"), TransferFailed},
	} {
		t.Run(tc.err.Error(), func(t *testing.T) {
			require.Equal(t, tc.kind, ClassifyTransfer("send", tc.err).Kind)
		})
	}
}

func TestClassifiedIsKept(t *testing.T) {
	original := New(UnknownPeer, "connect", errors.New("not a szopper device"))
	wrapped := fmt.Errorf("attempt 2: %w", original)
	require.Same(t, original, ClassifyConnection("other", wrapped))
	require.Same(t, original, ClassifyTransfer("other", wrapped))
}

func TestRetryable(t *testing.T) {
	retryable := []Kind{PeerNotFound, ConnectionFailed, ConnectionTimeout, HandshakeFailed,
		TransferFailed, ConflictResolutionFailed, NetworkError, UnexpectedError}
	final := []Kind{PermissionDenied, DecodeError, UnknownPeer, ProtocolError}
	for _, k := range retryable {
		require.True(t, k.Retryable(), k.String())
	}
	for _, k := range final {
		require.False(t, k.Retryable(), k.String())
		require.False(t, New(k, "op", nil).Retryable())
	}
}

func TestMessages(t *testing.T) {
	seen := map[string]Kind{}
	for k := UnexpectedError; k <= ProtocolError; k++ {
		msg := k.Message()
		require.NotEmpty(t, msg)
		if k != UnexpectedError {
			prev, dup := seen[msg]
			require.False(t, dup, "%s and %s share a message", k, prev)
		}
		seen[msg] = k
	}
	require.Contains(t, New(NetworkError, "connect", errors.New("no wifi")).UserMessage(), "no wifi")
	require.Equal(t, DecodeError.Message(), New(DecodeError, "receive", errors.New("x")).UserMessage())
}

func TestErrorString(t *testing.T) {
	require.Equal(t, "connect: handshake_failed: boom",
		New(HandshakeFailed, "connect", errors.New("boom")).Error())
	require.Equal(t, "sync: conflict_resolution_failed", New(ConflictResolutionFailed, "sync", nil).Error())
}
