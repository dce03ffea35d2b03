package transport

import (
	"context"
	"io"
	"time"

	"github.com/szopper/go-szopper/common/types"
)

//go:generate mockgen -typed -package=transport -destination=./mocks.go -source=./interface.go

// Stream is a bidirectional byte stream to a peer.
// net.Conn and libp2p streams satisfy it.
type Stream interface {
	io.ReadWriteCloser
	SetDeadline(time.Time) error
	SetReadDeadline(time.Time) error
	SetWriteDeadline(time.Time) error
}

// Backend opens streams over one concrete transport.
type Backend interface {
	Kind() types.TransportKind
	// Tokens exchanged during the handshake, distinct per backend.
	Tokens() Tokens
	// OpenStream returns a stream to peer. With server set the backend waits
	// for the peer to reach us instead of dialing it.
	OpenStream(ctx context.Context, peer types.PeerEndpoint, server bool) (Stream, error)
}
