package syncer

import (
	"context"

	"github.com/szopper/go-szopper/common/types"
	"github.com/szopper/go-szopper/syncproto"
)

//go:generate mockgen -typed -package=syncer -destination=./mocks.go -source=./interface.go

// Session is a connection to one peer, see transport.Session.
type Session interface {
	Connect(ctx context.Context, peer types.PeerEndpoint, server bool) bool
	Validate(ctx context.Context) bool
	SendMessage(ctx context.Context, msg *syncproto.Message) bool
	ReceiveMessage(ctx context.Context) (*syncproto.Message, bool)
	Err() error
	Close() error
}

// Discoverer finds peers, see discovery.Aggregator.
type Discoverer interface {
	Discover(ctx context.Context) <-chan []types.PeerEndpoint
}
