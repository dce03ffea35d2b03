package syncproto

import (
	"slices"

	"github.com/jonboulle/clockwork"

	"github.com/szopper/go-szopper/common/types"
)

// BuilderOpt configures a Builder.
type BuilderOpt func(*Builder)

// WithClock sets the clock used to stamp messages.
func WithClock(clock clockwork.Clock) BuilderOpt {
	return func(b *Builder) {
		b.clock = clock
	}
}

// Builder constructs messages on behalf of one device.
type Builder struct {
	deviceID string
	clock    clockwork.Clock
}

// NewBuilder creates a Builder for deviceID.
func NewBuilder(deviceID string, opts ...BuilderOpt) *Builder {
	b := &Builder{
		deviceID: deviceID,
		clock:    clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// DeviceID of messages built by b.
func (b *Builder) DeviceID() string {
	return b.deviceID
}

func (b *Builder) build(typ MessageType, payload Payload) *Message {
	return &Message{
		Type:      typ,
		DeviceID:  b.deviceID,
		Timestamp: types.Millis(b.clock.Now()),
		Payload:   payload,
	}
}

func (b *Builder) SyncRequest(lastSyncTimestamp int64) *Message {
	return b.build(TypeSyncRequest, &SyncRequest{LastSyncTimestamp: lastSyncTimestamp})
}

func (b *Builder) SyncResponse(accepted bool, message string) *Message {
	return b.build(TypeSyncResponse, &SyncResponse{Accepted: accepted, Message: message})
}

// ProductList copies items into a new PRODUCT_LIST message.
func (b *Builder) ProductList(items []types.Item) *Message {
	return b.build(TypeProductList, &ProductList{Items: slices.Clone(items)})
}

func (b *Builder) Heartbeat(deviceName string) *Message {
	return b.build(TypeHeartbeat, &Heartbeat{DeviceName: deviceName})
}

func (b *Builder) Ping() *Message {
	return b.build(TypePing, nil)
}

func (b *Builder) Pong() *Message {
	return b.build(TypePong, nil)
}

func (b *Builder) Disconnect() *Message {
	return b.build(TypeDisconnect, nil)
}
