// Package syncproto defines the messages exchanged by two devices during a sync
// and their line-oriented JSON encoding.
package syncproto

import (
	"fmt"

	"github.com/szopper/go-szopper/common/types"
)

// MessageType is the discriminator of a Message.
type MessageType string

const (
	TypeSyncRequest  MessageType = "SYNC_REQUEST"
	TypeSyncResponse MessageType = "SYNC_RESPONSE"
	TypeProductList  MessageType = "PRODUCT_LIST"
	TypeHeartbeat    MessageType = "HEARTBEAT"
	TypePing         MessageType = "PING"
	TypePong         MessageType = "PONG"
	TypeDisconnect   MessageType = "DISCONNECT"
)

// Known reports whether t is one of the defined message types.
func (t MessageType) Known() bool {
	switch t {
	case TypeSyncRequest, TypeSyncResponse, TypeProductList, TypeHeartbeat,
		TypePing, TypePong, TypeDisconnect:
		return true
	}
	return false
}

// Message is a single protocol frame.
type Message struct {
	Type      MessageType
	DeviceID  string
	Timestamp int64
	// Payload is nil for PING, PONG and DISCONNECT.
	Payload Payload
}

func (m *Message) String() string {
	if m.Payload == nil {
		return fmt.Sprintf("%s from %s", m.Type, m.DeviceID)
	}
	return fmt.Sprintf("%s(%s) from %s", m.Type, m.Payload.kind(), m.DeviceID)
}

// Payload is the type specific body of a Message.
// It is implemented only by the payload types of this package.
type Payload interface {
	kind() payloadKind
}

type payloadKind string

const (
	kindSyncRequest  payloadKind = "SyncRequest"
	kindSyncResponse payloadKind = "SyncResponse"
	kindProductList  payloadKind = "ProductList"
	kindHeartbeat    payloadKind = "Heartbeat"
)

// SyncRequest opens a sync exchange.
type SyncRequest struct {
	LastSyncTimestamp int64 `json:"lastSyncTimestamp"`
}

func (*SyncRequest) kind() payloadKind { return kindSyncRequest }

// SyncResponse accepts or rejects a SyncRequest.
type SyncResponse struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message"`
}

func (*SyncResponse) kind() payloadKind { return kindSyncResponse }

// ProductList carries the full item list of the sender.
type ProductList struct {
	Items []types.Item `json:"items"`
}

func (*ProductList) kind() payloadKind { return kindProductList }

// Heartbeat announces the sender's human readable name.
type Heartbeat struct {
	DeviceName string `json:"deviceName"`
}

func (*Heartbeat) kind() payloadKind { return kindHeartbeat }

// ValidateMessage reports whether the payload variant matches the message type.
// Messages that fail validation must not be used.
func ValidateMessage(m *Message) bool {
	if m == nil {
		return false
	}
	switch m.Type {
	case TypeSyncRequest:
		p, ok := m.Payload.(*SyncRequest)
		return ok && p != nil
	case TypeSyncResponse:
		p, ok := m.Payload.(*SyncResponse)
		return ok && p != nil
	case TypeProductList:
		p, ok := m.Payload.(*ProductList)
		return ok && p != nil
	case TypeHeartbeat:
		p, ok := m.Payload.(*Heartbeat)
		return ok && p != nil
	case TypePing, TypePong, TypeDisconnect:
		return m.Payload == nil
	default:
		return false
	}
}
