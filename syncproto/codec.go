package syncproto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrDecode is wrapped by every error returned from Decode.
var ErrDecode = errors.New("decode sync message")

type wireMessage struct {
	Type      MessageType     `json:"type"`
	DeviceID  string          `json:"deviceId"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type wireKind struct {
	Kind payloadKind `json:"kind"`
}

// Encode renders m as a single line of JSON without the trailing delimiter.
// Strings are escaped by encoding/json, so the output never contains '\n'.
func Encode(m *Message) ([]byte, error) {
	if m == nil {
		return nil, errors.New("encode nil message")
	}
	payload, err := encodePayload(m.Payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", m.Type, err)
	}
	return json.Marshal(wireMessage{
		Type:      m.Type,
		DeviceID:  m.DeviceID,
		Timestamp: m.Timestamp,
		Payload:   payload,
	})
}

func encodePayload(p Payload) (json.RawMessage, error) {
	switch v := p.(type) {
	case nil:
		return nil, nil
	case *SyncRequest:
		return json.Marshal(struct {
			Kind payloadKind `json:"kind"`
			*SyncRequest
		}{kindSyncRequest, v})
	case *SyncResponse:
		return json.Marshal(struct {
			Kind payloadKind `json:"kind"`
			*SyncResponse
		}{kindSyncResponse, v})
	case *ProductList:
		return json.Marshal(struct {
			Kind payloadKind `json:"kind"`
			*ProductList
		}{kindProductList, v})
	case *Heartbeat:
		return json.Marshal(struct {
			Kind payloadKind `json:"kind"`
			*Heartbeat
		}{kindHeartbeat, v})
	default:
		return nil, fmt.Errorf("unsupported payload %T", p)
	}
}

// Decode parses a frame produced by Encode. Unknown fields are ignored.
// Decode does not check that the payload matches the type, use Validate for that.
func Decode(data []byte) (*Message, error) {
	var wire wireMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if !wire.Type.Known() {
		return nil, fmt.Errorf("%w: unknown message type %q", ErrDecode, wire.Type)
	}
	payload, err := decodePayload(wire.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %s payload: %w", ErrDecode, wire.Type, err)
	}
	return &Message{
		Type:      wire.Type,
		DeviceID:  wire.DeviceID,
		Timestamp: wire.Timestamp,
		Payload:   payload,
	}, nil
}

func decodePayload(raw json.RawMessage) (Payload, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var kind wireKind
	if err := json.Unmarshal(raw, &kind); err != nil {
		return nil, err
	}
	var p Payload
	switch kind.Kind {
	case kindSyncRequest:
		p = &SyncRequest{}
	case kindSyncResponse:
		p = &SyncResponse{}
	case kindProductList:
		p = &ProductList{}
	case kindHeartbeat:
		p = &Heartbeat{}
	default:
		return nil, fmt.Errorf("unknown payload kind %q", kind.Kind)
	}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, err
	}
	return p, nil
}
