package types

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// DiscoveryMethod tells how a peer was found.
type DiscoveryMethod uint8

const (
	// DiscoveryService is a peer that advertised the szopper service.
	DiscoveryService DiscoveryMethod = iota
	// DiscoveryPeer is a generic nearby peer that may not run szopper.
	DiscoveryPeer
	// DiscoveryManual is an endpoint entered by the user.
	DiscoveryManual
)

func (m DiscoveryMethod) String() string {
	switch m {
	case DiscoveryService:
		return "SERVICE"
	case DiscoveryPeer:
		return "PEER"
	case DiscoveryManual:
		return "MANUAL"
	default:
		return fmt.Sprintf("DiscoveryMethod(%d)", uint8(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m DiscoveryMethod) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *DiscoveryMethod) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "SERVICE":
		*m = DiscoveryService
	case "PEER":
		*m = DiscoveryPeer
	case "MANUAL":
		*m = DiscoveryManual
	default:
		return fmt.Errorf("unknown discovery method %q", text)
	}
	return nil
}

// TransportKind selects the backend a session uses to reach a peer.
type TransportKind string

const (
	TransportTCP    TransportKind = "tcp"
	TransportLibp2p TransportKind = "libp2p"
)

// PeerEndpoint is a candidate device to synchronize with.
type PeerEndpoint struct {
	ID              string          `json:"id"`
	DisplayName     string          `json:"displayName"`
	IsAvailable     bool            `json:"isAvailable"`
	HasKnownApp     bool            `json:"hasKnownApp"`
	DiscoveryMethod DiscoveryMethod `json:"discoveryMethod"`
	Transport       TransportKind   `json:"transport"`
	Addrs           []string        `json:"addrs,omitempty"`
}

func (p PeerEndpoint) String() string {
	name := p.DisplayName
	if name == "" {
		name = p.ID
	}
	return fmt.Sprintf("%s (%s/%s)", name, p.DiscoveryMethod, p.Transport)
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (p PeerEndpoint) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("id", p.ID)
	enc.AddString("name", p.DisplayName)
	enc.AddString("method", p.DiscoveryMethod.String())
	enc.AddString("transport", string(p.Transport))
	enc.AddBool("known_app", p.HasKnownApp)
	enc.AddBool("available", p.IsAvailable)
	return nil
}
