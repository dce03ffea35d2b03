// Package syncerr classifies sync failures into a small taxonomy
// that callers can present to users and use to decide on retries.
package syncerr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"

	"go.uber.org/zap/zapcore"

	"github.com/szopper/go-szopper/syncproto"
	"github.com/szopper/go-szopper/transport"
)

// Kind of a sync failure.
type Kind uint8

const (
	UnexpectedError Kind = iota
	PermissionDenied
	PeerNotFound
	ConnectionFailed
	ConnectionTimeout
	HandshakeFailed
	TransferFailed
	DecodeError
	ConflictResolutionFailed
	UnknownPeer
	NetworkError
	ProtocolError
)

var kindNames = [...]string{
	UnexpectedError:          "unexpected_error",
	PermissionDenied:         "permission_denied",
	PeerNotFound:             "peer_not_found",
	ConnectionFailed:         "connection_failed",
	ConnectionTimeout:        "connection_timeout",
	HandshakeFailed:          "handshake_failed",
	TransferFailed:           "transfer_failed",
	DecodeError:              "decode_error",
	ConflictResolutionFailed: "conflict_resolution_failed",
	UnknownPeer:              "unknown_peer",
	NetworkError:             "network_error",
	ProtocolError:            "protocol_error",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Retryable reports whether an operation that failed with k may succeed when repeated.
func (k Kind) Retryable() bool {
	switch k {
	case PermissionDenied, DecodeError, UnknownPeer, ProtocolError:
		return false
	default:
		return true
	}
}

// Message is the human readable description of k.
func (k Kind) Message() string {
	switch k {
	case PermissionDenied:
		return "Please grant the permissions required to sync with nearby devices."
	case PeerNotFound:
		return "The selected device is no longer available. Please try discovering devices again."
	case ConnectionFailed:
		return "Could not connect to the device. Make sure both devices are nearby and have sync enabled."
	case ConnectionTimeout:
		return "Connection timed out. Please check your connection and try again."
	case HandshakeFailed:
		return "Failed to establish a connection with the device."
	case TransferFailed:
		return "Failed to transfer shopping list data. Please try again."
	case DecodeError:
		return "Error processing shopping list data. Please restart the app and try again."
	case ConflictResolutionFailed:
		return "Could not merge shopping lists. Please try again."
	case UnknownPeer:
		return "The device is not compatible with Szopper sync."
	case NetworkError:
		return "Network error."
	case ProtocolError:
		return "Communication error."
	default:
		return "An unexpected error occurred. Please try again."
	}
}

// Error is a classified sync failure.
type Error struct {
	Kind Kind
	// Op is the orchestrator operation that failed, e.g. "connect".
	Op  string
	Err error
}

// New creates a classified error.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is worth retrying.
func (e *Error) Retryable() bool {
	return e.Kind.Retryable()
}

// UserMessage is the text shown to a user for this failure.
// Network and protocol errors include the underlying detail.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case NetworkError, ProtocolError:
		if e.Err != nil {
			return fmt.Sprintf("%s %v", e.Kind.Message(), e.Err)
		}
	}
	return e.Kind.Message()
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (e *Error) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("kind", e.Kind.String())
	enc.AddString("op", e.Op)
	enc.AddBool("retryable", e.Retryable())
	if e.Err != nil {
		enc.AddString("error", e.Err.Error())
	}
	return nil
}

// As returns the classified error in err's chain, if any.
func As(err error) (*Error, bool) {
	var serr *Error
	if errors.As(err, &serr) {
		return serr, true
	}
	return nil, false
}

// ClassifyConnection classifies a failure to reach or handshake with a peer.
func ClassifyConnection(op string, err error) *Error {
	if serr, ok := As(err); ok {
		return serr
	}
	return New(connectionKind(err), op, err)
}

func connectionKind(err error) Kind {
	switch {
	case err == nil:
		return UnexpectedError
	case errors.Is(err, os.ErrPermission), errors.Is(err, syscall.EACCES), errors.Is(err, syscall.EPERM):
		return PermissionDenied
	case isTimeout(err):
		return ConnectionTimeout
	case errors.Is(err, transport.ErrHandshake):
		return HandshakeFailed
	case errors.Is(err, transport.ErrUnknownTransport), errors.Is(err, transport.ErrNoAddress):
		return UnknownPeer
	case errors.Is(err, syscall.ECONNREFUSED):
		return ConnectionFailed
	case errors.Is(err, syscall.EHOSTUNREACH), errors.Is(err, syscall.ENETUNREACH):
		return PeerNotFound
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "permission"):
		return PermissionDenied
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		return ConnectionTimeout
	case strings.Contains(msg, "refused"):
		return ConnectionFailed
	case strings.Contains(msg, "unreachable"), strings.Contains(msg, "no route"):
		return PeerNotFound
	default:
		return NetworkError
	}
}

// ClassifyTransfer classifies a failure while exchanging messages with a connected peer.
func ClassifyTransfer(op string, err error) *Error {
	if serr, ok := As(err); ok {
		return serr
	}
	return New(transferKind(err), op, err)
}

func transferKind(err error) Kind {
	switch {
	case err == nil:
		return UnexpectedError
	case errors.Is(err, syncproto.ErrDecode):
		return DecodeError
	case errors.Is(err, transport.ErrProtocol):
		return ProtocolError
	case isTimeout(err):
		return ConnectionTimeout
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "serializ"), strings.Contains(msg, "decode"):
		return DecodeError
	case strings.Contains(msg, "protocol"):
		return ProtocolError
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		return ConnectionTimeout
	default:
		return TransferFailed
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
