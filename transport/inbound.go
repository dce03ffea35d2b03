package transport

import (
	"context"
	"errors"
	"sync"
)

// ErrInboundClosed is returned by Inbound.Accept after Close.
var ErrInboundClosed = errors.New("inbound queue closed")

// Inbound queues streams opened by remote peers until a server role session takes them.
// Streams offered to a full queue are closed immediately.
type Inbound struct {
	queue chan Stream

	once   sync.Once
	closed chan struct{}
}

// NewInbound creates a queue holding up to size streams.
func NewInbound(size int) *Inbound {
	return &Inbound{
		queue:  make(chan Stream, max(size, 1)),
		closed: make(chan struct{}),
	}
}

// Offer enqueues s, it returns false and closes s if the queue is full or closed.
func (in *Inbound) Offer(s Stream) bool {
	select {
	case <-in.closed:
		_ = s.Close()
		return false
	default:
	}
	select {
	case in.queue <- s:
		return true
	default:
		_ = s.Close()
		return false
	}
}

// Accept returns the oldest queued stream, waiting for one if needed.
func (in *Inbound) Accept(ctx context.Context) (Stream, error) {
	select {
	case s := <-in.queue:
		return s, nil
	case <-in.closed:
		return nil, ErrInboundClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len is the number of queued streams.
func (in *Inbound) Len() int {
	return len(in.queue)
}

// Close rejects further streams and closes queued ones.
func (in *Inbound) Close() {
	in.once.Do(func() {
		close(in.closed)
		for {
			select {
			case s := <-in.queue:
				_ = s.Close()
			default:
				return
			}
		}
	})
}
