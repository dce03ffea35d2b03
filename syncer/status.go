package syncer

import "fmt"

// ConnectionStatus of a Syncer.
type ConnectionStatus uint8

const (
	Disconnected ConnectionStatus = iota
	Discovering
	Connecting
	Connected
	Syncing
	Error
)

var statusNames = [...]string{
	Disconnected: "disconnected",
	Discovering:  "discovering",
	Connecting:   "connecting",
	Connected:    "connected",
	Syncing:      "syncing",
	Error:        "error",
}

func (s ConnectionStatus) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("ConnectionStatus(%d)", uint8(s))
}

// statusFeed holds the current status and fans it out to subscribers.
// Subscribers only ever see the latest value.
type statusFeed struct {
	current ConnectionStatus
	next    int
	subs    map[int]chan ConnectionStatus
}

func (f *statusFeed) set(status ConnectionStatus) bool {
	if f.current == status {
		return false
	}
	f.current = status
	for _, ch := range f.subs {
		deliver(ch, status)
	}
	return true
}

func (f *statusFeed) subscribe() (int, chan ConnectionStatus) {
	if f.subs == nil {
		f.subs = map[int]chan ConnectionStatus{}
	}
	id := f.next
	f.next++
	ch := make(chan ConnectionStatus, 1)
	ch <- f.current
	f.subs[id] = ch
	return id, ch
}

func (f *statusFeed) unsubscribe(id int) {
	if ch, ok := f.subs[id]; ok {
		delete(f.subs, id)
		close(ch)
	}
}

func deliver(ch chan ConnectionStatus, status ConnectionStatus) {
	select {
	case <-ch:
	default:
	}
	ch <- status
}
