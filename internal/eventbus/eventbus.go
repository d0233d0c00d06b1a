package eventbus

import (
	"sync"

	"github.com/harborops/recvplan/core/events"
)

// Bus fans engine events out to observers (MQTT notifier, audit log, tests).
type Bus interface {
	Publish(events.Event)
	Subscribe() <-chan events.Event
	Unsubscribe(<-chan events.Event)
	Close()
}

// FanoutBus is the default Bus implementation using buffered channels.
// Delivery is non-blocking: a slow observer drops events rather than
// stalling the engine.
type FanoutBus struct {
	mu     sync.RWMutex
	subs   []chan events.Event
	closed bool
}

// New creates a FanoutBus.
func New() *FanoutBus { return &FanoutBus{} }

// Publish sends the event to all subscribers without blocking.
func (b *FanoutBus) Publish(e events.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers a new subscriber and returns its channel.
func (b *FanoutBus) Subscribe() <-chan events.Event {
	ch := make(chan events.Event, 16)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subs = append(b.subs, ch)
	}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *FanoutBus) Unsubscribe(sub <-chan events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, ch := range b.subs {
		if ch == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			if !b.closed {
				close(ch)
			}
			return
		}
	}
}

// Close closes all subscriber channels and clears the list.
func (b *FanoutBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
	b.mu.Unlock()
}
