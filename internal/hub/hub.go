package hub

import (
	"log/slog"
	"sync"

	"github.com/appareldesk/storefront/internal/service/models/stockevent"
)

const defaultBufferSize = 32

// Subscriber is a live observer of stock change events. Events are
// consumed from the channel returned by Events; the channel is closed
// when the subscriber is dropped.
type Subscriber struct {
	events    chan stockevent.Event
	closeOnce sync.Once
}

// Events returns the channel stock events are delivered on.
func (s *Subscriber) Events() <-chan stockevent.Event {
	return s.events
}

func (s *Subscriber) close() {
	s.closeOnce.Do(func() {
		close(s.events)
	})
}

// Hub fans stock change events out to every registered subscriber.
// Delivery is fire-and-forget: a subscriber that stopped draining its
// buffer is dropped instead of blocking the publisher or its peers.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*Subscriber]struct{}
	bufferSize  int
}

// option is a function that configures the Hub.
type option func(*Hub)

// MustNewHub creates a new broadcast hub.
func MustNewHub(opts ...option) *Hub {
	h := &Hub{
		subscribers: make(map[*Subscriber]struct{}),
		bufferSize:  defaultBufferSize,
	}
	for _, opt := range opts {
		opt(h)
	}

	return h
}

// WithBufferSize sets the per-subscriber event buffer.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithBufferSize(n int) option {
	return func(h *Hub) {
		if n > 0 {
			h.bufferSize = n
		}
	}
}

// Register adds a new subscriber and returns it.
func (h *Hub) Register() *Subscriber {
	s := &Subscriber{
		events: make(chan stockevent.Event, h.bufferSize),
	}

	h.mu.Lock()
	h.subscribers[s] = struct{}{}
	h.mu.Unlock()

	return s
}

// Unregister removes a subscriber and closes its event channel. The
// close happens inside the write-locked section, so it can never overlap
// a send from Publish, which holds the read lock. It is safe to call
// more than once.
func (h *Hub) Unregister(s *Subscriber) {
	h.mu.Lock()
	delete(h.subscribers, s)
	s.close()
	h.mu.Unlock()
}

// Publish delivers the event to every currently registered subscriber.
// Sends are non-blocking and happen under the read lock; channels are
// only ever closed under the write lock, so a send can never hit a
// closed channel. A subscriber whose buffer is full is dropped after the
// lock is released; delivery to the rest continues.
func (h *Hub) Publish(ev stockevent.Event) {
	h.mu.RLock()
	var dropped []*Subscriber
	for s := range h.subscribers {
		select {
		case s.events <- ev:
		default:
			dropped = append(dropped, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range dropped {
		slog.Warn("Dropping slow stock event subscriber", "product_id", ev.ProductID)
		h.Unregister(s)
	}
}

// Len returns the number of registered subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscribers)
}

// Close drops every subscriber, closing their channels.
func (h *Hub) Close() {
	h.mu.Lock()
	for s := range h.subscribers {
		s.close()
	}
	h.subscribers = make(map[*Subscriber]struct{})
	h.mu.Unlock()
}
