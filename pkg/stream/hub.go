package stream

import (
	"context"
	"sync/atomic"
)

// Hub broadcasts encoded records to subscriber channels. All subscriber
// bookkeeping happens on the Run goroutine.
type Hub struct {
	broadcast  chan []byte
	register   chan chan []byte
	unregister chan chan []byte
	clients    map[chan []byte]struct{}
	clientBuf  int

	done    chan struct{}
	dropped atomic.Uint64
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithBroadcastBuffer sets the number of records queued ahead of Run.
func WithBroadcastBuffer(size int) HubOption {
	return func(h *Hub) {
		if size > 0 {
			h.broadcast = make(chan []byte, size)
		}
	}
}

// WithClientBuffer sets the default per-subscriber queue length.
func WithClientBuffer(size int) HubOption {
	return func(h *Hub) {
		if size > 0 {
			h.clientBuf = size
		}
	}
}

// NewHub creates a hub. Call Run before publishing.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		broadcast:  make(chan []byte, 256),
		register:   make(chan chan []byte),
		unregister: make(chan chan []byte),
		clients:    make(map[chan []byte]struct{}),
		clientBuf:  100,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run services the hub until ctx is done, then closes every subscriber
// channel.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for ch := range h.clients {
				close(ch)
			}
			h.clients = nil
			return
		case ch := <-h.register:
			h.clients[ch] = struct{}{}
		case ch := <-h.unregister:
			if _, ok := h.clients[ch]; ok {
				delete(h.clients, ch)
				close(ch)
			}
		case rec := <-h.broadcast:
			for ch := range h.clients {
				select {
				case ch <- rec:
				default:
					h.dropped.Add(1)
				}
			}
		}
	}
}

// Subscribe registers a subscriber with the default queue length.
func (h *Hub) Subscribe() chan []byte {
	return h.SubscribeWithBuffer(h.clientBuf)
}

// SubscribeWithBuffer registers a subscriber. The channel is closed on
// Unsubscribe or when the hub stops; after the hub stopped it is returned
// already closed.
func (h *Hub) SubscribeWithBuffer(size int) chan []byte {
	if size <= 0 {
		size = h.clientBuf
	}
	ch := make(chan []byte, size)
	select {
	case h.register <- ch:
	case <-h.done:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(ch chan []byte) {
	select {
	case h.unregister <- ch:
	case <-h.done:
	}
}

// Publish queues rec for every subscriber. It never blocks: when the
// broadcast queue is full or the hub has stopped the record is dropped.
func (h *Hub) Publish(rec []byte) {
	select {
	case <-h.done:
		return
	default:
	}
	select {
	case h.broadcast <- rec:
	default:
		h.dropped.Add(1)
	}
}

// Dropped returns the number of records dropped for slow subscribers or a
// full broadcast queue.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}
