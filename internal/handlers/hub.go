package handlers

import (
	"context"
	"sync"

	"miheater/internal/models"
)

// subscriberBuffer is how many snapshots a slow client may lag behind
// before older ones are dropped.
const subscriberBuffer = 4

// Hub fans refreshed snapshots out to WebSocket clients. It is registered
// with the poller as a state sink.
type Hub struct {
	mu   sync.Mutex
	subs map[chan models.HeaterState]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan models.HeaterState]struct{})}
}

func (h *Hub) Name() string { return "websocket" }

// Publish never blocks: a full subscriber drops its oldest snapshot.
func (h *Hub) Publish(ctx context.Context, s models.HeaterState) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- s:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- s
		}
	}
	return nil
}

// Subscribe returns a snapshot channel and a func that releases it.
func (h *Hub) Subscribe() (<-chan models.HeaterState, func()) {
	ch := make(chan models.HeaterState, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
		})
	}
}

func (h *Hub) subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
