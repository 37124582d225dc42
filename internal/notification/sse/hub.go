// Package sse pushes live dashboard updates to connected admin browsers
// over Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"sync"

	"callcenter_backend/platform/logger"
)

// Message is one event on the stream.
type Message struct {
	Event string
	Data  interface{}
}

// Hub fans messages out to every connected subscriber. A slow subscriber
// drops messages rather than blocking the rest.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan Message]struct{}
	log         *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		subscribers: make(map[chan Message]struct{}),
		log:         log,
	}
}

// Subscribe registers a new listener. The returned cancel function must be
// called when the connection closes.
func (h *Hub) Subscribe() (<-chan Message, func()) {
	ch := make(chan Message, 16)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subscribers, ch)
		h.mu.Unlock()
	}
	return ch, cancel
}

// Broadcast sends the message to every subscriber without blocking.
func (h *Hub) Broadcast(event string, data interface{}) {
	msg := Message{Event: event, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subscribers {
		select {
		case ch <- msg:
		default:
			h.log.Warn("sse subscriber lagging, message dropped", "event", event)
		}
	}
}

// Subscribers reports the current connection count.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Format renders one message in the wire format.
func Format(msg Message) (string, error) {
	data, err := json.Marshal(msg.Data)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("event: %s\ndata: %s\n\n", msg.Event, data), nil
}
