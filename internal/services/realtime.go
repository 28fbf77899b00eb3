package services

import (
	"log"
	"sync"

	"github.com/AnshRaj112/company-messenger/internal/store"
)

// clientBuffer is how many events a slow connection may fall behind before
// further events to it are dropped.
const clientBuffer = 64

// EventClient is one subscriber of the event feed, bound to a user.
type EventClient struct {
	UserID string
	send   chan store.Event
}

// Events is closed when the client is unregistered.
func (c *EventClient) Events() <-chan store.Event {
	return c.send
}

// Hub fans store events out to connected users. It implements store.Notifier.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*EventClient]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*EventClient]struct{})}
}

// Register adds a subscriber for userID. A user may hold several connections.
func (h *Hub) Register(userID string) *EventClient {
	c := &EventClient{UserID: userID, send: make(chan store.Event, clientBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*EventClient]struct{})
	}
	h.clients[userID][c] = struct{}{}
	return c
}

// Unregister removes c and closes its channel.
func (h *Hub) Unregister(c *EventClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := conns[c]; !ok {
		return
	}
	delete(conns, c)
	if len(conns) == 0 {
		delete(h.clients, c.UserID)
	}
	close(c.send)
}

// Connected reports how many connections userID currently has.
func (h *Hub) Connected(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Publish delivers e to its audience, or to everyone when the audience is empty.
// It never blocks: a full client buffer drops the event for that client.
func (h *Hub) Publish(e store.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(e.Audience) == 0 {
		for _, conns := range h.clients {
			h.sendAll(conns, e)
		}
		return
	}
	seen := make(map[string]bool, len(e.Audience))
	for _, id := range e.Audience {
		if seen[id] {
			continue
		}
		seen[id] = true
		h.sendAll(h.clients[id], e)
	}
}

func (h *Hub) sendAll(conns map[*EventClient]struct{}, e store.Event) {
	for c := range conns {
		select {
		case c.send <- e:
		default:
			log.Printf("realtime: dropping %s event for slow client %s", e.Type, c.UserID)
		}
	}
}
