package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsReadTimeout  = 90 * time.Second
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
)

var eventsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS for WebSocket is handled at the HTTP layer already.
		return true
	},
}

// EventsClientMessage is what the frontend may send over the event feed.
type EventsClientMessage struct {
	Type           string `json:"type"` // "read", "ping"
	ConversationID string `json:"conversationId,omitempty"`
}

// EventsWebSocket handles GET /ws/events: it streams store events addressed to
// the session user (new messages, status changes, presence, settings).
func (h *Handlers) EventsWebSocket(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	conn, err := eventsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	client := h.Hub.Register(user.ID)
	defer h.Hub.Unregister(client)

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(64 * 1024)
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		})
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

			var msg EventsClientMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			switch msg.Type {
			case "read":
				peer := strings.TrimSpace(msg.ConversationID)
				if peer != "" {
					if err := h.Store.MarkConversationRead(r.Context(), peer, user.ID); err != nil {
						log.Printf("handlers: marking %s read for %s: %v", peer, user.ID, err)
					}
				}
			default:
				// "ping" and unknown types only refresh the deadline
			}
		}
	}()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()
	for {
		select {
		case <-done:
			return
		case evt, ok := <-client.Events():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		}
	}
}
