package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// StateHandler pushes controller snapshots over a WebSocket.
type StateHandler struct {
	hub *Hub
}

// NewStateHandler creates a StateHandler reading from hub.
func NewStateHandler(hub *Hub) *StateHandler {
	return &StateHandler{hub: hub}
}

// ServeHTTP upgrades the connection, sends the current snapshot and then
// every new one until the client goes away.
func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	updates, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()

	// Reads only serve to notice the client closing.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(s Snapshot) bool {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(s); err != nil {
			log.WithError(err).Debug("websocket write failed")
			return false
		}
		return true
	}

	if !send(h.hub.Snapshot()) {
		return
	}
	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case s := <-updates:
			if !send(s) {
				return
			}
		}
	}
}
