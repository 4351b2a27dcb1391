// internal/server/hub.go
package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/DataDrake/waterlog"
	"github.com/gorilla/websocket"
)

const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Local development server only.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub tracks live-reload clients.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func newHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{})}
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}
	waterlog.Debugf("Live-reload client connected.\n")
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
		waterlog.Debugf("Live-reload client disconnected.\n")
	}
}

// broadcast sends message to every client, dropping the ones that fail, and
// returns how many received it.
func (h *Hub) broadcast(message []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	sent := 0
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			waterlog.Warnf("Dropping live-reload client: %v\n", err)
			conn.Close()
			delete(h.clients, conn)
			continue
		}
		sent++
	}
	return sent
}

func (h *Hub) size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// serveWs upgrades the request and holds the connection until the browser
// goes away. Clients never send anything meaningful.
func serveWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		waterlog.Warnf("WebSocket upgrade error: %v\n", err)
		return
	}
	hub.register(conn)
	defer hub.unregister(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
