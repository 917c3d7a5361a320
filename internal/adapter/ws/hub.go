// Package ws pushes board and monitor events to dashboard clients over
// WebSocket. Clients are listen-only; inbound frames are drained solely to
// detect pings and disconnects.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
)

// Message is the envelope for every frame sent to a dashboard client.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type client struct {
	sock   *websocket.Conn
	cancel context.CancelFunc
}

// Hub tracks connected dashboard clients and fans broadcasts out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// HandleWS upgrades the request and registers the client. The read loop runs
// on a context detached from the request: net/http cancels r.Context() as
// soon as this handler returns, which would tear the client down while it is
// still waiting for broadcasts.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	sock, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // CORS handled by middleware
	})
	if err != nil {
		slog.Error("websocket accept failed", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &client{sock: sock, cancel: cancel}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	slog.Info("dashboard client connected", "remote", r.RemoteAddr)

	go func() {
		defer func() {
			h.remove(c)
			_ = sock.Close(websocket.StatusNormalClosure, "")
		}()
		for {
			if _, _, err := sock.Read(ctx); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends one message to every connected client. Clients whose write
// fails are dropped.
func (h *Hub) Broadcast(ctx context.Context, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("websocket marshal failed", "error", err)
		return
	}

	var dead []*client
	h.mu.RLock()
	for c := range h.clients {
		if err := c.sock.Write(ctx, websocket.MessageText, data); err != nil {
			slog.Debug("websocket write failed", "error", err)
			dead = append(dead, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range dead {
		h.remove(c)
	}
}

// ConnectionCount reports how many dashboard clients are attached.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		c.cancel()
		delete(h.clients, c)
		slog.Info("dashboard client disconnected")
	}
}
