package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/FocuswithJustin/codemark/internal/logging"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Message is one client request on a WebSocket session. The remaining
// fields of the message are the request body of Op.
type Message struct {
	ID string `json:"id,omitempty"`
	Op string `json:"op"`
}

// Reply answers one Message.
type Reply struct {
	ID     string    `json:"id,omitempty"`
	Op     string    `json:"op"`
	OK     bool      `json:"ok"`
	Result any       `json:"result,omitempty"`
	Error  *APIError `json:"error,omitempty"`
}

// Client is one WebSocket session. readPump is the only sender on send;
// writePump closes done when it stops.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// Hub tracks open sessions.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

// NewHub creates a new WebSocket hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	logging.WebSocketEvent("client_connected", n, "session", c.id)
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	logging.WebSocketEvent("client_disconnected", n, "session", c.id)
}

// Count returns the number of open sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll closes every session's connection.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.conn.Close()
	}
}

func (s *Server) upgrader() *websocket.Upgrader {
	cors := s.cors()
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return cors.OriginAllowed(r.Header.Get("Origin"))
		},
	}
}

// handleWebSocket upgrades the connection and starts a session. Each text
// message is one operation; each gets exactly one reply.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.cors().OriginAllowed(r.Header.Get("Origin")) {
		logging.SecurityEvent("websocket_origin_rejected", "api", "origin", r.Header.Get("Origin"))
		respondError(w, http.StatusForbidden, "FORBIDDEN", "Origin not allowed")
		return
	}

	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		logging.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, 16),
		done: make(chan struct{}),
	}
	s.hub.add(client)

	go client.writePump()
	go s.readPump(logging.WithRequestID(context.WithoutCancel(r.Context()), client.id), client)
}

// readPump reads messages, runs them and queues the replies.
func (s *Server) readPump(ctx context.Context, c *Client) {
	defer func() {
		close(c.send)
		s.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(s.cfg.MaxBodyBytes)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Error("websocket unexpected close", "session", c.id, "error", err)
			}
			return
		}

		out, err := json.Marshal(s.reply(ctx, data))
		if err != nil {
			logging.Error("failed to marshal reply", "session", c.id, "error", err)
			continue
		}
		select {
		case c.send <- out:
		case <-c.done:
			return
		}
	}
}

func (s *Server) reply(ctx context.Context, data []byte) Reply {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Reply{Error: &APIError{Code: "INVALID_JSON", Message: err.Error()}}
	}

	result, err := s.execute(ctx, msg.Op, data)
	if err != nil {
		_, code := errorStatus(err)
		return Reply{ID: msg.ID, Op: msg.Op, Error: &APIError{Code: code, Message: err.Error()}}
	}
	return Reply{ID: msg.ID, Op: msg.Op, OK: true, Result: result}
}

// writePump writes replies and keeps the connection alive.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(c.done)
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
