package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/websocket"
)

// writeTimeout bounds a single websocket write.
const writeTimeout = 3 * time.Second

// Message is the envelope for everything sent over the websocket.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message types.
const (
	MsgSnapshot = "snapshot"
	MsgError    = "error"
	MsgSelect   = "select"
	MsgGenerate = "generate"
)

func encodeMessage(typ string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: typ, Payload: raw})
}

// Hub fans messages out to every connected websocket client. Publish never
// blocks the caller; a single goroutine started by Run does the writes, so
// clients see messages in publish order.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	out     chan []byte
	logger  *log.Logger
}

// NewHub creates a hub with room for buffer pending messages.
func NewHub(buffer int, logger *log.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		out:     make(chan []byte, buffer),
		logger:  logger,
	}
}

// Add registers conn.
func (h *Hub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
}

// Remove unregisters conn.
func (h *Hub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish queues message for broadcast. When the queue is full the message
// is dropped; the next snapshot supersedes it anyway.
func (h *Hub) Publish(message []byte) {
	select {
	case h.out <- message:
	default:
		h.logger.Warn("websocket queue full, dropping message")
	}
}

// Run broadcasts queued messages until ctx is canceled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case msg := <-h.out:
			h.broadcast(msg)
		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

func (h *Hub) broadcast(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := conn.Write(ctx, websocket.MessageText, message)
		cancel()
		if err != nil {
			_ = conn.Close(websocket.StatusNormalClosure, "")
			delete(h.clients, conn)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		delete(h.clients, conn)
	}
}
