// Package hub fans badge updates out to the WebSocket connections of a browser.
package hub

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Connection represents a single WebSocket connection.
type Connection struct {
	ID        string
	BrowserID string
	Conn      *websocket.Conn
	Send      chan []byte
	mu        sync.Mutex
}

// Hub manages all WebSocket connections.
type Hub struct {
	// Connections indexed by connection ID
	connections map[string]*Connection

	// browsers maps browser ID to its set of connection IDs
	browsers map[string]map[string]bool

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *browserMessage

	mu sync.RWMutex
}

type browserMessage struct {
	BrowserID string
	Data      []byte
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]*Connection),
		browsers:    make(map[string]map[string]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan *browserMessage, 256),
	}
}

// Run starts the hub's main loop and returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.connections[conn.ID] = conn
			if h.browsers[conn.BrowserID] == nil {
				h.browsers[conn.BrowserID] = make(map[string]bool)
			}
			h.browsers[conn.BrowserID][conn.ID] = true
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.connections[conn.ID]; ok {
				delete(h.connections, conn.ID)
				if ids := h.browsers[conn.BrowserID]; ids != nil {
					delete(ids, conn.ID)
					if len(ids) == 0 {
						delete(h.browsers, conn.BrowserID)
					}
				}
				close(conn.Send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			for connID := range h.browsers[msg.BrowserID] {
				conn, ok := h.connections[connID]
				if !ok {
					continue
				}
				select {
				case conn.Send <- msg.Data:
				default:
					log.Printf("WARN: connection %s buffer full, closing", connID)
					go h.Unregister(conn)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// NewConnection creates a connection for a browser. It is not registered yet.
func (h *Hub) NewConnection(ws *websocket.Conn, browserID string) *Connection {
	return &Connection{
		ID:        uuid.New().String(),
		BrowserID: browserID,
		Conn:      ws,
		Send:      make(chan []byte, 16),
	}
}

// Register registers a connection with the hub.
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister unregisters a connection from the hub.
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// PublishJSON queues v for every connection of a browser. Browsers without
// a connection are skipped. It never blocks; when the queue is full the
// message is dropped.
func (h *Hub) PublishJSON(browserID string, v interface{}) error {
	if !h.HasConnections(browserID) {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- &browserMessage{BrowserID: browserID, Data: data}:
	default:
		log.Printf("WARN: broadcast queue full, dropping message for %s", browserID)
	}
	return nil
}

// ConnectionCount returns the number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// HasConnections reports whether a browser has any active connection.
func (h *Hub) HasConnections(browserID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.browsers[browserID]) > 0
}

// WriteMessage writes a message to the connection with proper locking.
func (c *Connection) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

// SetWriteDeadline sets the write deadline for the connection.
func (c *Connection) SetWriteDeadline(t time.Time) error {
	return c.Conn.SetWriteDeadline(t)
}

// Close closes the connection.
func (c *Connection) Close() error {
	return c.Conn.Close()
}
