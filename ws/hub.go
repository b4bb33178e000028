// ws/hub.go - Notification broadcaster
package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	// Time allowed to write a frame before the connection is considered dead
	writeWait = 10 * time.Second

	// Send protocol-level pings at this interval
	pingPeriod = 30 * time.Second

	// Per-client outbound queue; events are dropped when it fills
	sendBufferSize = 64
)

// client is one connected browser. Outbound frames go through the buffered
// send channel and a single write pump, never straight to the connection.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

// ready reports whether the client is still accepting frames.
func (c *client) ready() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// enqueue queues a frame without blocking. Frames to closing clients and
// frames that would overflow the buffer are dropped silently; delivery is
// best-effort.
func (c *client) enqueue(payload []byte) {
	if !c.ready() {
		return
	}
	select {
	case c.send <- payload:
	default:
		log.Printf("⚠️ Send buffer full for client %s, dropping event", c.id)
	}
}

func (c *client) shutdown() {
	c.once.Do(func() { close(c.done) })
}

// writePump drains the send channel onto the connection and keeps the
// connection alive with pings. Runs in its own goroutine per client.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// Hub tracks the open connection set and fans events out to it. All access
// to the set goes through the mutex; broadcasts check each client's
// readiness immediately before enqueueing.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*client)}
}

var defaultHub *Hub

// InitHub creates the process-wide hub.
func InitHub() *Hub {
	defaultHub = NewHub()
	return defaultHub
}

// GetHub returns the process-wide hub, nil before InitHub.
func GetHub() *Hub {
	return defaultHub
}

// Broadcast serializes the event once and pushes it to every connected
// client. Never returns an error: notification is a best-effort side
// effect and must not fail the mutation that triggered it.
func (h *Hub) Broadcast(event interface{}) {
	if h == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("⚠️ Failed to serialize broadcast event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.enqueue(payload)
	}
}

// Count returns the number of tracked connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	delete(h.clients, id)
	h.mu.Unlock()
}

// Handle runs the lifecycle of one connection and blocks until it closes.
// Meant to be wrapped by websocket.New in the route table.
func (h *Hub) Handle(conn *websocket.Conn) {
	c := &client{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}

	h.add(c)
	log.Printf("🔌 Client connected: %s (%d online)", c.id, h.Count())

	if payload, err := json.Marshal(ConnectionEstablished()); err == nil {
		c.enqueue(payload)
	}

	go c.writePump()
	h.readLoop(c)

	c.shutdown()
	h.remove(c.id)
	log.Printf("🔌 Client disconnected: %s (%d online)", c.id, h.Count())
}

// readLoop services inbound frames. The channel is broadcast-only; the
// only requests clients may make are liveness pings.
func (h *Hub) readLoop(c *client) {
	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("⚠️ Read error for client %s: %v", c.id, err)
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			if out, err := json.Marshal(Error("Failed to process message")); err == nil {
				c.enqueue(out)
			}
			continue
		}

		switch msg.Type {
		case EventPing:
			if out, err := json.Marshal(Pong()); err == nil {
				c.enqueue(out)
			}
		default:
			log.Printf("Unknown message type from client %s: %s", c.id, msg.Type)
		}
	}
}
