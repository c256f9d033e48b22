package handlers

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// client is one websocket subscriber. Outbound frames go through a buffered
// channel drained by writePump so a slow consumer never blocks the engine;
// when the buffer is full the frame is dropped.
type client struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	ch     chan []byte
	closed bool
}

func newClient(conn *websocket.Conn) *client {
	return &client{conn: conn, ch: make(chan []byte, 32)}
}

func (c *client) enqueue(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.ch <- data:
	default:
		// consumer lagging badly, drop rather than stall the room
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}

func (c *client) writePump() {
	for data := range c.ch {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// Hub fans events out to every subscriber of a room. It implements
// services.Broadcaster and is a pure sink — it never feeds anything back
// into the engine.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*client]bool
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*client]bool)}
}

func (h *Hub) subscribe(roomID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.rooms[roomID]
	if !ok {
		subs = make(map[*client]bool)
		h.rooms[roomID] = subs
	}
	subs[c] = true
}

func (h *Hub) unsubscribe(roomID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.rooms[roomID]; ok {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// Publish serializes the event once and enqueues it on every subscriber.
// Enqueueing never blocks, so callers may hold room locks.
func (h *Hub) Publish(roomID string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("❌ [WS] failed to marshal event for room %s: %v", roomID, err)
		return
	}

	h.mu.RLock()
	subs := make([]*client, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		subs = append(subs, c)
	}
	h.mu.RUnlock()

	for _, c := range subs {
		c.enqueue(data)
	}
}
