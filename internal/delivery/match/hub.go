package match

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 32
)

// wsEvent is the envelope for every message pushed over a match socket.
type wsEvent struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload,omitempty"`
}

// Hub keeps one room of connected sockets per match and fans committed
// state changes out to all of them. It implements the Broadcaster the
// match use case publishes through.
type Hub struct {
	log   *zap.SugaredLogger
	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}
}

func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		log:   log,
		rooms: make(map[string]map[*client]struct{}),
	}
}

func (h *Hub) Broadcast(matchID string, event string, payload interface{}) {
	data, err := json.Marshal(wsEvent{Event: event, Payload: payload})
	if err != nil {
		h.log.Errorw("failed to marshal broadcast", "match_id", matchID, "event", event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[matchID] {
		if !c.enqueue(data) {
			// Slow consumer; drop the socket rather than block the match.
			c.close()
		}
	}
}

func (h *Hub) register(matchID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[matchID]
	if !ok {
		room = make(map[*client]struct{})
		h.rooms[matchID] = room
	}
	room[c] = struct{}{}
}

func (h *Hub) unregister(matchID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[matchID]
	if !ok {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, matchID)
	}
}

// client is one websocket viewer of a match. Writes go through the send
// channel so only writePump touches the connection for output.
type client struct {
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

// close signals writePump to stop. The send channel itself is never closed,
// so concurrent broadcasters cannot hit a closed channel.
func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

func (c *client) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// sendEvent queues a message for this socket only.
func (c *client) sendEvent(event string, payload interface{}) {
	data, err := json.Marshal(wsEvent{Event: event, Payload: payload})
	if err != nil {
		return
	}
	c.enqueue(data)
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
