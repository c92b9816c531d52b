package server

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Event types published on the /api/events stream.
const (
	EventProofGenerated = "proof_generated"
	EventProofVerified  = "proof_verified"
)

// Event is a proof lifecycle notification for connected demo clients.
type Event struct {
	Type        string `json:"type"`
	ArtifactID  string `json:"artifact_id"`
	UserAddress string `json:"user_address,omitempty"`
	PoolID      int64  `json:"pool_id,omitempty"`
	Valid       *bool  `json:"valid,omitempty"`
	Timestamp   int64  `json:"timestamp"`
}

// eventClient represents a connected WebSocket subscriber
type eventClient struct {
	conn *websocket.Conn
	send chan []byte
	log  *logrus.Logger
}

// EventHub manages all WebSocket subscribers and fans events out to them.
type EventHub struct {
	clients    map[*eventClient]bool
	broadcast  chan []byte
	register   chan *eventClient
	unregister chan *eventClient
	log        *logrus.Logger
}

// NewEventHub creates a new EventHub
func NewEventHub(log *logrus.Logger) *EventHub {
	return &EventHub{
		clients:    make(map[*eventClient]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *eventClient),
		unregister: make(chan *eventClient),
		log:        log,
	}
}

// Run owns the subscriber map; all mutation goes through the channels.
func (h *EventHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.log.Infof("New event subscriber connected. Total subscribers: %d", len(h.clients))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.log.Infof("Event subscriber disconnected. Total subscribers: %d", len(h.clients))
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Publish broadcasts an event to all subscribers. Never blocks the caller.
func (h *EventHub) Publish(evt Event) {
	message, err := json.Marshal(evt)
	if err != nil {
		h.log.Errorf("Failed to marshal event: %v", err)
		return
	}
	select {
	case h.broadcast <- message:
	default:
		h.log.Warn("Event broadcast buffer full, dropping event")
	}
}

// handleWebSocket upgrades the connection and registers a subscriber.
func (h *EventHub) handleWebSocket(c *gin.Context, upgrader websocket.Upgrader) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorf("Failed to upgrade connection to WebSocket: %v", err)
		return
	}

	client := &eventClient{
		conn: conn,
		send: make(chan []byte, 256),
		log:  h.log,
	}
	h.register <- client

	go client.writePump()
	go client.readPump(h)
}

// readPump drains the connection so close frames and pongs are processed.
// Subscribers are read-only; inbound payloads are discarded.
func (c *eventClient) readPump(h *EventHub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4 * 1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Errorf("WebSocket read error: %v", err)
			}
			break
		}
	}
}

// writePump pushes broadcast messages and keepalive pings to the subscriber.
func (c *eventClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
