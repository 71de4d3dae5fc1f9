package websocket

import (
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type MessageType string

const (
	MessageTypeApplicationSubmitted     MessageType = "APPLICATION_SUBMITTED"
	MessageTypeApplicationStatusChanged MessageType = "APPLICATION_STATUS_CHANGED"
	MessageTypeError                    MessageType = "ERROR"
)

// AdminTopic reaches every connected reviewer.
const AdminTopic = "admin"

// UserTopic reaches every connection of one account.
func UserTopic(userID uuid.UUID) string {
	return "user:" + userID.String()
}

type WebSocketMessage struct {
	Type      MessageType `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
	Topic     string      `json:"topic,omitempty"`
}

type Client struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Conn   *websocket.Conn
	Hub    *Hub
	Send   chan WebSocketMessage
	Topics map[string]bool
	mu     sync.RWMutex
}

type Hub struct {
	clients    map[*Client]bool
	broadcast  chan WebSocketMessage
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan WebSocketMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Broadcast queues a message for every client subscribed to message.Topic.
func (h *Hub) Broadcast(message WebSocketMessage) {
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}
	h.broadcast <- message
}

func (h *Hub) deliver(message WebSocketMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if !client.IsSubscribed(message.Topic) {
			continue
		}
		select {
		case client.Send <- message:
		default:
			// Slow consumer, drop it
			close(client.Send)
			delete(h.clients, client)
		}
	}
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (c *Client) Subscribe(topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Topics == nil {
		c.Topics = make(map[string]bool)
	}
	c.Topics[topic] = true
}

func (c *Client) IsSubscribed(topic string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Topics[topic]
}
