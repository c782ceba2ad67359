package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/cleberrangel/journey-goals-api/internal/logger"
	"github.com/cleberrangel/journey-goals-api/internal/metrics"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Hub keeps the open connections per user and fans messages out to them
type Hub struct {
	// Registered clients by user ID
	clients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mutex    sync.RWMutex
	stopOnce sync.Once
	logger   *zerolog.Logger
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	conn *websocket.Conn

	// Buffered channel of outbound messages
	Send chan []byte

	UserID string
	Hub    *Hub

	ConnectedAt time.Time
	LastPing    time.Time
}

// SaveProgress is pushed after every goal of a batch save
type SaveProgress struct {
	Type      string    `json:"type"`
	Week      string    `json:"week"`
	Processed int       `json:"processed"`
	Total     int       `json:"total"`
	GoalID    string    `json:"goalId,omitempty"`
	Title     string    `json:"title,omitempty"`
	Op        string    `json:"op"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	Progress  float64   `json:"progress"` // 0-100
	Timestamp time.Time `json:"timestamp"`
}

// Message represents a generic WebSocket message
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Message types
const (
	TypeConnection   = "connection"
	TypeProgress     = "progress"
	TypeSaveComplete = "save_complete"
	TypePong         = "pong"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.Global(),
	}
}

// Run starts the hub's main loop; it returns after Stop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case <-h.done:
			h.closeAll()
			return
		}
	}
}

// Stop ends Run and closes every connection
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// attach hands a client to Run; false once the hub is stopped
func (h *Hub) attach(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// detach hands a client back to Run; after Stop there is nothing to detach from
func (h *Hub) detach(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	if h.clients[client.UserID] == nil {
		h.clients[client.UserID] = make(map[*Client]bool)
	}
	h.clients[client.UserID][client] = true
	count := len(h.clients[client.UserID])
	h.mutex.Unlock()

	metrics.Get().IncrementWSConnection()

	h.logger.Info().
		Str("user_id", client.UserID).
		Int("user_connections", count).
		Msg("WebSocket client registered")

	client.SendMessage(Message{
		Type:      TypeConnection,
		Data:      map[string]string{"status": "connected"},
		Timestamp: time.Now(),
	})
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.removeLocked(client) {
		h.logger.Info().
			Str("user_id", client.UserID).
			Int("remaining_connections", len(h.clients[client.UserID])).
			Msg("WebSocket client unregistered")
	}
}

// removeLocked drops a client and closes its channel; caller holds the lock
func (h *Hub) removeLocked(client *Client) bool {
	clients, ok := h.clients[client.UserID]
	if !ok || !clients[client] {
		return false
	}
	delete(clients, client)
	close(client.Send)
	metrics.Get().DecrementWSConnection()

	if len(clients) == 0 {
		delete(h.clients, client.UserID)
	}
	return true
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// sendToClient queues data for one client. Send is only closed under the
// lock, so a client that was removed is never written to.
func (h *Hub) sendToClient(client *Client, data []byte) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if !h.clients[client.UserID][client] {
		return
	}
	select {
	case client.Send <- data:
		metrics.Get().IncrementWSMessageOut()
	default:
		h.logger.Warn().
			Str("user_id", client.UserID).
			Msg("Client send channel is full, dropping message")
	}
}

// SendToUser sends a message to all connections of a specific user. A
// connection whose buffer is full is dropped.
func (h *Hub) SendToUser(userID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("Failed to marshal message for user")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	clients, exists := h.clients[userID]
	if !exists {
		return
	}

	for client := range clients {
		select {
		case client.Send <- data:
			metrics.Get().IncrementWSMessageOut()
		default:
			h.logger.Warn().
				Str("user_id", userID).
				Msg("Client buffer full, closing connection")
			h.removeLocked(client)
		}
	}
}

// SendProgress fills in type, timestamp and percentage and pushes the update
func (h *Hub) SendProgress(userID string, progress SaveProgress) {
	progress.Type = TypeProgress
	progress.Timestamp = time.Now()
	if progress.Total > 0 {
		progress.Progress = float64(progress.Processed) / float64(progress.Total) * 100
	}
	h.SendToUser(userID, progress)
}

// SendSaveComplete tells the user's connections that a batch finished
func (h *Hub) SendSaveComplete(userID string, summary interface{}) {
	h.SendToUser(userID, Message{
		Type:      TypeSaveComplete,
		Data:      summary,
		Timestamp: time.Now(),
	})
}

// GetConnectionCount returns the total number of active connections
func (h *Hub) GetConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	count := 0
	for _, clients := range h.clients {
		count += len(clients)
	}
	return count
}

// GetUserConnectionCount returns the number of connections for a specific user
func (h *Hub) GetUserConnectionCount(userID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients[userID])
}
