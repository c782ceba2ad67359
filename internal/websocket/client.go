package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cleberrangel/journey-goals-api/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// ServeWS upgrades the request and attaches the connection to the caller's
// user. Authentication middleware must have set "user_id".
func (h *Hub) ServeWS(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "Usuário não identificado",
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("Failed to upgrade WebSocket connection")
		return
	}

	logger.AuditWebSocket(c.Request.Context(), logger.AuditActionWSConnect, userID, c.ClientIP(), nil)

	client := &Client{
		conn:        conn,
		Send:        make(chan []byte, 256),
		UserID:      userID,
		Hub:         h,
		ConnectedAt: time.Now(),
		LastPing:    time.Now(),
	}

	if !h.attach(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump(c.ClientIP())
}

// readPump runs in its own goroutine; it is the only reader of the connection
func (c *Client) readPump(clientIP string) {
	defer func() {
		c.Hub.detach(c)
		c.conn.Close()
		logger.AuditWebSocket(context.Background(), logger.AuditActionWSDisconnect, c.UserID, clientIP, map[string]interface{}{
			"connected_for": time.Since(c.ConnectedAt).String(),
		})
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.LastPing = time.Now()
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Error().
					Err(err).
					Str("user_id", c.UserID).
					Msg("WebSocket connection closed unexpectedly")
			}
			break
		}
		c.handleMessage(message)
	}
}

// writePump runs in its own goroutine; it is the only writer of the connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
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

// handleMessage answers client pings; everything else is ignored
func (c *Client) handleMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.Hub.logger.Debug().
			Err(err).
			Str("user_id", c.UserID).
			Msg("Failed to unmarshal client message")
		return
	}

	if msg.Type == "ping" {
		c.SendMessage(Message{Type: TypePong, Timestamp: time.Now()})
	}
}

// SendMessage queues a message for this client only. It is dropped when the
// buffer is full or the client has already left the hub.
func (c *Client) SendMessage(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		c.Hub.logger.Error().
			Err(err).
			Str("user_id", c.UserID).
			Msg("Failed to marshal message for client")
		return
	}
	c.Hub.sendToClient(c, data)
}
