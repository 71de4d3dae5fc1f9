package websocket

import (
	"context"
	"time"

	"bursary-portal-backend/config"
	"bursary-portal-backend/token"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthService defines a token validator interface
type AuthService interface {
	VerifyToken(token string) (*token.Payload, error)
}

// AdminChecker reports whether an account is on the reviewer allow-list.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

// WsHandler manages WebSocket requests and connections
type WsHandler struct {
	hub    *Hub
	auth   AuthService
	admins AdminChecker
}

func NewWsHandler(hub *Hub, auth AuthService, admins AdminChecker) *WsHandler {
	return &WsHandler{hub: hub, auth: auth, admins: admins}
}

// HandleWebSocket upgrades authenticated requests. Every client follows its
// own applications; reviewers also follow the admin topic.
func (h *WsHandler) HandleWebSocket(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	tokenStr := c.Cookies("access_token")
	if tokenStr == "" {
		config.Logger.Warn("WebSocket connection attempted without access token cookie")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Authentication required - no access token cookie found",
		})
	}

	payload, err := h.auth.VerifyToken(tokenStr)
	if err != nil {
		config.Logger.Warn("Invalid access token for WebSocket", zap.Error(err))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid or expired token",
		})
	}

	isAdmin, err := h.admins.IsAdmin(c.UserContext(), payload.UserID)
	if err != nil {
		config.Logger.Error("Failed to check admin allow-list for WebSocket",
			zap.String("userID", payload.UserID.String()), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success": false,
			"error":   "Could not verify access",
		})
	}

	return websocket.New(func(conn *websocket.Conn) {
		client := &Client{
			ID:     uuid.New(),
			UserID: payload.UserID,
			Conn:   conn,
			Hub:    h.hub,
			Send:   make(chan WebSocketMessage, 256),
		}
		client.Subscribe(UserTopic(payload.UserID))
		if isAdmin {
			client.Subscribe(AdminTopic)
		}

		h.hub.Register(client)

		config.Logger.Info("WebSocket client registered",
			zap.String("clientID", client.ID.String()),
			zap.String("userID", client.UserID.String()),
			zap.Bool("admin", isAdmin),
		)

		go client.writePump()
		client.readPump()
	})(c)
}

// readPump only drains the socket; clients have nothing to send.
func (c *Client) readPump() {
	defer func() {
		config.Logger.Info("WebSocket client disconnecting",
			zap.String("clientID", c.ID.String()),
			zap.String("userID", c.UserID.String()),
		)
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(4 * 1024)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				config.Logger.Warn("WebSocket unexpected close",
					zap.String("clientID", c.ID.String()),
					zap.Error(err),
				)
			}
			return
		}
	}
}

// writePump sends queued messages and keeps the connection alive
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Hub closed the channel
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteJSON(message); err != nil {
				config.Logger.Debug("WebSocket write error",
					zap.String("clientID", c.ID.String()),
					zap.Error(err),
				)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				config.Logger.Debug("WebSocket ping error",
					zap.String("clientID", c.ID.String()),
					zap.Error(err),
				)
				return
			}
		}
	}
}
