package handler

import (
	"ai-sitebuilder-be/internal/pkg/logger"
	"ai-sitebuilder-be/internal/pkg/serverutils"
	internalWS "ai-sitebuilder-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ActivityHandler upgrades browsers to the owner's live activity feed.
type ActivityHandler struct {
	hub       *internalWS.Hub
	jwtSecret string
	logger    logger.ILogger
}

func NewActivityHandler(hub *internalWS.Hub, jwtSecret string, log logger.ILogger) *ActivityHandler {
	return &ActivityHandler{
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

// ServeWs handles websocket requests from the peer.
func (h *ActivityHandler) ServeWs(c *fiber.Ctx) error {
	// Browsers cannot set headers on a websocket handshake, so the query wins.
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Missing token (Query 'token' or Header 'Authorization')", false))
	}

	ownerId, err := serverutils.ParseOwnerToken(h.jwtSecret, tokenStr)
	if err != nil {
		h.logger.Warn("ActivityHandler", "Invalid Token in WS Handshake", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Invalid token", false))
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("ActivityHandler", "Starting WebSocket session", map[string]interface{}{"owner_id": ownerId})
			internalWS.ServeWs(h.hub, conn, ownerId)
			h.logger.Info("ActivityHandler", "WebSocket session ended", map[string]interface{}{"owner_id": ownerId})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *ActivityHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/site-activity", h.ServeWs)
}
