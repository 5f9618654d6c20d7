package handler

import (
	"jobmatch-be/internal/pkg/logger"
	"jobmatch-be/internal/pkg/serverutils"
	internalWS "jobmatch-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// StatusStreamHandler upgrades authenticated callers to a websocket that
// receives indexing status updates for their own documents.
type StatusStreamHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewStatusStreamHandler(hub *internalWS.Hub, log logger.ILogger) *StatusStreamHandler {
	return &StatusStreamHandler{hub: hub, logger: log}
}

func (h *StatusStreamHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/v1/indexing/ws", h.ServeWs)
}

// ServeWs takes the token from the "token" query parameter, which browsers
// can set on a websocket handshake, or from the Authorization header.
func (h *StatusStreamHandler) ServeWs(c *fiber.Ctx) error {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "Missing token")
	}

	caller, err := serverutils.ParseToken(tokenStr)
	if err != nil {
		h.logger.Warn("STREAM", "Rejected websocket handshake", map[string]interface{}{"error": err.Error()})
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Debug("STREAM", "Status stream opened", map[string]interface{}{"user_id": caller.UserId.String()})
		internalWS.Serve(h.hub, conn, caller.UserId)
		h.logger.Debug("STREAM", "Status stream closed", map[string]interface{}{"user_id": caller.UserId.String()})
	})(c)
}
