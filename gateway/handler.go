package gateway

import (
	"log/slog"
	"strings"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"rentnest/auth"
	"rentnest/services"
)

const claimsLocal = "claims"

type Gateway struct {
	log        *slog.Logger
	chats      services.IChatService
	secret     []byte
	bufferSize int
}

func NewGateway(log *slog.Logger, chats services.IChatService, secret []byte, bufferSize int) *Gateway {
	return &Gateway{log: log, chats: chats, secret: secret, bufferSize: bufferSize}
}

// Upgrade authenticates the websocket handshake. The token travels in the
// "token" query parameter or a Bearer header; a missing or invalid token
// rejects the request before any upgrade happens.
func (g *Gateway) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	}
	if token == "" {
		return fiber.ErrUnauthorized
	}

	claims, err := auth.ValidateToken(token, g.secret)
	if err != nil {
		g.log.Debug("Websocket handshake rejected", "error", err)
		return fiber.ErrUnauthorized
	}

	c.Locals(claimsLocal, claims)
	return c.Next()
}

// Handle serves one upgraded connection until it closes.
func (g *Gateway) Handle(conn *websocket.Conn) {
	claims, ok := conn.Locals(claimsLocal).(*auth.CustomClaims)
	if !ok {
		g.log.Error("Websocket connection without claims, closing")
		conn.Close()
		return
	}

	g.log.Info("Websocket connected", "user_id", claims.UserID)
	newClient(g.log, conn, g.chats, claims.UserID, claims.Username, g.bufferSize).run()
	g.log.Info("Websocket disconnected", "user_id", claims.UserID)
}
