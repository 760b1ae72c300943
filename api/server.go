// Package api assembles the HTTP surface: REST routes for auth and chat
// management plus the websocket endpoint.
package api

import (
	"log/slog"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"rentnest/gateway"
	"rentnest/services"
)

func New(log *slog.Logger, auths services.IAuthService, chats services.IChatService,
	gw *gateway.Gateway, secret []byte) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "rentnest-chat",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	authHandler := NewAuthHandler(log, auths)
	chatHandler := NewChatHandler(log, chats)

	authRoutes := app.Group("/api/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)

	chatRoutes := app.Group("/api/chat", BearerAuth(secret))
	chatRoutes.Post("/", chatHandler.Create)
	chatRoutes.Get("/:id", chatHandler.Get)
	chatRoutes.Get("/:id/search", chatHandler.Search)

	app.Get("/ws", gw.Upgrade, websocket.New(gw.Handle))

	return app
}
