package router

import (
	"chat_presence_service/internal/chat/app"
	"chat_presence_service/pkg/middlewares"
	"chat_presence_service/pkg/token"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/gofiber/websocket/v2"
)

// Handlers everything RegisterRoutes wires
type Handlers struct {
	Chat      *app.ChatHandler
	Websocket *app.ChatWebsocketHandler
	Verifier  *token.Verifier
	// Sessions 可為 nil, 不檢查 session 撤銷
	Sessions middlewares.SessionChecker
}

// RegisterRoutes 注册 chat 相關的路由
// @title Chat Presence Service API
// @version 1.0
// @description Presence and message delivery for one-to-one chat
// @host localhost:5001
// @BasePath /
func RegisterRoutes(r *fiber.App, h Handlers) {
	r.Get("/swagger/*", swagger.HandlerDefault)
	r.Get("/", app.ConnectCheck)
	r.Post("/debug", app.DebugLogFlag)

	r.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	r.Get("/ws", middlewares.OptionalJWT(h.Verifier), websocket.New(h.Websocket.HandleConnection))

	api := r.Group("/api", middlewares.JWTMiddleware(h.Verifier, h.Sessions))
	api.Get("/presence", h.Chat.Presence)

	messages := api.Group("/messages")
	messages.Get("/users", h.Chat.Contacts)
	messages.Post("/send/:id", h.Chat.Send)
	messages.Put("/edit/:id", h.Chat.Edit)
	messages.Delete("/delete/:id", h.Chat.Delete)
	messages.Delete("/chat/:userId", h.Chat.DeleteChat)
	messages.Get("/:id", h.Chat.List)
}
