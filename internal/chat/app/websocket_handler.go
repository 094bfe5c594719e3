package app

import (
	"sync"
	"time"

	"chat_presence_service/internal/chat/domain"
	"chat_presence_service/pkg/config"
	"chat_presence_service/pkg/logger"
	"chat_presence_service/pkg/middlewares"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// QueryUserID handshake parameter when no token is presented
const QueryUserID = "userId"

// ChatWebsocketHandler gateway: handshake, registry binding, outbound relay
type ChatWebsocketHandler struct {
	registry *ConnectionRegistry
	cfg      config.WebsocketConfig
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(registry *ConnectionRegistry, cfg config.WebsocketConfig) *ChatWebsocketHandler {
	return &ChatWebsocketHandler{
		registry: registry,
		cfg:      cfg.WithDefaults(),
	}
}

// handshakeUserID verified member id first, then ?userId=
func handshakeUserID(conn *websocket.Conn) string {
	if id, ok := conn.Locals(middlewares.TokenMemberID).(string); ok && id != "" {
		return id
	}
	return conn.Query(QueryUserID)
}

// HandleConnection 是 WebSocket 連線的進入點, 回傳前會等 writePump 結束
func (h *ChatWebsocketHandler) HandleConnection(conn *websocket.Conn) {
	c := newWSConnection(conn, h.cfg)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.writePump()
	}()

	userID := handshakeUserID(conn)
	registered := false
	if c.authenticate(userID) {
		registered = h.registry.Register(userID, c) && c.activate()
		if !registered {
			logger.Log.Warn("websocket registration refused", zap.String("user_id", userID), zap.String("conn_id", c.ID()))
		}
	} else {
		logger.Log.Debug("websocket without identity stays inert", zap.String("conn_id", c.ID()))
	}
	logger.Log.Info("websocket open",
		zap.String("conn_id", c.ID()),
		zap.String("user_id", userID),
		zap.String("state", c.State().String()),
	)

	defer func() {
		if registered {
			h.registry.Deregister(c)
		}
		c.Close()
		wg.Wait()
		logger.Log.Info("websocket close", zap.String("conn_id", c.ID()), zap.String("user_id", userID))
	}()

	conn.SetReadLimit(h.cfg.ReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	//server發出ping之後client連線正常會回pong
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	})

	for {
		// client 送來的資料只用來維持連線
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Debug("websocket read error", zap.String("conn_id", c.ID()), zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	}
}

// PushToUser best-effort delivery, dead connections are closed and deregistered
func (h *ChatWebsocketHandler) PushToUser(userID string, e domain.Event) int {
	delivered := 0
	for _, c := range h.registry.ConnectionsFor(userID) {
		if err := c.Send(e); err != nil {
			logger.Log.Warn("event push failed",
				zap.String("type", string(e.Type)),
				zap.String("conn_id", c.ID()),
				zap.String("user_id", userID),
				zap.Error(err),
			)
			c.Close()
			h.registry.Deregister(c)
			continue
		}
		delivered++
	}
	return delivered
}
