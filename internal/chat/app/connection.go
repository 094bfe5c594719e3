package app

import (
	"sync"
	"sync/atomic"
	"time"

	"chat_presence_service/internal/chat/domain"
	"chat_presence_service/pkg/config"
	errprocess "chat_presence_service/pkg/err"
	"chat_presence_service/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConnState connection lifecycle
type ConnState int32

const (
	// StateConnecting transport opened, no identity yet
	StateConnecting ConnState = iota
	// StateAuthenticated identity bound, not registered yet
	StateAuthenticated
	// StateActive registered, receives presence / message events
	StateActive
	// StateClosed terminal
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Connection one live transport session bound to at most one user
type Connection interface {
	ID() string
	UserID() string
	// Send never blocks, closed connection or full queue -> ErrTransport
	Send(e domain.Event) error
	Close()
}

// frameWriter 只需要 writePump 用到的部分, 測試可替換
type frameWriter interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type wsConnection struct {
	id     string
	userID string
	conn   frameWriter
	cfg    config.WebsocketConfig

	state     atomic.Int32
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newWSConnection(conn frameWriter, cfg config.WebsocketConfig) *wsConnection {
	return &wsConnection{
		id:   uuid.NewString(),
		conn: conn,
		cfg:  cfg,
		send: make(chan []byte, cfg.SendBuffer),
		done: make(chan struct{}),
	}
}

func (c *wsConnection) ID() string     { return c.id }
func (c *wsConnection) UserID() string { return c.userID }

func (c *wsConnection) State() ConnState {
	return ConnState(c.state.Load())
}

// authenticate bind identity exactly once
func (c *wsConnection) authenticate(userID string) bool {
	if userID == "" {
		return false
	}
	if !c.state.CompareAndSwap(int32(StateConnecting), int32(StateAuthenticated)) {
		return false
	}
	c.userID = userID
	return true
}

func (c *wsConnection) activate() bool {
	return c.state.CompareAndSwap(int32(StateAuthenticated), int32(StateActive))
}

func (c *wsConnection) Send(e domain.Event) error {
	if c.State() == StateClosed {
		return errprocess.New(errprocess.ErrTransport, "connection %s closed", c.id)
	}
	data, err := e.Encode()
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return errprocess.New(errprocess.ErrTransport, "connection %s closed", c.id)
	default:
	}

	select {
	case c.send <- data:
		return nil
	default:
		return errprocess.New(errprocess.ErrTransport, "connection %s send queue full", c.id)
	}
}

func (c *wsConnection) Close() {
	c.closeOnce.Do(func() {
		c.state.Store(int32(StateClosed))
		close(c.done)
	})
}

// writePump 唯一的寫入者, 結束時關閉底層連線讓 read loop 一起結束
func (c *wsConnection) writePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			if err := c.write(websocket.TextMessage, data); err != nil {
				logger.Log.Warn("websocket write failed",
					zap.String("conn_id", c.id),
					zap.String("user_id", c.userID),
					zap.Error(err),
				)
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				logger.Log.Debug("websocket ping failed", zap.String("conn_id", c.id), zap.Error(err))
				return
			}
		case <-c.done:
			_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *wsConnection) write(messageType int, data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}
