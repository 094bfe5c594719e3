package app

import (
	"sort"
	"sync"

	"chat_presence_service/pkg/logger"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ConnectionRegistry user id -> open connections, the only source of "who is online"
//
// mutation 讓 register / deregister 連同之後的 announce 依序完成,
// mu 只保護 map, 讀取可以同時進行
type ConnectionRegistry struct {
	mutation sync.Mutex
	mu       sync.RWMutex

	byUser map[string]map[string]Connection
	byConn map[string]Connection
	closed bool

	broadcaster *PresenceBroadcaster
}

// NewConnectionRegistry create a ConnectionRegistry, 由 main 建立並在 shutdown 時關閉
func NewConnectionRegistry() *ConnectionRegistry {
	r := &ConnectionRegistry{
		byUser: make(map[string]map[string]Connection),
		byConn: make(map[string]Connection),
	}
	r.broadcaster = NewPresenceBroadcaster(r)
	return r
}

// Register add conn to userID's set then announce, same conn id twice is a no-op
func (r *ConnectionRegistry) Register(userID string, conn Connection) bool {
	if userID == "" || conn == nil {
		return false
	}

	r.mutation.Lock()
	defer r.mutation.Unlock()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return false
	}
	if _, ok := r.byConn[conn.ID()]; ok {
		r.mu.Unlock()
		return false
	}
	set, ok := r.byUser[userID]
	if !ok {
		set = make(map[string]Connection)
		r.byUser[userID] = set
	}
	set[conn.ID()] = conn
	r.byConn[conn.ID()] = conn
	r.mu.Unlock()

	logger.Log.Debug("connection registered", zap.String("user_id", userID), zap.String("conn_id", conn.ID()))
	r.announce()
	return true
}

// Deregister remove conn from whatever user holds it then announce, no-op if already removed
func (r *ConnectionRegistry) Deregister(conn Connection) bool {
	if conn == nil {
		return false
	}

	r.mutation.Lock()
	defer r.mutation.Unlock()

	r.mu.Lock()
	removed := r.removeLocked(conn.ID())
	r.mu.Unlock()
	if !removed {
		return false
	}

	logger.Log.Debug("connection deregistered", zap.String("user_id", conn.UserID()), zap.String("conn_id", conn.ID()))
	r.announce()
	return true
}

// announce 呼叫者必須持有 mutation, 送失敗的連線移除後重新 announce 直到全部送達
func (r *ConnectionRegistry) announce() {
	for {
		dead := r.broadcaster.Announce()
		if len(dead) == 0 {
			return
		}

		r.mu.Lock()
		removed := 0
		for _, c := range dead {
			if r.removeLocked(c.ID()) {
				removed++
			}
		}
		r.mu.Unlock()

		for _, c := range dead {
			c.Close()
		}
		if removed == 0 {
			return
		}
	}
}

func (r *ConnectionRegistry) removeLocked(connID string) bool {
	conn, ok := r.byConn[connID]
	if !ok {
		return false
	}
	delete(r.byConn, connID)

	if set, ok := r.byUser[conn.UserID()]; ok {
		delete(set, connID)
		if len(set) == 0 {
			delete(r.byUser, conn.UserID())
		}
	}
	return true
}

// IsOnline userID has at least one open connection
func (r *ConnectionRegistry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID]) > 0
}

// OnlineSet sorted online user ids
func (r *ConnectionRegistry) OnlineSet() []string {
	r.mu.RLock()
	ids := lo.Keys(r.byUser)
	r.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// ConnectionsFor live connections of userID
func (r *ConnectionRegistry) ConnectionsFor(userID string) []Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Values(r.byUser[userID])
}

// Connections every registered connection
func (r *ConnectionRegistry) Connections() []Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Values(r.byConn)
}

// Shutdown close every connection and refuse further registration
func (r *ConnectionRegistry) Shutdown() {
	r.mutation.Lock()
	defer r.mutation.Unlock()

	r.mu.Lock()
	r.closed = true
	conns := lo.Values(r.byConn)
	r.byUser = make(map[string]map[string]Connection)
	r.byConn = make(map[string]Connection)
	r.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
	logger.Log.Info("connection registry shut down", zap.Int("closed", len(conns)))
}
