package app

import (
	"chat_presence_service/internal/chat/domain"
	"chat_presence_service/pkg/logger"

	"go.uber.org/zap"
)

type presenceSource interface {
	OnlineSet() []string
	Connections() []Connection
}

// PresenceBroadcaster push the full online set to every registered connection
type PresenceBroadcaster struct {
	source presenceSource
}

// NewPresenceBroadcaster create a PresenceBroadcaster
func NewPresenceBroadcaster(source presenceSource) *PresenceBroadcaster {
	return &PresenceBroadcaster{source: source}
}

// Announce best-effort, 回傳送不出去的連線交給呼叫者移除
func (b *PresenceBroadcaster) Announce() []Connection {
	event := domain.NewPresenceEvent(b.source.OnlineSet())

	var dead []Connection
	for _, c := range b.source.Connections() {
		if err := c.Send(event); err != nil {
			logger.Log.Warn("presence push failed",
				zap.String("conn_id", c.ID()),
				zap.String("user_id", c.UserID()),
				zap.Error(err),
			)
			dead = append(dead, c)
		}
	}
	return dead
}
