package repository

import (
	"context"
	"errors"

	"chat_presence_service/internal/chat/domain"
	"chat_presence_service/pkg/database"
)

// SessionRepository read the member_service session kept in redis
type SessionRepository interface {
	CheckSession(ctx context.Context, memberID, token string) (bool, error)
}

type redisSessionRepository struct {
	redis database.RedisRepository[domain.MemberSession]
}

// NewSessionRepository create a SessionRepository
func NewSessionRepository(redis database.RedisRepository[domain.MemberSession]) SessionRepository {
	return &redisSessionRepository{redis: redis}
}

// CheckSession token 必須是該 member 目前的 session 且未過期
func (r *redisSessionRepository) CheckSession(ctx context.Context, memberID, token string) (bool, error) {
	session, err := r.redis.Get(ctx, memberID)
	if errors.Is(err, database.ErrRedisNil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return session.Token == token && !session.IsExpired(), nil
}
