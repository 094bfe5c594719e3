package app

import (
	"context"

	"chat_presence_service/internal/chat/domain"
	"chat_presence_service/internal/chat/repository"

	"github.com/samber/lo"
)

// PresenceReader read side of ConnectionRegistry
type PresenceReader interface {
	IsOnline(userID string) bool
	OnlineSet() []string
}

// ContactUseCase sidebar contact list with online flag
type ContactUseCase struct {
	userRepo repository.UserRepository
	presence PresenceReader
}

// NewContactUseCase create ContactUseCase, userRepo 可為 nil
func NewContactUseCase(userRepo repository.UserRepository, presence PresenceReader) *ContactUseCase {
	return &ContactUseCase{userRepo: userRepo, presence: presence}
}

// List every known user except requester
// 沒有 user directory 時只能列出在線的人
func (uc *ContactUseCase) List(ctx context.Context, requesterID string) ([]domain.Contact, error) {
	if uc.userRepo == nil {
		online := lo.Without(uc.presence.OnlineSet(), requesterID)
		return lo.Map(online, func(id string, _ int) domain.Contact {
			return domain.Contact{ID: id, Online: true}
		}), nil
	}

	contacts, err := uc.userRepo.ListExcept(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return lo.Map(contacts, func(c domain.Contact, _ int) domain.Contact {
		c.Online = uc.presence.IsOnline(c.ID)
		return c
	}), nil
}
