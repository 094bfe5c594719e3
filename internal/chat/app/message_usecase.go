package app

import (
	"context"
	"strings"
	"time"

	"chat_presence_service/internal/chat/domain"
	"chat_presence_service/internal/chat/repository"
	"chat_presence_service/pkg/config"
	errprocess "chat_presence_service/pkg/err"
	"chat_presence_service/pkg/logger"

	"go.uber.org/zap"
)

// EventPusher deliver an event to every live connection of a user, returns delivered count
type EventPusher interface {
	PushToUser(userID string, e domain.Event) int
}

// SendInput text / imageUrl / image(data url) 至少一項
type SendInput struct {
	Text     string
	ImageURL string
	Image    string
}

// MessageUseCase send / edit / delete / deleteChat / list
type MessageUseCase struct {
	msgRepo    repository.MessageRepository
	userRepo   repository.UserRepository
	attachRepo repository.AttachmentRepository
	pusher     EventPusher
	cfg        config.MessageConfig

	locks messageLocks
	now   func() time.Time
}

// NewMessageUseCase create MessageUseCase, userRepo / attachRepo 可為 nil
func NewMessageUseCase(
	msgRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	attachRepo repository.AttachmentRepository,
	pusher EventPusher,
	cfg config.MessageConfig,
) *MessageUseCase {
	return &MessageUseCase{
		msgRepo:    msgRepo,
		userRepo:   userRepo,
		attachRepo: attachRepo,
		pusher:     pusher,
		cfg:        cfg.WithDefaults(),
		now:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// Send persist then push new-message to the recipient
func (uc *MessageUseCase) Send(ctx context.Context, senderID, recipientID string, in SendInput) (*domain.Message, error) {
	if senderID == "" {
		return nil, errprocess.New(errprocess.ErrUnauthorized, "no verified identity")
	}
	if recipientID == "" {
		return nil, errprocess.New(errprocess.ErrValidation, "recipient is required")
	}
	if recipientID == senderID {
		return nil, errprocess.New(errprocess.ErrValidation, "cannot send a message to yourself")
	}

	msg := &domain.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Text:        strings.TrimSpace(in.Text),
		ImageURL:    strings.TrimSpace(in.ImageURL),
	}
	if in.Image == "" {
		if err := msg.Validate(uc.cfg.MaxTextLength); err != nil {
			return nil, err
		}
	} else if err := domain.ValidateTextLength(msg.Text, uc.cfg.MaxTextLength); err != nil {
		return nil, err
	}

	if err := uc.ensureUser(ctx, recipientID); err != nil {
		return nil, err
	}

	if in.Image != "" {
		url, err := uc.uploadImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		msg.ImageURL = url
	}

	msg.CreatedAt = uc.now()
	if _, err := uc.msgRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	uc.push(recipientID, domain.NewMessageEvent(*msg))
	return msg, nil
}

// Edit only the sender may change the text
func (uc *MessageUseCase) Edit(ctx context.Context, requesterID, messageID, newText string) (*domain.Message, error) {
	if requesterID == "" {
		return nil, errprocess.New(errprocess.ErrUnauthorized, "no verified identity")
	}

	unlock := uc.locks.lock(messageID)
	defer unlock()

	msg, err := uc.loadOwned(ctx, requesterID, messageID)
	if err != nil {
		return nil, err
	}

	newText = strings.TrimSpace(newText)
	if newText == "" && msg.ImageURL == "" {
		return nil, errprocess.New(errprocess.ErrValidation, "text is required")
	}
	if err := domain.ValidateTextLength(newText, uc.cfg.MaxTextLength); err != nil {
		return nil, err
	}

	updated, err := uc.msgRepo.Update(ctx, messageID, domain.TextPatch{Text: newText, EditedAt: uc.now()})
	if err != nil {
		return nil, err
	}

	uc.push(updated.RecipientID, domain.NewEditedMessageEvent(*updated))
	return updated, nil
}

// Delete unsend, only the sender may delete
func (uc *MessageUseCase) Delete(ctx context.Context, requesterID, messageID string) error {
	if requesterID == "" {
		return errprocess.New(errprocess.ErrUnauthorized, "no verified identity")
	}

	unlock := uc.locks.lock(messageID)
	defer unlock()

	msg, err := uc.loadOwned(ctx, requesterID, messageID)
	if err != nil {
		return err
	}

	ok, err := uc.msgRepo.Delete(ctx, messageID)
	if err != nil {
		return err
	}
	if !ok {
		return errprocess.New(errprocess.ErrNotFound, "message %s", messageID)
	}

	uc.push(msg.RecipientID, domain.NewMessageDeletedEvent(messageID))
	return nil
}

// DeleteChat either participant may clear the whole thread
func (uc *MessageUseCase) DeleteChat(ctx context.Context, requesterID, otherUserID string) (int64, error) {
	if requesterID == "" {
		return 0, errprocess.New(errprocess.ErrUnauthorized, "no verified identity")
	}
	if otherUserID == "" {
		return 0, errprocess.New(errprocess.ErrValidation, "chat participant is required")
	}
	if err := uc.ensureUser(ctx, otherUserID); err != nil {
		return 0, err
	}

	count, err := uc.msgRepo.DeleteAllBetween(ctx, requesterID, otherUserID)
	if err != nil {
		return 0, err
	}

	uc.push(otherUserID, domain.NewChatClearedEvent(requesterID))
	return count, nil
}

// List chat history oldest first
func (uc *MessageUseCase) List(ctx context.Context, requesterID, otherUserID string) ([]domain.Message, error) {
	if requesterID == "" {
		return nil, errprocess.New(errprocess.ErrUnauthorized, "no verified identity")
	}
	if otherUserID == "" {
		return nil, errprocess.New(errprocess.ErrValidation, "chat participant is required")
	}
	if err := uc.ensureUser(ctx, otherUserID); err != nil {
		return nil, err
	}

	messages, err := uc.msgRepo.ListBetween(ctx, requesterID, otherUserID)
	if err != nil {
		return nil, err
	}

	for _, m := range messages {
		if !m.IsParticipant(requesterID) {
			return nil, errprocess.New(errprocess.ErrForbidden, "message %s is not in this chat", m.ID)
		}
	}
	return messages, nil
}

func (uc *MessageUseCase) loadOwned(ctx context.Context, requesterID, messageID string) (*domain.Message, error) {
	msg, err := uc.msgRepo.Get(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID != requesterID {
		return nil, errprocess.New(errprocess.ErrForbidden, "message %s belongs to another user", messageID)
	}
	return msg, nil
}

// ensureUser 沒有 user directory 時不檢查
func (uc *MessageUseCase) ensureUser(ctx context.Context, userID string) error {
	if uc.userRepo == nil {
		return nil
	}
	ok, err := uc.userRepo.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return errprocess.New(errprocess.ErrNotFound, "user %s", userID)
	}
	return nil
}

func (uc *MessageUseCase) uploadImage(ctx context.Context, raw string) (string, error) {
	if uc.attachRepo == nil {
		return "", errprocess.New(errprocess.ErrValidation, "image upload is not available")
	}
	img, err := repository.DecodeImage(raw, uc.cfg.MaxImageBytes)
	if err != nil {
		return "", err
	}
	return uc.attachRepo.Upload(ctx, img)
}

func (uc *MessageUseCase) push(userID string, e domain.Event) {
	if uc.pusher == nil {
		return
	}
	n := uc.pusher.PushToUser(userID, e)
	logger.Log.Debug("event pushed",
		zap.String("type", string(e.Type)),
		zap.String("user_id", userID),
		zap.Int("connections", n),
	)
}
