package repository

import (
	"context"
	"sort"
	"sync"

	"chat_presence_service/internal/chat/domain"
	errprocess "chat_presence_service/pkg/err"

	"github.com/google/uuid"
)

type storedMessage struct {
	msg domain.Message
	seq uint64
}

type memoryMessageRepository struct {
	mu       sync.RWMutex
	seq      uint64
	messages map[string]storedMessage
}

// NewMemoryMessageRepository in-process MessageRepository, storage: memory
func NewMemoryMessageRepository() MessageRepository {
	return &memoryMessageRepository{messages: make(map[string]storedMessage)}
}

func (r *memoryMessageRepository) Create(_ context.Context, msg *domain.Message) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	r.seq++
	r.messages[msg.ID] = storedMessage{msg: *msg, seq: r.seq}
	return msg.ID, nil
}

func (r *memoryMessageRepository) Get(_ context.Context, id string) (*domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.messages[id]
	if !ok {
		return nil, errprocess.New(errprocess.ErrNotFound, "message %s", id)
	}
	msg := s.msg
	return &msg, nil
}

func (r *memoryMessageRepository) ListBetween(_ context.Context, userA, userB string) ([]domain.Message, error) {
	r.mu.RLock()
	stored := make([]storedMessage, 0)
	for _, s := range r.messages {
		if domain.SameChat(s.msg.SenderID, s.msg.RecipientID, userA, userB) {
			stored = append(stored, s)
		}
	}
	r.mu.RUnlock()

	// createdAt 相同時依寫入順序
	sort.Slice(stored, func(i, j int) bool {
		if !stored[i].msg.CreatedAt.Equal(stored[j].msg.CreatedAt) {
			return stored[i].msg.CreatedAt.Before(stored[j].msg.CreatedAt)
		}
		return stored[i].seq < stored[j].seq
	})

	messages := make([]domain.Message, len(stored))
	for i, s := range stored {
		messages[i] = s.msg
	}
	return messages, nil
}

func (r *memoryMessageRepository) Update(_ context.Context, id string, patch domain.TextPatch) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.messages[id]
	if !ok {
		return nil, errprocess.New(errprocess.ErrNotFound, "message %s", id)
	}
	s.msg.Apply(patch)
	r.messages[id] = s
	msg := s.msg
	return &msg, nil
}

func (r *memoryMessageRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.messages[id]; !ok {
		return false, nil
	}
	delete(r.messages, id)
	return true, nil
}

func (r *memoryMessageRepository) DeleteAllBetween(_ context.Context, userA, userB string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for id, s := range r.messages {
		if domain.SameChat(s.msg.SenderID, s.msg.RecipientID, userA, userB) {
			delete(r.messages, id)
			count++
		}
	}
	return count, nil
}
