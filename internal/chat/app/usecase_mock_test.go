package app

import (
	"context"
	"sync"

	"chat_presence_service/internal/chat/domain"
	"chat_presence_service/internal/chat/repository"
	errprocess "chat_presence_service/pkg/err"

	"github.com/stretchr/testify/mock"
)

// MockMessageRepository Mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// Create mock create message
func (m *MockMessageRepository) Create(ctx context.Context, msg *domain.Message) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

// Get mock get message
func (m *MockMessageRepository) Get(ctx context.Context, id string) (*domain.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// ListBetween mock list chat
func (m *MockMessageRepository) ListBetween(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	args := m.Called(ctx, userA, userB)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// Update mock update text
func (m *MockMessageRepository) Update(ctx context.Context, id string, patch domain.TextPatch) (*domain.Message, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// Delete mock delete message
func (m *MockMessageRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// DeleteAllBetween mock delete chat
func (m *MockMessageRepository) DeleteAllBetween(ctx context.Context, userA, userB string) (int64, error) {
	args := m.Called(ctx, userA, userB)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserRepository Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

// Exists mock member exists
func (m *MockUserRepository) Exists(ctx context.Context, memberID string) (bool, error) {
	args := m.Called(ctx, memberID)
	return args.Bool(0), args.Error(1)
}

// ListExcept mock list members
func (m *MockUserRepository) ListExcept(ctx context.Context, memberID string) ([]domain.Contact, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Contact), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockAttachmentRepository Mock AttachmentRepository
type MockAttachmentRepository struct {
	mock.Mock
}

// Upload mock upload image
func (m *MockAttachmentRepository) Upload(ctx context.Context, img repository.Image) (string, error) {
	args := m.Called(ctx, img)
	return args.String(0), args.Error(1)
}

// MockEventPusher Mock EventPusher
type MockEventPusher struct {
	mock.Mock
}

// PushToUser mock push
func (m *MockEventPusher) PushToUser(userID string, e domain.Event) int {
	args := m.Called(userID, e)
	return args.Int(0)
}

// fakeConnection records every event, fail=true simulates a dead transport
type fakeConnection struct {
	id     string
	userID string

	mu     sync.Mutex
	events []domain.Event
	fail   bool
	closed bool
}

func newFakeConnection(id, userID string) *fakeConnection {
	return &fakeConnection{id: id, userID: userID}
}

func (f *fakeConnection) ID() string     { return f.id }
func (f *fakeConnection) UserID() string { return f.userID }

func (f *fakeConnection) Send(e domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail || f.closed {
		return errprocess.New(errprocess.ErrTransport, "connection %s closed", f.id)
	}
	f.events = append(f.events, e)
	return nil
}

func (f *fakeConnection) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeConnection) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func (f *fakeConnection) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeConnection) received() []domain.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Event, len(f.events))
	copy(out, f.events)
	return out
}

// presenceSets online sets carried by every presence event received
func (f *fakeConnection) presenceSets() [][]string {
	var sets [][]string
	for _, e := range f.received() {
		if p, ok := e.Payload.(domain.PresencePayload); ok {
			sets = append(sets, p.OnlineUsers)
		}
	}
	return sets
}

func (f *fakeConnection) lastPresence() []string {
	sets := f.presenceSets()
	if len(sets) == 0 {
		return nil
	}
	return sets[len(sets)-1]
}
