package app

import (
	"sync"
	"testing"
	"time"

	"chat_presence_service/internal/chat/domain"
	"chat_presence_service/pkg/config"
	errprocess "chat_presence_service/pkg/err"
	"chat_presence_service/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frame struct {
	messageType int
	data        []byte
}

type fakeFrameWriter struct {
	mu     sync.Mutex
	frames []frame
	closed bool
}

func (w *fakeFrameWriter) SetWriteDeadline(time.Time) error { return nil }

func (w *fakeFrameWriter) WriteMessage(messageType int, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.frames = append(w.frames, frame{messageType: messageType, data: data})
	return nil
}

func (w *fakeFrameWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *fakeFrameWriter) snapshot() ([]frame, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]frame, len(w.frames))
	copy(out, w.frames)
	return out, w.closed
}

func testWebsocketConfig(buffer int) config.WebsocketConfig {
	return config.WebsocketConfig{SendBuffer: buffer, PongWait: time.Hour}.WithDefaults()
}

func TestConnectionStateMachine(t *testing.T) {
	c := newWSConnection(&fakeFrameWriter{}, testWebsocketConfig(1))
	assert.Equal(t, StateConnecting, c.State())

	assert.False(t, c.activate())
	assert.False(t, c.authenticate(""))
	assert.Equal(t, StateConnecting, c.State())

	require.True(t, c.authenticate("alice"))
	assert.Equal(t, StateAuthenticated, c.State())
	assert.False(t, c.authenticate("mallory"))
	assert.Equal(t, "alice", c.UserID())

	require.True(t, c.activate())
	assert.Equal(t, StateActive, c.State())

	c.Close()
	c.Close()
	assert.Equal(t, StateClosed, c.State())
	assert.Equal(t, "closed", c.State().String())
}

func TestConnectionWritePump(t *testing.T) {
	logger.SetNewNop()
	w := &fakeFrameWriter{}
	c := newWSConnection(w, testWebsocketConfig(4))

	done := make(chan struct{})
	go func() {
		c.writePump()
		close(done)
	}()

	require.NoError(t, c.Send(domain.NewMessageDeletedEvent("m1")))
	assert.Eventually(t, func() bool {
		frames, _ := w.snapshot()
		return len(frames) == 1
	}, time.Second, 5*time.Millisecond)

	c.Close()
	<-done

	frames, closed := w.snapshot()
	assert.True(t, closed)
	require.Len(t, frames, 2)
	assert.Equal(t, websocket.TextMessage, frames[0].messageType)
	assert.JSONEq(t, `{"type":"message-deleted","payload":{"messageId":"m1"}}`, string(frames[0].data))
	assert.Equal(t, websocket.CloseMessage, frames[1].messageType)

	err := c.Send(domain.NewMessageDeletedEvent("m2"))
	assert.ErrorIs(t, err, errprocess.ErrTransport)
}

func TestConnectionSendNeverBlocks(t *testing.T) {
	logger.SetNewNop()
	// 沒有 writePump 消化, queue 滿了就是 transport failure
	c := newWSConnection(&fakeFrameWriter{}, testWebsocketConfig(2))

	require.NoError(t, c.Send(domain.NewChatClearedEvent("a")))
	require.NoError(t, c.Send(domain.NewChatClearedEvent("a")))

	finished := make(chan error, 1)
	go func() { finished <- c.Send(domain.NewChatClearedEvent("a")) }()

	select {
	case err := <-finished:
		assert.ErrorIs(t, err, errprocess.ErrTransport)
	case <-time.After(time.Second):
		t.Fatal("Send blocked on a full queue")
	}
}
