package router

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"sort"
	"testing"
	"time"

	"chat_presence_service/internal/chat/app"
	"chat_presence_service/internal/chat/domain"
	"chat_presence_service/internal/chat/repository"
	"chat_presence_service/pkg/config"
	"chat_presence_service/pkg/logger"
	"chat_presence_service/pkg/token"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	baseURL  string
	wsURL    string
	verifier *token.Verifier
	registry *app.ConnectionRegistry
}

func startServer(t *testing.T) *testServer {
	t.Helper()
	logger.SetNewNop()

	registry := app.NewConnectionRegistry()
	gateway := app.NewChatWebsocketHandler(registry, config.WebsocketConfig{})
	messageUC := app.NewMessageUseCase(repository.NewMemoryMessageRepository(), nil, nil, gateway, config.MessageConfig{})
	verifier, err := token.NewVerifier("e2e-secret", "test")
	require.NoError(t, err)

	f := fiber.New(fiber.Config{DisableStartupMessage: true})
	RegisterRoutes(f, Handlers{
		Chat:      app.NewChatHandler(messageUC, app.NewContactUseCase(nil, registry), registry),
		Websocket: gateway,
		Verifier:  verifier,
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = f.Listener(ln) }()

	t.Cleanup(func() {
		registry.Shutdown()
		_ = f.ShutdownWithTimeout(2 * time.Second)
	})

	addr := ln.Addr().String()
	return &testServer{
		baseURL:  "http://" + addr,
		wsURL:    "ws://" + addr + "/ws",
		verifier: verifier,
		registry: registry,
	}
}

func (s *testServer) token(t *testing.T, userID string) string {
	t.Helper()
	tk, err := s.verifier.GenerateJWT(userID, token.RoleMember)
	require.NoError(t, err)
	return tk
}

func (s *testServer) connect(t *testing.T, userID string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(s.wsURL+"?auth="+s.token(t, userID), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func (s *testServer) do(t *testing.T, method, path, userID string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.baseURL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+s.token(t, userID))
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// nextEvent skip frames until one of type want arrives
func nextEvent(t *testing.T, conn *websocket.Conn, want domain.EventType) domain.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		e, err := domain.DecodeEvent(data)
		require.NoError(t, err)
		if e.Type == want {
			return e
		}
	}
}

// waitPresence read presence events until the online set equals want
func waitPresence(t *testing.T, conn *websocket.Conn, want ...string) {
	t.Helper()
	sort.Strings(want)
	for {
		e := nextEvent(t, conn, domain.EventPresence)
		if assert.ObjectsAreEqual(want, e.Payload.(domain.PresencePayload).OnlineUsers) {
			return
		}
	}
}

func TestGatewayDeliversNewMessage(t *testing.T) {
	s := startServer(t)
	alice := s.connect(t, "alice")
	bob := s.connect(t, "bob")
	waitPresence(t, alice, "alice", "bob")
	waitPresence(t, bob, "alice", "bob")

	resp := s.do(t, http.MethodPost, "/api/messages/send/bob", "alice", map[string]string{"text": "x"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	e := nextEvent(t, bob, domain.EventNewMessage)
	msg := e.Payload.(domain.MessagePayload).Message
	assert.Equal(t, "x", msg.Text)
	assert.Equal(t, "alice", msg.SenderID)
	assert.Equal(t, "bob", msg.RecipientID)
}

func TestGatewayPushesToEveryDeviceOfRecipient(t *testing.T) {
	s := startServer(t)
	phone := s.connect(t, "bob")
	laptop := s.connect(t, "bob")
	waitPresence(t, phone, "bob")

	resp := s.do(t, http.MethodPost, "/api/messages/send/bob", "alice", map[string]string{"text": "both"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	for _, conn := range []*websocket.Conn{phone, laptop} {
		e := nextEvent(t, conn, domain.EventNewMessage)
		assert.Equal(t, "both", e.Payload.(domain.MessagePayload).Text)
	}
}

func TestGatewayPresenceExcludesDisconnected(t *testing.T) {
	s := startServer(t)
	alice := s.connect(t, "alice")
	bob := s.connect(t, "bob")
	carol := s.connect(t, "carol")
	waitPresence(t, alice, "alice", "bob", "carol")
	waitPresence(t, bob, "alice", "bob", "carol")

	require.NoError(t, carol.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	_ = carol.Close()

	waitPresence(t, alice, "alice", "bob")
	waitPresence(t, bob, "alice", "bob")
	assert.Equal(t, []string{"alice", "bob"}, s.registry.OnlineSet())
	assert.False(t, s.registry.IsOnline("carol"))
}

func TestGatewayHandshakeWithQueryUserID(t *testing.T) {
	s := startServer(t)
	conn, _, err := websocket.DefaultDialer.Dial(s.wsURL+"?userId=dave", nil)
	require.NoError(t, err)
	defer conn.Close()

	waitPresence(t, conn, "dave")
	assert.True(t, s.registry.IsOnline("dave"))
}

func TestGatewayAnonymousConnectionIsInert(t *testing.T) {
	s := startServer(t)
	anon, _, err := websocket.DefaultDialer.Dial(s.wsURL, nil)
	require.NoError(t, err)
	defer anon.Close()

	alice := s.connect(t, "alice")
	waitPresence(t, alice, "alice")
	assert.Equal(t, []string{"alice"}, s.registry.OnlineSet())

	require.NoError(t, anon.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, _, err = anon.ReadMessage()
	var netErr net.Error
	require.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.Timeout())
}

func TestEditDeleteAndClearAreRelayed(t *testing.T) {
	s := startServer(t)
	bob := s.connect(t, "bob")
	waitPresence(t, bob, "bob")

	resp := s.do(t, http.MethodPost, "/api/messages/send/bob", "alice", map[string]string{"text": "helo"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var sent domain.Message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sent))
	nextEvent(t, bob, domain.EventNewMessage)

	resp = s.do(t, http.MethodPut, "/api/messages/edit/"+sent.ID, "bob", map[string]string{"text": "hijack"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = s.do(t, http.MethodPut, "/api/messages/edit/"+sent.ID, "alice", map[string]string{"text": "hello"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	edited := nextEvent(t, bob, domain.EventEditedMessage).Payload.(domain.MessagePayload)
	assert.Equal(t, "hello", edited.Text)
	assert.True(t, edited.Edited)

	resp = s.do(t, http.MethodDelete, "/api/messages/delete/"+sent.ID, "alice", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	deleted := nextEvent(t, bob, domain.EventMessageDeleted).Payload.(domain.MessageDeletedPayload)
	assert.Equal(t, sent.ID, deleted.MessageID)

	resp = s.do(t, http.MethodDelete, "/api/messages/delete/"+sent.ID, "alice", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = s.do(t, http.MethodDelete, "/api/messages/chat/bob", "alice", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	cleared := nextEvent(t, bob, domain.EventChatCleared).Payload.(domain.ChatClearedPayload)
	assert.Equal(t, "alice", cleared.UserID)
}

func TestRESTSurface(t *testing.T) {
	s := startServer(t)

	t.Run("requires identity", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, "/api/messages/bob", "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("empty message is rejected", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, "/api/messages/send/bob", "alice", map[string]string{})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		var body app.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Contains(t, body.Error, "text or image is required")
	})

	t.Run("invalid image url", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, "/api/messages/send/bob", "alice", map[string]string{"imageUrl": "not a url"})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("list is ordered", func(t *testing.T) {
		for _, text := range []string{"one", "two"} {
			resp := s.do(t, http.MethodPost, "/api/messages/send/bob", "alice", map[string]string{"text": text})
			require.Equal(t, fiber.StatusCreated, resp.StatusCode)
		}
		resp := s.do(t, http.MethodGet, "/api/messages/alice", "bob", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var list []domain.Message
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
		require.Len(t, list, 2)
		assert.Equal(t, "one", list[0].Text)
		assert.Equal(t, "two", list[1].Text)
	})

	t.Run("presence and contacts", func(t *testing.T) {
		conn := s.connect(t, "bob")
		waitPresence(t, conn, "bob")

		resp := s.do(t, http.MethodGet, "/api/presence", "alice", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var presence app.PresenceResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&presence))
		assert.Equal(t, []string{"bob"}, presence.OnlineUsers)

		resp = s.do(t, http.MethodGet, "/api/messages/users", "alice", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var contacts []domain.Contact
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&contacts))
		assert.Equal(t, []domain.Contact{{ID: "bob", Online: true}}, contacts)
	})

	t.Run("websocket route needs upgrade", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, "/ws", "", nil)
		assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
	})

	t.Run("health", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, "/", "", nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}
