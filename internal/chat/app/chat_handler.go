package app

import (
	errprocess "chat_presence_service/pkg/err"
	"chat_presence_service/pkg/middlewares"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SendMessageRequest body of POST /api/messages/send/:id
type SendMessageRequest struct {
	Text     string `json:"text" validate:"max=20000"`
	Image    string `json:"image"`
	ImageURL string `json:"imageUrl" validate:"omitempty,url"`
}

// EditMessageRequest body of PUT /api/messages/edit/:id
type EditMessageRequest struct {
	Text string `json:"text" validate:"max=20000"`
}

// ErrorResponse error body
type ErrorResponse struct {
	Error string `json:"error"`
}

// PresenceResponse body of GET /api/presence
type PresenceResponse struct {
	OnlineUsers []string `json:"onlineUsers"`
}

// DeleteMessageResponse body of DELETE /api/messages/delete/:id
type DeleteMessageResponse struct {
	MessageID string `json:"messageId"`
}

// DeleteChatResponse body of DELETE /api/messages/chat/:userId
type DeleteChatResponse struct {
	Deleted int64 `json:"deleted"`
}

// ChatHandler REST surface of the message service
type ChatHandler struct {
	messageUC *MessageUseCase
	contactUC *ContactUseCase
	presence  PresenceReader
	validate  *validator.Validate
}

// NewChatHandler create ChatHandler
func NewChatHandler(messageUC *MessageUseCase, contactUC *ContactUseCase, presence PresenceReader) *ChatHandler {
	return &ChatHandler{
		messageUC: messageUC,
		contactUC: contactUC,
		presence:  presence,
		validate:  validator.New(),
	}
}

func (h *ChatHandler) errorResponse(c *fiber.Ctx, err error) error {
	status := errprocess.StatusCode(err)
	if status >= fiber.StatusInternalServerError {
		// 內部錯誤只寫 log, 不回給 client
		public := errprocess.Set("internal server error",
			zap.String("path", c.Path()),
			zap.String("member_id", middlewares.MemberID(c)),
			zap.Error(err),
		)
		return c.Status(status).JSON(ErrorResponse{Error: public.Error()})
	}
	return c.Status(status).JSON(ErrorResponse{Error: err.Error()})
}

func (h *ChatHandler) parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return errprocess.New(errprocess.ErrValidation, "invalid body")
	}
	if err := h.validate.Struct(out); err != nil {
		return errprocess.New(errprocess.ErrValidation, "%s", err.Error())
	}
	return nil
}

// Contacts list users for the sidebar
// @Summary List contacts
// @Description Every known user except the requester, with online flag
// @Tags Messages
// @Produce json
// @Success 200 {array} domain.Contact
// @Failure 401 {object} ErrorResponse
// @Router /api/messages/users [get]
func (h *ChatHandler) Contacts(c *fiber.Ctx) error {
	contacts, err := h.contactUC.List(c.UserContext(), middlewares.MemberID(c))
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(contacts)
}

// List chat history with a peer
// @Summary List messages
// @Description Messages between the requester and :id, oldest first
// @Tags Messages
// @Produce json
// @Param id path string true "peer user id"
// @Success 200 {array} domain.Message
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/messages/{id} [get]
func (h *ChatHandler) List(c *fiber.Ctx) error {
	messages, err := h.messageUC.List(c.UserContext(), middlewares.MemberID(c), c.Params("id"))
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(messages)
}

// Send a message to a peer
// @Summary Send message
// @Tags Messages
// @Accept json
// @Produce json
// @Param id path string true "recipient user id"
// @Param body body SendMessageRequest true "text, image data url or imageUrl"
// @Success 201 {object} domain.Message
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/messages/send/{id} [post]
func (h *ChatHandler) Send(c *fiber.Ctx) error {
	var req SendMessageRequest
	if err := h.parseBody(c, &req); err != nil {
		return h.errorResponse(c, err)
	}

	msg, err := h.messageUC.Send(c.UserContext(), middlewares.MemberID(c), c.Params("id"), SendInput{
		Text:     req.Text,
		ImageURL: req.ImageURL,
		Image:    req.Image,
	})
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// Edit message text
// @Summary Edit message
// @Tags Messages
// @Accept json
// @Produce json
// @Param id path string true "message id"
// @Param body body EditMessageRequest true "new text"
// @Success 200 {object} domain.Message
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/messages/edit/{id} [put]
func (h *ChatHandler) Edit(c *fiber.Ctx) error {
	var req EditMessageRequest
	if err := h.parseBody(c, &req); err != nil {
		return h.errorResponse(c, err)
	}

	msg, err := h.messageUC.Edit(c.UserContext(), middlewares.MemberID(c), c.Params("id"), req.Text)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(msg)
}

// Delete unsend a message
// @Summary Delete message
// @Tags Messages
// @Produce json
// @Param id path string true "message id"
// @Success 200 {object} DeleteMessageResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/messages/delete/{id} [delete]
func (h *ChatHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.messageUC.Delete(c.UserContext(), middlewares.MemberID(c), id); err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(DeleteMessageResponse{MessageID: id})
}

// DeleteChat clear the whole chat with a peer
// @Summary Delete chat
// @Tags Messages
// @Produce json
// @Param userId path string true "peer user id"
// @Success 200 {object} DeleteChatResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/messages/chat/{userId} [delete]
func (h *ChatHandler) DeleteChat(c *fiber.Ctx) error {
	n, err := h.messageUC.DeleteChat(c.UserContext(), middlewares.MemberID(c), c.Params("userId"))
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(DeleteChatResponse{Deleted: n})
}

// Presence current online set
// @Summary Online users
// @Tags Presence
// @Produce json
// @Success 200 {object} PresenceResponse
// @Router /api/presence [get]
func (h *ChatHandler) Presence(c *fiber.Ctx) error {
	return c.JSON(PresenceResponse{OnlineUsers: h.presence.OnlineSet()})
}
