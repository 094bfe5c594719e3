package errprocess

import (
	"errors"
	"fmt"

	"chat_presence_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// 錯誤分類, 用 errors.Is 判斷
var (
	// ErrValidation missing or malformed content
	ErrValidation = errors.New("validation error")
	// ErrNotFound message id or chat participant unknown
	ErrNotFound = errors.New("not found")
	// ErrForbidden requester does not own the message
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthorized no verified identity
	ErrUnauthorized = errors.New("unauthorized")
	// ErrTransport a push to a live connection could not be delivered
	ErrTransport = errors.New("transport failure")
)

// Set log errMsg with fields, return an error carrying only errMsg
func Set(errMsg string, fields ...zap.Field) error {
	logger.Log.Error(errMsg, fields...)
	return errors.New(errMsg)
}

// New wrap kind with a formatted detail, e.g. New(ErrNotFound, "message %s", id)
func New(kind error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// StatusCode map error kind to http status
func StatusCode(err error) int {
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.Is(err, ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrTransport):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
