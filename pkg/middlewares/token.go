package middlewares

import (
	"context"
	"strings"

	"chat_presence_service/pkg/logger"
	"chat_presence_service/pkg/token"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	//QueryToken token in query name
	QueryToken = "auth"

	//CookieToken token in cookie name
	CookieToken = "jwt"

	//TokenMemberID get member form token, set c.locals name
	TokenMemberID = "MemberID"
	//TokenRole get role form token, set c.locals name
	TokenRole = "role"
)

// SessionChecker report whether token is still the member's active session
type SessionChecker interface {
	CheckSession(ctx context.Context, memberID, token string) (bool, error)
}

// JWTMiddleware validates JWT from Authorization header, query or cookie
// sessions 可為 nil, 此時不檢查 session 是否被撤銷
func JWTMiddleware(v *token.Verifier, sessions SessionChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := extractToken(c)
		if tokenStr == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing token",
			})
		}

		claims, err := v.ParseJWT(tokenStr)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		if sessions != nil {
			ok, err := sessions.CheckSession(c.UserContext(), claims.MemberID, tokenStr)
			if err != nil {
				logger.Log.Warn("session check failed", zap.String("member_id", claims.MemberID), zap.Error(err))
			}
			if !ok {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Session expired",
				})
			}
		}

		c.Locals(TokenMemberID, claims.MemberID)
		c.Locals(TokenRole, claims.Role)
		return c.Next()
	}
}

// OptionalJWT set member id when a valid token is present, never rejects
func OptionalJWT(v *token.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenStr := extractToken(c); tokenStr != "" {
			if claims, err := v.ParseJWT(tokenStr); err == nil {
				c.Locals(TokenMemberID, claims.MemberID)
				c.Locals(TokenRole, claims.Role)
			}
		}
		return c.Next()
	}
}

// MemberID get verified member id from c.Locals, "" when absent
func MemberID(c *fiber.Ctx) string {
	id, _ := c.Locals(TokenMemberID).(string)
	return id
}

func extractToken(c *fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	if q := c.Query(QueryToken); q != "" {
		return q
	}
	return c.Cookies(CookieToken)
}
