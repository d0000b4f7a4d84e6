package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/cyberio/backend/internal/config"
	"github.com/cyberio/backend/internal/core/ports"
	"github.com/cyberio/backend/internal/transport/http/dto"
)

const (
	localUserID    = "user_id"
	localSessionID = "session_id"

	SessionHeader = "X-Session-ID"
)

func bearerToken(c *fiber.Ctx) string {
	auth := c.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return strings.TrimSpace(auth[len(prefix):])
	}
	return ""
}

func AdminAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		apiKey := cfg.Auth.AdminAPIKey
		if apiKey == "" {
			return c.Next()
		}

		headerToken := c.Get("X-Admin-Token")
		if headerToken == "" {
			headerToken = bearerToken(c)
		}

		if subtle.ConstantTimeCompare([]byte(headerToken), []byte(apiKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: "unauthorized",
			})
		}

		return c.Next()
	}
}

// SessionAuth resolves the caller's session from X-Session-ID or a bearer
// token. With required set, requests without a valid session are rejected;
// otherwise they continue anonymously.
func SessionAuth(auth ports.AuthService, required bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Get(SessionHeader)
		if sessionID == "" {
			sessionID = bearerToken(c)
		}

		if sessionID != "" {
			userID, err := auth.Authenticate(c.UserContext(), sessionID)
			if err == nil {
				c.Locals(localUserID, userID)
				c.Locals(localSessionID, sessionID)
				return c.Next()
			}
		}

		if required {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: "Authentication required",
			})
		}
		return c.Next()
	}
}

// UserID returns the authenticated user, or "" for anonymous callers.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(localUserID).(string)
	return id
}

func SessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(localSessionID).(string)
	return id
}
