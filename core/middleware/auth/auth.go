// Package auth provides session-token authentication middleware.
package auth

import (
	"strings"

	"cost-sync/core/session"

	"github.com/gofiber/fiber/v2"
)

// SessionKey is the Locals key under which the resolved session is stored.
const SessionKey = "session"

// Config holds configuration for the auth middleware.
type Config struct {
	// Sessions is the store bearer tokens are resolved against.
	Sessions *session.Store
}

// New creates middleware that requires a live operator session.
// The token is taken from the Authorization header as "Bearer <token>".
func New(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := tokenFromHeader(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing bearer token",
			})
		}

		s, ok := cfg.Sessions.Get(token)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "session expired or unknown",
			})
		}

		c.Locals(SessionKey, s)
		return c.Next()
	}
}

// FromCtx returns the session resolved by the middleware, or nil on
// unauthenticated routes.
func FromCtx(c *fiber.Ctx) *session.Session {
	if s, ok := c.Locals(SessionKey).(*session.Session); ok {
		return s
	}
	return nil
}

func tokenFromHeader(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
