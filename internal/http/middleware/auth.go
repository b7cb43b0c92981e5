package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"soundapi/internal/auth"
)

const (
	// UserIDLocalKey is the key used to store the authenticated user id in Fiber's context locals.
	UserIDLocalKey = "user_id"
	// UsernameLocalKey is the key used to store the authenticated username in Fiber's context locals.
	UsernameLocalKey = "username"
)

// RequireAuth verifies the Bearer token on the request and stores the
// authenticated identity in context locals. Requests without a valid token
// are rejected with 401 before reaching the handler.
func RequireAuth(tokens *auth.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(UserIDLocalKey, claims.UserID)
		c.Locals(UsernameLocalKey, claims.Username)

		return c.Next()
	}
}
