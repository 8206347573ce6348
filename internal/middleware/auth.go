package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/minigame-party/minigame_party/internal/session"
)

const identityKey = "session_identity"

// SessionAuth returns a middleware that validates bearer tokens and stores
// the authenticated identity on the request context.
func SessionAuth(sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])

		ident, err := sessions.Parse(tokenStr)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}

		c.Locals(identityKey, ident)
		return c.Next()
	}
}

// Identity retrieves the authenticated identity stored by SessionAuth.
func Identity(c *fiber.Ctx) (session.Identity, bool) {
	ident, ok := c.Locals(identityKey).(session.Identity)
	return ident, ok
}
