package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/minigame-party/minigame_party/internal/guest"
	"github.com/minigame-party/minigame_party/internal/user"
)

// RegisterAuthRoutes wires registration, login and guest-login endpoints.
func RegisterAuthRoutes(r fiber.Router, users *user.Handler, guests *guest.Handler, rateLimiter fiber.Handler) {
	if rateLimiter != nil {
		r.Post("/register", rateLimiter, users.Register)
		r.Post("/login", rateLimiter, users.Login)
		r.Post("/guest-login", rateLimiter, guests.Login)
		return
	}
	r.Post("/register", users.Register)
	r.Post("/login", users.Login)
	r.Post("/guest-login", guests.Login)
}
