package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/minigame-party/minigame_party/internal/user"
)

// RegisterUserRoutes wires authenticated profile endpoints.
func RegisterUserRoutes(r fiber.Router, users *user.Handler) {
	r.Get("/user/profile", users.Profile)
	r.Post("/user/avatar", users.UpdateAvatar)
}
