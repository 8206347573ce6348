package score

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/minigame-party/minigame_party/internal/middleware"
	"github.com/minigame-party/minigame_party/internal/user"
)

// Handler exposes score submission and leaderboard endpoints.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs a score HTTP handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type submitRequest struct {
	Game  string `json:"game"`
	Score int64  `json:"score"`
}

// Submit stores a score for the authenticated user and reports earned coins.
func (h *Handler) Submit(c *fiber.Ctx) error {
	ident, ok := middleware.Identity(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}

	var req submitRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	earned, err := h.service.Submit(c.UserContext(), ident.UserID, req.Game, req.Score)
	if err != nil {
		return user.Fail(c, h.logger, "submit score", err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"score": req.Score,
		"coins": earned,
	})
}

// Leaderboard returns the top scores for a game and window. Public read.
func (h *Handler) Leaderboard(c *fiber.Ctx) error {
	window, err := ParseWindow(c.Params("window"))
	if err != nil {
		return user.Fail(c, h.logger, "leaderboard", err)
	}

	entries, err := h.service.Leaderboard(c.UserContext(), c.Params("game"), window)
	if err != nil {
		return user.Fail(c, h.logger, "leaderboard", err)
	}

	return c.Status(http.StatusOK).JSON(entries)
}
