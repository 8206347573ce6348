package guest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/minigame-party/minigame_party/internal/middleware"
	"github.com/minigame-party/minigame_party/internal/session"
	"github.com/minigame-party/minigame_party/internal/user"
)

// Handler exposes guest login and upgrade endpoints.
type Handler struct {
	service  *Service
	sessions *session.Manager
	logger   *slog.Logger
}

// NewHandler constructs a guest HTTP handler.
func NewHandler(service *Service, sessions *session.Manager, logger *slog.Logger) *Handler {
	return &Handler{service: service, sessions: sessions, logger: logger}
}

type loginRequest struct {
	Nickname string `json:"nickname"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Nickname  string    `json:"nickname"`
	IsGuest   bool      `json:"is_guest"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login creates an ephemeral guest account and issues a short-lived token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	u, err := h.service.Create(c.UserContext(), req.Nickname, c.IP())
	if err != nil {
		return user.Fail(c, h.logger, "guest login", err)
	}

	token, exp, err := h.sessions.Issue(session.Identity{
		UserID:   u.ID,
		Username: u.Username,
		Nickname: u.Nickname(),
		IsGuest:  true,
	})
	if err != nil {
		return user.Fail(c, h.logger, "guest login", err)
	}

	return c.Status(http.StatusCreated).JSON(loginResponse{
		Token:     token,
		UserID:    u.ID,
		Username:  u.Username,
		Nickname:  u.Nickname(),
		IsGuest:   true,
		ExpiresAt: exp,
	})
}

type upgradeRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Upgrade converts the authenticated guest into a registered account and
// issues a fresh registered-session token.
func (h *Handler) Upgrade(c *fiber.Ctx) error {
	ident, ok := middleware.Identity(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}

	var req upgradeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	u, err := h.service.Upgrade(c.UserContext(), ident.UserID, req.Username, req.Password)
	if err != nil {
		return user.Fail(c, h.logger, "guest upgrade", err)
	}

	token, exp, err := h.sessions.Issue(session.Identity{
		UserID:   u.ID,
		Username: u.Username,
		IsGuest:  false,
	})
	if err != nil {
		return user.Fail(c, h.logger, "guest upgrade", err)
	}

	return c.Status(http.StatusOK).JSON(loginResponse{
		Token:     token,
		UserID:    u.ID,
		Username:  u.Username,
		IsGuest:   false,
		ExpiresAt: exp,
	})
}
