package user

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/minigame-party/minigame_party/internal/middleware"
	"github.com/minigame-party/minigame_party/internal/session"
)

// Handler exposes registration, login and profile endpoints.
type Handler struct {
	service  *Service
	sessions *session.Manager
	logger   *slog.Logger
}

// NewHandler constructs a user HTTP handler.
func NewHandler(service *Service, sessions *session.Manager, logger *slog.Logger) *Handler {
	return &Handler{service: service, sessions: sessions, logger: logger}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Nickname  string    `json:"nickname,omitempty"`
	Coins     int64     `json:"coins"`
	IsGuest   bool      `json:"is_guest"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Register creates a registered account and signs the caller in.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	u, err := h.service.Register(c.UserContext(), req.Username, req.Password, c.IP())
	if err != nil {
		return h.fail(c, "register", err)
	}

	resp, err := h.signIn(u)
	if err != nil {
		return h.fail(c, "register", err)
	}
	return c.Status(http.StatusCreated).JSON(resp)
}

// Login verifies credentials and issues a session token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	u, err := h.service.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return h.fail(c, "login", err)
	}

	resp, err := h.signIn(u)
	if err != nil {
		return h.fail(c, "login", err)
	}
	return c.Status(http.StatusOK).JSON(resp)
}

// Profile returns the authenticated user's account data.
func (h *Handler) Profile(c *fiber.Ctx) error {
	ident, ok := middleware.Identity(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}

	u, err := h.service.Profile(c.UserContext(), ident.UserID)
	if err != nil {
		return h.fail(c, "profile", err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"user_id":    u.ID,
		"username":   u.Username,
		"nickname":   u.Nickname(),
		"coins":      u.Coins,
		"avatar":     u.Avatar,
		"is_guest":   u.IsGuest(),
		"created_at": u.CreatedAt,
	})
}

type avatarRequest struct {
	Avatar string `json:"avatar"`
}

// UpdateAvatar stores a new avatar image payload.
func (h *Handler) UpdateAvatar(c *fiber.Ctx) error {
	ident, ok := middleware.Identity(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}

	var req avatarRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.UpdateAvatar(c.UserContext(), ident.UserID, req.Avatar); err != nil {
		return h.fail(c, "update avatar", err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "avatar saved"})
}

func (h *Handler) signIn(u User) (authResponse, error) {
	token, exp, err := h.sessions.Issue(session.Identity{
		UserID:   u.ID,
		Username: u.Username,
		Nickname: u.Nickname(),
		IsGuest:  u.IsGuest(),
	})
	if err != nil {
		return authResponse{}, err
	}
	return authResponse{
		Token:     token,
		UserID:    u.ID,
		Username:  u.Username,
		Nickname:  u.Nickname(),
		Coins:     u.Coins,
		IsGuest:   u.IsGuest(),
		ExpiresAt: exp,
	}, nil
}

func (h *Handler) fail(c *fiber.Ctx, op string, err error) error {
	return Fail(c, h.logger, op, err)
}

// Fail converts a domain error into the HTTP error taxonomy: validation 400,
// auth 401, missing record 404, conflict 409, anything else an opaque 500
// that is logged but never exposed.
func Fail(c *fiber.Ctx, logger *slog.Logger, op string, err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrUsernameTaken), errors.Is(err, ErrNotGuest):
		return fiber.NewError(http.StatusConflict, err.Error())
	default:
		if logger != nil {
			logger.Error(op+" failed", "error", err, "path", c.Path())
		}
		return fiber.NewError(http.StatusInternalServerError, "internal error")
	}
}
