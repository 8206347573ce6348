package user

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/minigame-party/minigame_party/internal/clock"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 20
	minPasswordLen = 6
	avatarPrefix   = "data:image/"
)

// Service manages registered account lifecycle and profile data.
type Service struct {
	repo  Repository
	clock clock.Clock
}

// NewService creates a new user service.
func NewService(repo Repository, clk clock.Clock) *Service {
	return &Service{repo: repo, clock: clk}
}

// ValidateUsername checks registered-username rules.
func ValidateUsername(username string) error {
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return validationf("username must be %d-%d characters", minUsernameLen, maxUsernameLen)
	}
	if strings.TrimSpace(username) != username {
		return validationf("username must not contain leading or trailing whitespace")
	}
	return nil
}

// ValidatePassword checks password rules.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return validationf("password must be at least %d characters", minPasswordLen)
	}
	return nil
}

// Register creates a registered account with a hashed password. The username
// pre-check lives in the storage constraint; a conflict is reported as
// ErrUsernameTaken regardless of which side detects it.
func (s *Service) Register(ctx context.Context, username, password, ip string) (User, error) {
	if err := ValidateUsername(username); err != nil {
		return User{}, err
	}
	if err := ValidatePassword(password); err != nil {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	u := User{
		Username:  username,
		IPAddress: ip,
		CreatedAt: s.clock.Now().UTC(),
		Variant:   Registered{PasswordHash: hash},
	}

	id, err := s.repo.Create(ctx, u)
	if err != nil {
		return User{}, err
	}
	u.ID = id
	return u, nil
}

// Authenticate verifies a registered login. Guest accounts cannot log in with
// a password; they only re-enter through their still-valid token or a fresh
// guest login.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}

	hash, ok := u.PasswordHash()
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Profile fetches the account behind an authenticated session.
func (s *Service) Profile(ctx context.Context, id int64) (User, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateAvatar stores a new avatar after checking it is an image data URL.
func (s *Service) UpdateAvatar(ctx context.Context, id int64, avatar string) error {
	if !strings.HasPrefix(avatar, avatarPrefix) {
		return validationf("avatar must be a %s payload", avatarPrefix)
	}
	return s.repo.UpdateAvatar(ctx, id, avatar)
}
