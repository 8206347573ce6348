package guest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/minigame-party/minigame_party/internal/clock"
	"github.com/minigame-party/minigame_party/internal/user"
)

const (
	minNicknameLen = 2
	maxNicknameLen = 20

	guestUsernamePrefix = "guest_"

	// createAttempts bounds the regenerate-and-retry loop on username
	// collisions. The synthetic name carries nanosecond time plus a random
	// suffix, so more than one retry is already unlikely.
	createAttempts = 5
)

// Service manages the guest account lifecycle: creation, one-way upgrade to a
// registered account, and expiry sweeps.
type Service struct {
	users     user.Repository
	retention time.Duration
	clock     clock.Clock
	logger    *slog.Logger
}

// NewService creates a guest lifecycle service. Guests older than retention
// are eligible for deletion by Sweep.
func NewService(users user.Repository, retention time.Duration, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{users: users, retention: retention, clock: clk, logger: logger}
}

// Create stores a new passwordless guest account under a synthetic unique
// username and returns it. Concurrent calls never produce colliding
// usernames: the storage constraint is the guarantee, the retry loop just
// absorbs the rare collision.
func (s *Service) Create(ctx context.Context, nickname, ip string) (user.User, error) {
	nickname = strings.TrimSpace(nickname)
	if len(nickname) < minNicknameLen || len(nickname) > maxNicknameLen {
		return user.User{}, fmt.Errorf("%w: nickname must be %d-%d characters", user.ErrValidation, minNicknameLen, maxNicknameLen)
	}

	now := s.clock.Now().UTC()
	var lastErr error
	for attempt := 0; attempt < createAttempts; attempt++ {
		u := user.User{
			Username:  syntheticUsername(now),
			IPAddress: ip,
			CreatedAt: now,
			Variant:   user.Guest{Nickname: nickname},
		}
		id, err := s.users.Create(ctx, u)
		if err == nil {
			u.ID = id
			return u, nil
		}
		if !errors.Is(err, user.ErrUsernameTaken) {
			return user.User{}, err
		}
		lastErr = err
	}
	return user.User{}, fmt.Errorf("generate guest username: %w", lastErr)
}

// Upgrade permanently converts a guest into a registered account. The
// transition is one-way: a record that is already registered rejects
// re-upgrade with ErrNotGuest, and a failed upgrade leaves the guest record
// unchanged.
func (s *Service) Upgrade(ctx context.Context, guestID int64, username, password string) (user.User, error) {
	if err := user.ValidateUsername(username); err != nil {
		return user.User{}, err
	}
	if err := user.ValidatePassword(password); err != nil {
		return user.User{}, err
	}

	// Cheap pre-check; the unique index closes the race.
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return user.User{}, user.ErrUsernameTaken
	} else if !errors.Is(err, user.ErrNotFound) {
		return user.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, err
	}

	if err := s.users.PromoteGuest(ctx, guestID, username, hash); err != nil {
		return user.User{}, err
	}

	s.logger.Info("guest upgraded", "user_id", guestID, "username", username)
	return s.users.FindByID(ctx, guestID)
}

// Sweep deletes every guest account older than the retention window and
// returns how many were removed. Safe to run concurrently with request
// traffic: the deletion conditions on the live guest flag, so an upgrade
// that completed first keeps its row.
func (s *Service) Sweep(ctx context.Context) (int64, error) {
	cutoff := s.clock.Now().UTC().Add(-s.retention)
	deleted, err := s.users.DeleteGuestsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("guest sweep: %w", err)
	}
	if deleted > 0 {
		s.logger.Info("guest sweep completed", "deleted", deleted, "cutoff", cutoff)
	}
	return deleted, nil
}

func syntheticUsername(now time.Time) string {
	return fmt.Sprintf("%s%d_%s", guestUsernamePrefix, now.UnixNano(), uuid.NewString()[:4])
}
