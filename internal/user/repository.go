package user

import (
	"context"
	"time"
)

// Repository persists user accounts. Username uniqueness is guaranteed by the
// store itself; implementations report conflicts as ErrUsernameTaken.
type Repository interface {
	// Create inserts a new account and returns its assigned identifier.
	Create(ctx context.Context, user User) (int64, error)

	// FindByID fetches an account by identifier.
	FindByID(ctx context.Context, id int64) (User, error)

	// FindByUsername fetches an account by its unique username.
	FindByUsername(ctx context.Context, username string) (User, error)

	// UpdateAvatar replaces the stored avatar payload.
	UpdateAvatar(ctx context.Context, id int64, avatar string) error

	// AddCoins increases the coin balance by the given non-negative amount.
	AddCoins(ctx context.Context, id int64, amount int64) error

	// PromoteGuest atomically turns a guest into a registered account:
	// new username, stored credential, nickname cleared, guest flag cleared.
	// The condition on the live guest flag makes re-upgrades fail with
	// ErrNotGuest and keeps a concurrent sweep from matching the row.
	PromoteGuest(ctx context.Context, id int64, username string, passwordHash []byte) error

	// DeleteGuestsBefore removes every guest account created before the
	// cutoff and reports how many rows were deleted. Registered accounts are
	// never touched regardless of age.
	DeleteGuestsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
