package user

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the referenced account no longer exists, e.g.
	// because the guest sweep removed it.
	ErrNotFound = errors.New("user not found")

	// ErrUsernameTaken indicates a username conflict, whether detected by a
	// pre-check or by the storage uniqueness constraint.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrNotGuest indicates a guest-only operation on a registered account.
	ErrNotGuest = errors.New("account is not a guest")

	// ErrInvalidCredentials indicates a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrValidation is the base of all input validation failures.
	ErrValidation = errors.New("validation failed")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
