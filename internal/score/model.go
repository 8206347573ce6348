package score

import (
	"fmt"
	"time"

	"github.com/minigame-party/minigame_party/internal/user"
)

// Score is one append-only submission. Rows are never updated or deleted,
// even when the owning guest account is later purged.
type Score struct {
	ID        int64
	UserID    int64
	Game      string
	Points    int64
	CreatedAt time.Time
}

// Window selects the time range a leaderboard aggregates over.
type Window string

const (
	// Daily covers the current UTC calendar day.
	Daily Window = "daily"
	// Weekly covers the trailing seven days.
	Weekly Window = "weekly"
	// AllTime applies no time filter.
	AllTime Window = "alltime"
)

// ParseWindow validates a window selector from a request path.
func ParseWindow(s string) (Window, error) {
	switch Window(s) {
	case Daily, Weekly, AllTime:
		return Window(s), nil
	default:
		return "", fmt.Errorf("%w: unknown window %q", user.ErrValidation, s)
	}
}

// Bounds returns the half-open [since, until) range for the window at the
// given instant. Zero times mean unbounded. Day boundaries are UTC.
func (w Window) Bounds(now time.Time) (since, until time.Time) {
	now = now.UTC()
	switch w {
	case Daily:
		since = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		until = since.Add(24 * time.Hour)
	case Weekly:
		since = now.Add(-7 * 24 * time.Hour)
	}
	return since, until
}

// Entry is one leaderboard row: a distinct user at their best score within
// the window, with their display identity.
type Entry struct {
	Name       string    `json:"name"`
	Avatar     string    `json:"avatar,omitempty"`
	Score      int64     `json:"score"`
	AchievedAt time.Time `json:"achieved_at"`
}
