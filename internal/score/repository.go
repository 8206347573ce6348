package score

import (
	"context"
	"time"
)

// Repository persists score submissions and serves leaderboard reads.
type Repository interface {
	// Insert appends a submission and returns its assigned identifier.
	Insert(ctx context.Context, sc Score) (int64, error)

	// Leaderboard returns at most limit entries for a game, one per distinct
	// user at their maximum score within [since, until). Zero bounds are
	// unbounded. Ordering is score descending, ties broken by insertion
	// order of the winning row. Scores whose owner no longer exists are
	// skipped.
	Leaderboard(ctx context.Context, game string, since, until time.Time, limit int) ([]Entry, error)
}
