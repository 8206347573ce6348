package score

import (
	"context"
	"fmt"
	"strings"

	"github.com/minigame-party/minigame_party/internal/clock"
	"github.com/minigame-party/minigame_party/internal/user"
)

const (
	// leaderboardLimit caps the number of returned entries per read.
	leaderboardLimit = 100

	// maxPoints is the sanity bound on a single submission.
	maxPoints = 1_000_000

	// coinsDivisor converts a submitted score into earned coins.
	coinsDivisor = 10
)

// Service handles score submission and leaderboard aggregation.
type Service struct {
	repo  Repository
	users user.Repository
	cache *Cache
	clock clock.Clock
}

// NewService builds a score service. The cache may be nil, in which case
// every leaderboard read hits the store.
func NewService(repo Repository, users user.Repository, cache *Cache, clk clock.Clock) *Service {
	return &Service{repo: repo, users: users, cache: cache, clock: clk}
}

// Submit appends a score for the user and credits coins at one per ten
// points. The owner is resolved first so a submission from a token whose
// guest account was swept fails with user.ErrNotFound instead of writing an
// orphan.
func (s *Service) Submit(ctx context.Context, userID int64, game string, points int64) (earned int64, err error) {
	game = strings.TrimSpace(game)
	if game == "" {
		return 0, fmt.Errorf("%w: game is required", user.ErrValidation)
	}
	if points < 0 || points > maxPoints {
		return 0, fmt.Errorf("%w: score must be between 0 and %d", user.ErrValidation, maxPoints)
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return 0, err
	}

	if _, err := s.repo.Insert(ctx, Score{
		UserID:    userID,
		Game:      game,
		Points:    points,
		CreatedAt: s.clock.Now().UTC(),
	}); err != nil {
		return 0, err
	}

	earned = points / coinsDivisor
	if earned > 0 {
		if err := s.users.AddCoins(ctx, userID, earned); err != nil {
			return 0, err
		}
	}
	return earned, nil
}

// Leaderboard returns the top entries for the game within the window, one
// per distinct user at their maximum score. Pure read, served from the cache
// when one is configured.
func (s *Service) Leaderboard(ctx context.Context, game string, w Window) ([]Entry, error) {
	game = strings.TrimSpace(game)
	if game == "" {
		return nil, fmt.Errorf("%w: game is required", user.ErrValidation)
	}

	if s.cache != nil {
		if entries, ok := s.cache.Get(ctx, game, w); ok {
			return entries, nil
		}
	}

	since, until := w.Bounds(s.clock.Now())
	entries, err := s.repo.Leaderboard(ctx, game, since, until, leaderboardLimit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, game, w, entries)
	}
	return entries, nil
}
