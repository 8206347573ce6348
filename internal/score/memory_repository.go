package score

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/minigame-party/minigame_party/internal/user"
)

type memoryRepository struct {
	mu     sync.Mutex
	nextID int64
	scores []Score
	users  user.Repository
}

// NewMemoryRepository builds an in-memory score store for testing. It
// resolves display identities through the given user repository, mirroring
// the SQL join.
func NewMemoryRepository(users user.Repository) Repository {
	return &memoryRepository{nextID: 1, users: users}
}

func (r *memoryRepository) Insert(_ context.Context, sc Score) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sc.ID = r.nextID
	r.nextID++
	r.scores = append(r.scores, sc)
	return sc.ID, nil
}

func (r *memoryRepository) Leaderboard(ctx context.Context, game string, since, until time.Time, limit int) ([]Entry, error) {
	r.mu.Lock()
	best := make(map[int64]Score)
	for _, sc := range r.scores {
		if sc.Game != game {
			continue
		}
		if !since.IsZero() && sc.CreatedAt.Before(since) {
			continue
		}
		if !until.IsZero() && !sc.CreatedAt.Before(until) {
			continue
		}
		current, ok := best[sc.UserID]
		if !ok || sc.Points > current.Points {
			best[sc.UserID] = sc
		}
	}
	r.mu.Unlock()

	winners := make([]Score, 0, len(best))
	for _, sc := range best {
		winners = append(winners, sc)
	}
	sort.Slice(winners, func(i, j int) bool {
		if winners[i].Points != winners[j].Points {
			return winners[i].Points > winners[j].Points
		}
		return winners[i].ID < winners[j].ID
	})

	entries := make([]Entry, 0, len(winners))
	for _, sc := range winners {
		if len(entries) == limit {
			break
		}
		owner, err := r.users.FindByID(ctx, sc.UserID)
		if errors.Is(err, user.ErrNotFound) {
			continue // orphaned score, owner swept
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{
			Name:       owner.DisplayName(),
			Avatar:     owner.Avatar,
			Score:      sc.Points,
			AchievedAt: sc.CreatedAt,
		})
	}
	return entries, nil
}
