package score

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/minigame-party/minigame_party/internal/infra"
	"github.com/minigame-party/minigame_party/internal/user"

	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// A single connection keeps every statement on the same in-memory database.
	db.SetMaxOpenConns(1)
	if err := infra.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createSQLUser(t *testing.T, users user.Repository, u user.User) int64 {
	t.Helper()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	}
	id, err := users.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("create user %s: %v", u.Username, err)
	}
	return id
}

func insertScore(t *testing.T, repo Repository, userID int64, game string, points int64, at time.Time) int64 {
	t.Helper()
	id, err := repo.Insert(context.Background(), Score{
		UserID:    userID,
		Game:      game,
		Points:    points,
		CreatedAt: at,
	})
	if err != nil {
		t.Fatalf("insert score: %v", err)
	}
	return id
}

func TestSQLiteLeaderboardPerUserMax(t *testing.T) {
	db := newTestDB(t)
	users := user.NewSQLiteRepository(db)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	a := createSQLUser(t, users, user.User{Username: "alice", Variant: user.Registered{PasswordHash: []byte("h")}})
	b := createSQLUser(t, users, user.User{Username: "bob", Variant: user.Registered{PasswordHash: []byte("h")}})

	insertScore(t, repo, a, "reaction", 250, at)
	insertScore(t, repo, a, "reaction", 400, at.Add(time.Minute))
	insertScore(t, repo, b, "reaction", 100, at.Add(2*time.Minute))
	insertScore(t, repo, a, "memory", 999, at) // other game, must not leak

	entries, err := repo.Leaderboard(ctx, "reaction", time.Time{}, time.Time{}, 100)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(entries), entries)
	}
	if entries[0].Name != "alice" || entries[0].Score != 400 {
		t.Fatalf("first entry: %+v", entries[0])
	}
	if entries[1].Name != "bob" || entries[1].Score != 100 {
		t.Fatalf("second entry: %+v", entries[1])
	}
}

func TestSQLiteLeaderboardTieOrder(t *testing.T) {
	db := newTestDB(t)
	users := user.NewSQLiteRepository(db)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	a := createSQLUser(t, users, user.User{Username: "alice", Variant: user.Registered{PasswordHash: []byte("h")}})
	b := createSQLUser(t, users, user.User{Username: "bob", Variant: user.Registered{PasswordHash: []byte("h")}})

	// Bob reaches 300 first; ties break by earliest qualifying row.
	insertScore(t, repo, b, "reaction", 300, at)
	insertScore(t, repo, a, "reaction", 300, at.Add(time.Minute))

	entries, err := repo.Leaderboard(ctx, "reaction", time.Time{}, time.Time{}, 100)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "bob" || entries[1].Name != "alice" {
		t.Fatalf("unexpected tie order: %+v", entries)
	}
}

func TestSQLiteLeaderboardWindowBounds(t *testing.T) {
	db := newTestDB(t)
	users := user.NewSQLiteRepository(db)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	a := createSQLUser(t, users, user.User{Username: "alice", Variant: user.Registered{PasswordHash: []byte("h")}})

	midnight := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	insertScore(t, repo, a, "reaction", 500, midnight.Add(-time.Second)) // yesterday 23:59:59
	insertScore(t, repo, a, "reaction", 200, midnight)                   // inclusive lower bound

	entries, err := repo.Leaderboard(ctx, "reaction", midnight, midnight.Add(24*time.Hour), 100)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 1 || entries[0].Score != 200 {
		t.Fatalf("expected only the midnight score, got %+v", entries)
	}

	// The exclusive upper bound drops a row landing exactly on it.
	entries, err = repo.Leaderboard(ctx, "reaction", midnight.Add(-24*time.Hour), midnight, 100)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 1 || entries[0].Score != 500 {
		t.Fatalf("expected only yesterday's score, got %+v", entries)
	}
}

func TestSQLiteLeaderboardLimit(t *testing.T) {
	db := newTestDB(t)
	users := user.NewSQLiteRepository(db)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		id := createSQLUser(t, users, user.User{
			Username: "player" + string(rune('a'+i)),
			Variant:  user.Registered{PasswordHash: []byte("h")},
		})
		insertScore(t, repo, id, "reaction", int64(100*(i+1)), at)
	}

	entries, err := repo.Leaderboard(ctx, "reaction", time.Time{}, time.Time{}, 3)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Score != 500 || entries[2].Score != 300 {
		t.Fatalf("expected truncation to keep the top scores, got %+v", entries)
	}
}

func TestSQLiteLeaderboardDropsOrphans(t *testing.T) {
	db := newTestDB(t)
	users := user.NewSQLiteRepository(db)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	g := createSQLUser(t, users, user.User{
		Username:  "guest_1_abcd",
		CreatedAt: created,
		Variant:   user.Guest{Nickname: "Momo"},
	})
	keeper := createSQLUser(t, users, user.User{Username: "alice", Variant: user.Registered{PasswordHash: []byte("h")}})
	insertScore(t, repo, g, "reaction", 900, created.Add(time.Hour))
	insertScore(t, repo, keeper, "reaction", 100, created.Add(time.Hour))

	deleted, err := users.DeleteGuestsBefore(ctx, created.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 swept guest, got %d", deleted)
	}

	// The score row survives as history but falls off the board.
	var orphans int
	if err := db.QueryRow(`SELECT COUNT(*) FROM scores WHERE user_id = ?`, g).Scan(&orphans); err != nil {
		t.Fatalf("count orphans: %v", err)
	}
	if orphans != 1 {
		t.Fatalf("expected orphaned score row to remain, got %d", orphans)
	}

	entries, err := repo.Leaderboard(ctx, "reaction", time.Time{}, time.Time{}, 100)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "alice" {
		t.Fatalf("expected only alice after sweep, got %+v", entries)
	}
}
