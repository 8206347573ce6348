package user

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/minigame-party/minigame_party/internal/infra"
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

func TestSQLiteCreateAndFind(t *testing.T) {
	repo := NewSQLiteRepository(newTestDB(t))
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)

	id, err := repo.Create(ctx, User{
		Username:  "alice",
		IPAddress: "127.0.0.1",
		CreatedAt: created,
		Variant:   Registered{PasswordHash: []byte("hash")},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	u, err := repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if u.Username != "alice" || u.IsGuest() {
		t.Fatalf("unexpected user %+v", u)
	}
	hash, ok := u.PasswordHash()
	if !ok || string(hash) != "hash" {
		t.Fatalf("password hash not preserved")
	}
	if !u.CreatedAt.Equal(created) {
		t.Fatalf("created_at mismatch: got %v want %v", u.CreatedAt, created)
	}

	byName, err := repo.FindByUsername(ctx, "alice")
	if err != nil || byName.ID != id {
		t.Fatalf("find by username: %v (id %d)", err, byName.ID)
	}

	if _, err := repo.FindByID(ctx, id+999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteGuestVariantRoundTrip(t *testing.T) {
	repo := NewSQLiteRepository(newTestDB(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, User{
		Username:  "guest_1_abcd",
		CreatedAt: time.Now().UTC(),
		Variant:   Guest{Nickname: "Momo"},
	})
	if err != nil {
		t.Fatalf("create guest: %v", err)
	}

	u, err := repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !u.IsGuest() || u.Nickname() != "Momo" {
		t.Fatalf("guest variant not preserved: %+v", u)
	}
	if _, ok := u.PasswordHash(); ok {
		t.Fatalf("guest must not carry a password hash")
	}
}

func TestSQLiteUsernameUniqueConstraint(t *testing.T) {
	repo := NewSQLiteRepository(newTestDB(t))
	ctx := context.Background()

	u := User{Username: "alice", CreatedAt: time.Now().UTC(), Variant: Registered{PasswordHash: []byte("h")}}
	if _, err := repo.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(ctx, u); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	// A guest colliding with a registered name is the same conflict.
	g := User{Username: "alice", CreatedAt: time.Now().UTC(), Variant: Guest{Nickname: "Momo"}}
	if _, err := repo.Create(ctx, g); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken for guest, got %v", err)
	}
}

func TestSQLitePromoteGuest(t *testing.T) {
	repo := NewSQLiteRepository(newTestDB(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, User{
		Username:  "guest_1_abcd",
		CreatedAt: time.Now().UTC(),
		Variant:   Guest{Nickname: "Momo"},
	})
	if err != nil {
		t.Fatalf("create guest: %v", err)
	}

	if err := repo.PromoteGuest(ctx, id, "momo", []byte("hash")); err != nil {
		t.Fatalf("promote: %v", err)
	}

	u, err := repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if u.IsGuest() {
		t.Fatalf("user still flagged as guest after promotion")
	}
	if u.Username != "momo" {
		t.Fatalf("username not adopted: %q", u.Username)
	}
	if u.Nickname() != "" {
		t.Fatalf("nickname not cleared: %q", u.Nickname())
	}
	hash, ok := u.PasswordHash()
	if !ok || string(hash) != "hash" {
		t.Fatalf("credential not stored")
	}

	// One-way transition: a second promotion is rejected.
	if err := repo.PromoteGuest(ctx, id, "momo2", []byte("h2")); !errors.Is(err, ErrNotGuest) {
		t.Fatalf("expected ErrNotGuest, got %v", err)
	}
	if err := repo.PromoteGuest(ctx, id+999, "nobody", []byte("h")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLitePromoteGuestUsernameConflict(t *testing.T) {
	repo := NewSQLiteRepository(newTestDB(t))
	ctx := context.Background()

	if _, err := repo.Create(ctx, User{Username: "alice", CreatedAt: time.Now().UTC(), Variant: Registered{PasswordHash: []byte("h")}}); err != nil {
		t.Fatalf("create registered: %v", err)
	}
	id, err := repo.Create(ctx, User{Username: "guest_1_abcd", CreatedAt: time.Now().UTC(), Variant: Guest{Nickname: "Momo"}})
	if err != nil {
		t.Fatalf("create guest: %v", err)
	}

	if err := repo.PromoteGuest(ctx, id, "alice", []byte("h")); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	// The failed upgrade leaves the guest record untouched.
	u, err := repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !u.IsGuest() || u.Username != "guest_1_abcd" || u.Nickname() != "Momo" {
		t.Fatalf("guest record changed by failed upgrade: %+v", u)
	}
}

func TestSQLiteDeleteGuestsBefore(t *testing.T) {
	repo := NewSQLiteRepository(newTestDB(t))
	ctx := context.Background()
	now := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	oldGuest, err := repo.Create(ctx, User{Username: "guest_old", CreatedAt: now.Add(-8 * 24 * time.Hour), Variant: Guest{Nickname: "Old"}})
	if err != nil {
		t.Fatalf("create old guest: %v", err)
	}
	freshGuest, err := repo.Create(ctx, User{Username: "guest_fresh", CreatedAt: now.Add(-time.Hour), Variant: Guest{Nickname: "Fresh"}})
	if err != nil {
		t.Fatalf("create fresh guest: %v", err)
	}
	oldRegistered, err := repo.Create(ctx, User{Username: "veteran", CreatedAt: now.Add(-365 * 24 * time.Hour), Variant: Registered{PasswordHash: []byte("h")}})
	if err != nil {
		t.Fatalf("create registered: %v", err)
	}

	deleted, err := repo.DeleteGuestsBefore(ctx, now.Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("delete guests: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deletion, got %d", deleted)
	}

	if _, err := repo.FindByID(ctx, oldGuest); !errors.Is(err, ErrNotFound) {
		t.Fatalf("old guest should be gone, got %v", err)
	}
	if _, err := repo.FindByID(ctx, freshGuest); err != nil {
		t.Fatalf("fresh guest should survive: %v", err)
	}
	if _, err := repo.FindByID(ctx, oldRegistered); err != nil {
		t.Fatalf("registered account must never be swept: %v", err)
	}
}

func TestSQLiteCoinsAndAvatar(t *testing.T) {
	repo := NewSQLiteRepository(newTestDB(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, User{Username: "alice", CreatedAt: time.Now().UTC(), Variant: Registered{PasswordHash: []byte("h")}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.AddCoins(ctx, id, 25); err != nil {
		t.Fatalf("add coins: %v", err)
	}
	if err := repo.AddCoins(ctx, id, 15); err != nil {
		t.Fatalf("add coins: %v", err)
	}
	if err := repo.UpdateAvatar(ctx, id, "data:image/png;base64,AAAA"); err != nil {
		t.Fatalf("update avatar: %v", err)
	}

	u, err := repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if u.Coins != 40 {
		t.Fatalf("expected 40 coins, got %d", u.Coins)
	}
	if u.Avatar != "data:image/png;base64,AAAA" {
		t.Fatalf("avatar not stored")
	}

	if err := repo.AddCoins(ctx, id+999, 5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
