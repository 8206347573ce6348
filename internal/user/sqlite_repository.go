package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// timeLayout is the canonical storage format for timestamps: UTC, zero-padded
// fractional seconds, so lexical comparison in SQL matches chronological order.
const timeLayout = "2006-01-02 15:04:05.000000000"

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// SQLiteRepository implements Repository on the embedded SQLite store.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository builds a SQLite-backed user repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const userColumns = `id, username, nickname, password, avatar, coins, ip_address, is_guest, created_at`

// Create inserts a new account. A username conflict, whoever holds the name,
// surfaces as ErrUsernameTaken via the unique index.
func (r *SQLiteRepository) Create(ctx context.Context, user User) (int64, error) {
	var nickname, password sql.NullString
	switch v := user.Variant.(type) {
	case Guest:
		if v.Nickname != "" {
			nickname = sql.NullString{String: v.Nickname, Valid: true}
		}
	case Registered:
		password = sql.NullString{String: string(v.PasswordHash), Valid: true}
	default:
		return 0, fmt.Errorf("user %q has no variant", user.Username)
	}

	res, err := r.db.ExecContext(ctx, `INSERT INTO users (username, nickname, password, avatar, coins, ip_address, is_guest, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Username, nickname, password, nullString(user.Avatar), user.Coins,
		user.IPAddress, boolToInt(user.IsGuest()), fmtTime(user.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrUsernameTaken
		}
		return 0, fmt.Errorf("create user %s: %w", user.Username, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get user id: %w", err)
	}
	return id, nil
}

// FindByID fetches an account by identifier.
func (r *SQLiteRepository) FindByID(ctx context.Context, id int64) (User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// FindByUsername fetches an account by its unique username.
func (r *SQLiteRepository) FindByUsername(ctx context.Context, username string) (User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

// UpdateAvatar replaces the stored avatar payload.
func (r *SQLiteRepository) UpdateAvatar(ctx context.Context, id int64, avatar string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET avatar = ? WHERE id = ?`, avatar, id)
	if err != nil {
		return fmt.Errorf("update avatar: %w", err)
	}
	return requireRow(res)
}

// AddCoins increases the coin balance.
func (r *SQLiteRepository) AddCoins(ctx context.Context, id int64, amount int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET coins = coins + ? WHERE id = ?`, amount, id)
	if err != nil {
		return fmt.Errorf("add coins: %w", err)
	}
	return requireRow(res)
}

// PromoteGuest rewrites a guest row into a registered account. The update is
// conditioned on the live guest flag, so it cannot race a completed upgrade
// and a concurrent sweep cannot match the rewritten row.
func (r *SQLiteRepository) PromoteGuest(ctx context.Context, id int64, username string, passwordHash []byte) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users
        SET username = ?, password = ?, nickname = NULL, is_guest = 0
        WHERE id = ? AND is_guest = 1`,
		username, string(passwordHash), id)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("promote guest %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("promote guest %d: %w", id, err)
	}
	if affected == 0 {
		// Distinguish a vanished row from an already-registered one.
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrNotGuest
	}
	return nil
}

// DeleteGuestsBefore removes expired guest accounts. Score rows owned by the
// deleted users are left in place as orphaned history.
func (r *SQLiteRepository) DeleteGuestsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE is_guest = 1 AND created_at < ?`, fmtTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("delete expired guests: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (User, error) {
	var (
		u                          User
		nickname, password, avatar sql.NullString
		isGuest                    int
		createdAt                  sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Username, &nickname, &password, &avatar, &u.Coins, &u.IPAddress, &isGuest, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("scan user: %w", err)
	}

	u.Avatar = avatar.String
	if createdAt.Valid {
		u.CreatedAt = createdAt.Time.UTC()
	}
	if isGuest != 0 {
		u.Variant = Guest{Nickname: nickname.String}
	} else {
		u.Variant = Registered{PasswordHash: []byte(password.String)}
	}
	return u, nil
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
