package score

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const timeLayout = "2006-01-02 15:04:05.000000000"

// SQLiteRepository implements Repository on the embedded SQLite store.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository builds a SQLite-backed score repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Insert appends a score row.
func (r *SQLiteRepository) Insert(ctx context.Context, sc Score) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO scores (user_id, game, score, created_at)
        VALUES (?, ?, ?, ?)`,
		sc.UserID, sc.Game, sc.Points, sc.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("insert score: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get score id: %w", err)
	}
	return id, nil
}

// Leaderboard aggregates per-user maximum scores for a game inside the
// window. The inner join drops rows whose owner was purged by the guest
// sweep; those orphans are tolerated history, not leaderboard entries.
func (r *SQLiteRepository) Leaderboard(ctx context.Context, game string, since, until time.Time, limit int) ([]Entry, error) {
	query := `
        SELECT username, nickname, is_guest, avatar, score, created_at
        FROM (
            SELECT u.username AS username, u.nickname AS nickname,
                   u.is_guest AS is_guest, u.avatar AS avatar,
                   s.score AS score, s.created_at AS created_at, s.id AS score_id,
                   ROW_NUMBER() OVER (PARTITION BY s.user_id ORDER BY s.score DESC, s.id ASC) AS rn
            FROM scores s
            INNER JOIN users u ON u.id = s.user_id
            WHERE s.game = ?`
	args := []any{game}
	if !since.IsZero() {
		query += ` AND s.created_at >= ?`
		args = append(args, since.UTC().Format(timeLayout))
	}
	if !until.IsZero() {
		query += ` AND s.created_at < ?`
		args = append(args, until.UTC().Format(timeLayout))
	}
	query += `
        )
        WHERE rn = 1
        ORDER BY score DESC, score_id ASC
        LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			entry            Entry
			username         string
			nickname, avatar sql.NullString
			isGuest          int
			createdAt        sql.NullTime
		)
		if err := rows.Scan(&username, &nickname, &isGuest, &avatar, &entry.Score, &createdAt); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		entry.Name = username
		if isGuest != 0 && nickname.Valid && nickname.String != "" {
			entry.Name = nickname.String
		}
		entry.Avatar = avatar.String
		if createdAt.Valid {
			entry.AchievedAt = createdAt.Time.UTC()
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard: %w", err)
	}
	return entries, nil
}
