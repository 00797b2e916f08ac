package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"merit/internal/core"
)

// EnsureUser creates the user row if it does not exist yet. Existing rows
// are left untouched.
func (q *Queries) EnsureUser(ctx context.Context, userID, name string, weekStartDay int) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (user_id, name, week_start_day, created_at) VALUES (?, ?, ?, ?)`,
		userID, name, weekStartDay, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

// GetUserName returns the user's display name.
func (q *Queries) GetUserName(ctx context.Context, userID string) (string, error) {
	var name string
	err := q.db.QueryRowContext(ctx, `SELECT name FROM users WHERE user_id = ? LIMIT 1`, userID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", core.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get user name: %w", err)
	}
	return name, nil
}
