package storage

import (
	"context"
	"fmt"
	"time"

	"merit/internal/core"
)

// MarkDailyAlert records that the daily-limit alert fired for this user and
// day. It reports false when the marker already existed, which is how the
// notifier deduplicates to one alert per calendar day.
func (q *Queries) MarkDailyAlert(ctx context.Context, userID string, day core.Date) (bool, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_alert_markers (user_id, date, created_at) VALUES (?, ?, ?)`,
		userID, day.String(), formatTime(time.Now()),
	)
	if err != nil {
		return false, fmt.Errorf("mark daily alert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark daily alert: rows affected: %w", err)
	}
	return n > 0, nil
}
