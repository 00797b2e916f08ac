package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"merit/internal/core"
)

func (q *Queries) InsertWeeklyBudget(ctx context.Context, b core.WeeklyBudget) error {
	all := 0
	if b.AppliesToAllCategories {
		all = 1
	}
	active := 0
	if b.IsActive {
		active = 1
	}
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO weekly_budgets (weekly_budget_id, user_id, limit_amount, start_date, end_date, applies_all_categories, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.LimitAmount.Cents, b.Range.Start.String(), b.Range.End.String(),
		all, active, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("insert weekly budget: %w", err)
	}
	return nil
}

// GetActiveWeeklyBudget returns the user's single active weekly budget row
// without its category associations. core.ErrNotFound when none is configured.
func (q *Queries) GetActiveWeeklyBudget(ctx context.Context, userID string) (core.WeeklyBudget, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT weekly_budget_id, user_id, limit_amount, start_date, end_date, applies_all_categories, is_active
		 FROM weekly_budgets
		 WHERE user_id = ? AND is_active = 1
		 ORDER BY start_date DESC
		 LIMIT 1`, userID)

	var (
		b      core.WeeklyBudget
		cents  int64
		start  string
		end    string
		all    int64
		active int64
	)
	err := row.Scan(&b.ID, &b.UserID, &cents, &start, &end, &all, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return core.WeeklyBudget{}, core.ErrNotFound
	}
	if err != nil {
		return core.WeeklyBudget{}, fmt.Errorf("get active weekly budget: %w", err)
	}

	b.LimitAmount = core.Money{Cents: cents}
	if b.Range.Start, err = core.ParseDate(start); err != nil {
		return core.WeeklyBudget{}, fmt.Errorf("parse weekly budget start date %q: %w", start, err)
	}
	if b.Range.End, err = core.ParseDate(end); err != nil {
		return core.WeeklyBudget{}, fmt.Errorf("parse weekly budget end date %q: %w", end, err)
	}
	b.AppliesToAllCategories = all == 1
	b.IsActive = active == 1
	return b, nil
}

// DeactivateWeeklyBudgets clears the active flag on every weekly budget of
// the user, enforcing the single-active invariant before an insert.
func (q *Queries) DeactivateWeeklyBudgets(ctx context.Context, userID string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE weekly_budgets SET is_active = 0 WHERE user_id = ? AND is_active = 1`, userID)
	if err != nil {
		return fmt.Errorf("deactivate weekly budgets: %w", err)
	}
	return nil
}

func (q *Queries) ListWeeklyBudgetCategories(ctx context.Context, weeklyBudgetID string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT category_id FROM weekly_budget_categories WHERE weekly_budget_id = ? ORDER BY category_id ASC`,
		weeklyBudgetID)
	if err != nil {
		return nil, fmt.Errorf("list weekly budget categories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan weekly budget category: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// InsertWeeklyBudgetCategory is idempotent: duplicate pairs are ignored.
func (q *Queries) InsertWeeklyBudgetCategory(ctx context.Context, weeklyBudgetID, categoryID string) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO weekly_budget_categories (weekly_budget_id, category_id) VALUES (?, ?)`,
		weeklyBudgetID, categoryID)
	if err != nil {
		return fmt.Errorf("insert weekly budget category: %w", err)
	}
	return nil
}

func (q *Queries) DeleteWeeklyBudgetCategories(ctx context.Context, weeklyBudgetID string) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM weekly_budget_categories WHERE weekly_budget_id = ?`, weeklyBudgetID)
	if err != nil {
		return fmt.Errorf("delete weekly budget categories: %w", err)
	}
	return nil
}
