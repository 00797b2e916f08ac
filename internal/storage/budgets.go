package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"merit/internal/core"
)

func (q *Queries) InsertBudget(ctx context.Context, b core.Budget) error {
	active := 0
	if b.IsActive {
		active = 1
	}
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO budgets (budget_id, user_id, category_id, period, limit_amount, start_date, end_date, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.CategoryID, string(b.Period), b.LimitAmount.Cents,
		b.Range.Start.String(), b.Range.End.String(), active,
	)
	if err != nil {
		return fmt.Errorf("insert budget: %w", err)
	}
	return nil
}

// DeactivateBudgets clears the active flag for every budget of the
// (user, category, period) tuple, keeping the at-most-one-active invariant.
func (q *Queries) DeactivateBudgets(ctx context.Context, userID, categoryID string, period core.BudgetPeriod) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE budgets SET is_active = 0 WHERE user_id = ? AND category_id = ? AND period = ? AND is_active = 1`,
		userID, categoryID, string(period),
	)
	if err != nil {
		return fmt.Errorf("deactivate budgets: %w", err)
	}
	return nil
}

func (q *Queries) DeactivateBudget(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, `UPDATE budgets SET is_active = 0 WHERE budget_id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (q *Queries) UpdateBudgetLimit(ctx context.Context, id string, limit core.Money) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE budgets SET limit_amount = ? WHERE budget_id = ?`, limit.Cents, id)
	if err != nil {
		return fmt.Errorf("update budget limit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (q *Queries) GetBudget(ctx context.Context, id string) (core.Budget, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT budget_id, user_id, category_id, period, limit_amount, start_date, end_date, is_active
		 FROM budgets WHERE budget_id = ? LIMIT 1`, id)

	var (
		b      core.Budget
		period string
		cents  int64
		start  string
		end    string
		active int64
	)
	err := row.Scan(&b.ID, &b.UserID, &b.CategoryID, &period, &cents, &start, &end, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, core.ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}

	b.Period = core.BudgetPeriod(period)
	b.LimitAmount = core.Money{Cents: cents}
	if b.Range.Start, err = core.ParseDate(start); err != nil {
		return core.Budget{}, fmt.Errorf("get budget: parse start date %q: %w", start, err)
	}
	if b.Range.End, err = core.ParseDate(end); err != nil {
		return core.Budget{}, fmt.Errorf("get budget: parse end date %q: %w", end, err)
	}
	b.IsActive = active == 1
	return b, nil
}

// ListActiveBudgets returns the user's active per-category budgets joined
// with the spend already accumulated inside each budget's own window.
func (q *Queries) ListActiveBudgets(ctx context.Context, userID string) ([]core.BudgetListItem, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT
			b.budget_id, b.user_id, b.category_id, b.period, b.limit_amount,
			b.start_date, b.end_date, b.is_active,
			COALESCE(SUM(t.amount), 0) AS spent,
			COALESCE(c.name, ''), COALESCE(c.icon, ''), COALESCE(c.color, '')
		FROM budgets b
		LEFT JOIN categories c ON c.category_id = b.category_id
		LEFT JOIN transactions t
			ON t.user_id = b.user_id
			AND t.type = 'expense'
			AND t.category_id = b.category_id
			AND t.date >= b.start_date
			AND t.date <= b.end_date
		WHERE b.user_id = ? AND b.is_active = 1
		GROUP BY b.budget_id
		ORDER BY b.period ASC, c.name ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list active budgets: %w", err)
	}
	defer rows.Close()

	var out []core.BudgetListItem
	for rows.Next() {
		var (
			it     core.BudgetListItem
			period string
			cents  int64
			start  string
			end    string
			active int64
			spent  int64
		)
		err := rows.Scan(&it.ID, &it.UserID, &it.CategoryID, &period, &cents,
			&start, &end, &active, &spent,
			&it.CategoryName, &it.CategoryIcon, &it.CategoryColor)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		it.Period = core.BudgetPeriod(period)
		it.LimitAmount = core.Money{Cents: cents}
		if it.Range.Start, err = core.ParseDate(start); err != nil {
			return nil, fmt.Errorf("parse budget start date %q: %w", start, err)
		}
		if it.Range.End, err = core.ParseDate(end); err != nil {
			return nil, fmt.Errorf("parse budget end date %q: %w", end, err)
		}
		it.IsActive = active == 1
		it.Spent = core.Money{Cents: spent}
		out = append(out, it)
	}
	return out, rows.Err()
}
