package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"merit/internal/core"
)

func (q *Queries) InsertGoal(ctx context.Context, g core.SavingsGoal) error {
	completed := 0
	if g.IsCompleted {
		completed = 1
	}
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO savings_goals (goal_id, user_id, name, icon, target_amount, current_amount, target_date, is_completed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, g.Name, nullString(g.Icon), g.TargetAmount.Cents, g.CurrentAmount.Cents,
		nullDate(g.TargetDate), completed, formatTime(g.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

func (q *Queries) GetGoal(ctx context.Context, id string) (core.SavingsGoal, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT goal_id, user_id, name, icon, target_amount, current_amount, target_date, is_completed, created_at
		 FROM savings_goals WHERE goal_id = ? LIMIT 1`, id)

	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SavingsGoal{}, core.ErrNotFound
	}
	return g, err
}

// ListGoals orders dated goals by ascending target date; undated goals come
// last, newest first.
func (q *Queries) ListGoals(ctx context.Context, userID string) ([]core.SavingsGoal, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT goal_id, user_id, name, icon, target_amount, current_amount, target_date, is_completed, created_at
		 FROM savings_goals
		 WHERE user_id = ?
		 ORDER BY (target_date IS NULL) ASC, target_date ASC, created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.SavingsGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func scanGoal(s rowScanner) (core.SavingsGoal, error) {
	var (
		g          core.SavingsGoal
		icon       sql.NullString
		target     int64
		current    int64
		targetDate sql.NullString
		completed  int64
		created    string
	)
	err := s.Scan(&g.ID, &g.UserID, &g.Name, &icon, &target, &current, &targetDate, &completed, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.SavingsGoal{}, err
		}
		return core.SavingsGoal{}, fmt.Errorf("scan goal: %w", err)
	}

	g.Icon = icon.String
	g.TargetAmount = core.Money{Cents: target}
	g.CurrentAmount = core.Money{Cents: current}
	if targetDate.Valid {
		if g.TargetDate, err = core.ParseDate(targetDate.String); err != nil {
			return core.SavingsGoal{}, fmt.Errorf("parse goal target date %q: %w", targetDate.String, err)
		}
	}
	g.IsCompleted = completed == 1
	g.CreatedAt = parseTime(created)
	return g, nil
}

// UpdateGoal replaces every editable field at once.
func (q *Queries) UpdateGoal(ctx context.Context, g core.SavingsGoal) error {
	completed := 0
	if g.IsCompleted {
		completed = 1
	}
	res, err := q.db.ExecContext(ctx,
		`UPDATE savings_goals
		 SET name = ?, target_amount = ?, current_amount = ?, target_date = ?, is_completed = ?
		 WHERE goal_id = ?`,
		g.Name, g.TargetAmount.Cents, g.CurrentAmount.Cents, nullDate(g.TargetDate), completed, g.ID,
	)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (q *Queries) UpdateGoalCurrent(ctx context.Context, id string, current core.Money, isCompleted bool) error {
	completed := 0
	if isCompleted {
		completed = 1
	}
	res, err := q.db.ExecContext(ctx,
		`UPDATE savings_goals SET current_amount = ?, is_completed = ? WHERE goal_id = ?`,
		current.Cents, completed, id,
	)
	if err != nil {
		return fmt.Errorf("update goal current amount: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (q *Queries) UpdateGoalCompleted(ctx context.Context, id string, isCompleted bool) error {
	completed := 0
	if isCompleted {
		completed = 1
	}
	res, err := q.db.ExecContext(ctx,
		`UPDATE savings_goals SET is_completed = ? WHERE goal_id = ?`, completed, id)
	if err != nil {
		return fmt.Errorf("update goal completed flag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteGoal removes the goal and, cascading by hand, its whole event log.
func (q *Queries) DeleteGoal(ctx context.Context, id string) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM savings_goal_events WHERE goal_id = ?`, id); err != nil {
		return fmt.Errorf("delete goal events: %w", err)
	}
	res, err := q.db.ExecContext(ctx, `DELETE FROM savings_goals WHERE goal_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// InsertGoalEvent appends one event to the audit trail, flattening the
// kind-specific detail into the wide event row.
func (q *Queries) InsertGoalEvent(ctx context.Context, e core.GoalEvent) error {
	var (
		amountDelta any
		oldCurrent  any
		newCurrent  any
		oldTarget   any
		newTarget   any
		oldDate     any
		newDate     any
	)

	switch d := e.Detail.(type) {
	case core.CreateDetail:
		newCurrent = d.NewCurrent.Cents
		newTarget = d.NewTarget.Cents
		newDate = nullDate(d.NewTargetDate)
	case core.AddDetail:
		amountDelta = d.Delta.Cents
		oldCurrent = d.OldCurrent.Cents
		newCurrent = d.NewCurrent.Cents
	case core.SetCurrentDetail:
		oldCurrent = d.OldCurrent.Cents
		newCurrent = d.NewCurrent.Cents
	case core.EditDetail:
		oldCurrent = d.OldCurrent.Cents
		newCurrent = d.NewCurrent.Cents
		oldTarget = d.OldTarget.Cents
		newTarget = d.NewTarget.Cents
		oldDate = nullDate(d.OldTargetDate)
		newDate = nullDate(d.NewTargetDate)
	case nil:
		// complete and reopen events carry no detail
	default:
		return fmt.Errorf("insert goal event: unknown detail type %T", e.Detail)
	}

	_, err := q.db.ExecContext(ctx,
		`INSERT INTO savings_goal_events (
			event_id, goal_id, user_id, event_type,
			amount_delta, old_current_amount, new_current_amount,
			old_target_amount, new_target_amount,
			old_target_date, new_target_date,
			note, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.GoalID, e.UserID, string(e.Type),
		amountDelta, oldCurrent, newCurrent,
		oldTarget, newTarget,
		oldDate, newDate,
		nullString(e.Note), formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert goal event: %w", err)
	}
	return nil
}

// ListGoalEvents returns the audit trail in append order. The implicit
// rowid breaks ties between events written in the same instant.
func (q *Queries) ListGoalEvents(ctx context.Context, goalID string) ([]core.GoalEvent, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT event_id, goal_id, user_id, event_type,
			amount_delta, old_current_amount, new_current_amount,
			old_target_amount, new_target_amount,
			old_target_date, new_target_date,
			note, created_at
		 FROM savings_goal_events
		 WHERE goal_id = ?
		 ORDER BY created_at ASC, rowid ASC`, goalID)
	if err != nil {
		return nil, fmt.Errorf("list goal events: %w", err)
	}
	defer rows.Close()

	var out []core.GoalEvent
	for rows.Next() {
		var (
			e           core.GoalEvent
			typ         string
			amountDelta sql.NullInt64
			oldCurrent  sql.NullInt64
			newCurrent  sql.NullInt64
			oldTarget   sql.NullInt64
			newTarget   sql.NullInt64
			oldDate     sql.NullString
			newDate     sql.NullString
			note        sql.NullString
			created     string
		)
		err := rows.Scan(&e.ID, &e.GoalID, &e.UserID, &typ,
			&amountDelta, &oldCurrent, &newCurrent,
			&oldTarget, &newTarget,
			&oldDate, &newDate,
			&note, &created)
		if err != nil {
			return nil, fmt.Errorf("scan goal event: %w", err)
		}

		e.Type = core.GoalEventType(typ)
		e.Note = note.String
		e.CreatedAt = parseTime(created)
		if e.Detail, err = rebuildDetail(e.Type, amountDelta, oldCurrent, newCurrent, oldTarget, newTarget, oldDate, newDate); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func rebuildDetail(typ core.GoalEventType, delta, oldCur, newCur, oldTgt, newTgt sql.NullInt64, oldDate, newDate sql.NullString) (core.EventDetail, error) {
	parse := func(ns sql.NullString) (core.Date, error) {
		if !ns.Valid {
			return core.Date{}, nil
		}
		return core.ParseDate(ns.String)
	}

	switch typ {
	case core.EventCreate:
		d, err := parse(newDate)
		if err != nil {
			return nil, fmt.Errorf("rebuild create event detail: %w", err)
		}
		return core.CreateDetail{
			NewCurrent:    core.Money{Cents: newCur.Int64},
			NewTarget:     core.Money{Cents: newTgt.Int64},
			NewTargetDate: d,
		}, nil
	case core.EventAdd:
		return core.AddDetail{
			Delta:      core.Money{Cents: delta.Int64},
			OldCurrent: core.Money{Cents: oldCur.Int64},
			NewCurrent: core.Money{Cents: newCur.Int64},
		}, nil
	case core.EventSetCurrent:
		return core.SetCurrentDetail{
			OldCurrent: core.Money{Cents: oldCur.Int64},
			NewCurrent: core.Money{Cents: newCur.Int64},
		}, nil
	case core.EventEdit:
		od, err := parse(oldDate)
		if err != nil {
			return nil, fmt.Errorf("rebuild edit event detail: %w", err)
		}
		nd, err := parse(newDate)
		if err != nil {
			return nil, fmt.Errorf("rebuild edit event detail: %w", err)
		}
		return core.EditDetail{
			OldCurrent:    core.Money{Cents: oldCur.Int64},
			NewCurrent:    core.Money{Cents: newCur.Int64},
			OldTarget:     core.Money{Cents: oldTgt.Int64},
			NewTarget:     core.Money{Cents: newTgt.Int64},
			OldTargetDate: od,
			NewTargetDate: nd,
		}, nil
	case core.EventComplete, core.EventReopen:
		return nil, nil
	}
	return nil, fmt.Errorf("unknown goal event type %q", typ)
}

func nullDate(d core.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}
