package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"merit/internal/core"
)

func (q *Queries) InsertTransaction(ctx context.Context, t core.Transaction) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO transactions (transaction_id, user_id, type, amount, category_id, date, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, string(t.Type), t.Amount.Cents, t.CategoryID, t.Date.String(),
		nullString(t.Notes), formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (q *Queries) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE transactions
		 SET type = ?, amount = ?, category_id = ?, date = ?, notes = ?, updated_at = ?
		 WHERE transaction_id = ?`,
		string(t.Type), t.Amount.Cents, t.CategoryID, t.Date.String(),
		nullString(t.Notes), formatTime(t.UpdatedAt), t.ID,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (q *Queries) DeleteTransaction(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM transactions WHERE transaction_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (q *Queries) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT transaction_id, user_id, type, amount, category_id, date, notes, created_at, updated_at
		 FROM transactions WHERE transaction_id = ? LIMIT 1`,
		id,
	)

	var (
		t       core.Transaction
		typ     string
		cents   int64
		date    string
		notes   sql.NullString
		created string
		updated string
	)
	err := row.Scan(&t.ID, &t.UserID, &typ, &cents, &t.CategoryID, &date, &notes, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}

	t.Type = core.TransactionType(typ)
	t.Amount = core.Money{Cents: cents}
	t.Date, err = core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: parse date %q: %w", date, err)
	}
	t.Notes = notes.String
	t.CreatedAt = parseTime(created)
	t.UpdatedAt = parseTime(updated)
	return t, nil
}

const transactionListLimit = 500

// ListTransactions returns the newest transactions joined with category
// display data, optionally filtered by type. Pass an empty type for both.
func (q *Queries) ListTransactions(ctx context.Context, userID string, typ core.TransactionType) ([]core.TransactionListItem, error) {
	where := "t.user_id = ?"
	args := []any{userID}
	if typ != "" {
		where += " AND t.type = ?"
		args = append(args, string(typ))
	}
	args = append(args, transactionListLimit)

	rows, err := q.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT
			t.transaction_id, t.user_id, t.type, t.amount, t.category_id, t.date, t.notes,
			t.created_at, t.updated_at,
			COALESCE(c.name, ''), COALESCE(c.icon, ''), COALESCE(c.color, '')
		FROM transactions t
		LEFT JOIN categories c ON c.category_id = t.category_id
		WHERE %s
		ORDER BY t.date DESC, t.created_at DESC
		LIMIT ?`, where), args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactionListItems(rows)
}

// ListRecentTransactions is the dashboard's short recency feed.
func (q *Queries) ListRecentTransactions(ctx context.Context, userID string, limit int) ([]core.TransactionListItem, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT
			t.transaction_id, t.user_id, t.type, t.amount, t.category_id, t.date, t.notes,
			t.created_at, t.updated_at,
			COALESCE(c.name, ''), COALESCE(c.icon, ''), COALESCE(c.color, '')
		FROM transactions t
		LEFT JOIN categories c ON c.category_id = t.category_id
		WHERE t.user_id = ?
		ORDER BY t.date DESC, t.created_at DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactionListItems(rows)
}

func collectTransactionListItems(rows *sql.Rows) ([]core.TransactionListItem, error) {
	var out []core.TransactionListItem
	for rows.Next() {
		var (
			it      core.TransactionListItem
			typ     string
			cents   int64
			date    string
			notes   sql.NullString
			created string
			updated string
		)
		err := rows.Scan(&it.ID, &it.UserID, &typ, &cents, &it.CategoryID, &date, &notes,
			&created, &updated, &it.CategoryName, &it.CategoryIcon, &it.CategoryColor)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		it.Type = core.TransactionType(typ)
		it.Amount = core.Money{Cents: cents}
		if it.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("parse transaction date %q: %w", date, err)
		}
		it.Notes = notes.String
		it.CreatedAt = parseTime(created)
		it.UpdatedAt = parseTime(updated)
		out = append(out, it)
	}
	return out, rows.Err()
}

// SumExpenses is the spend aggregator: one aggregate query over the ledger,
// expenses only, date bounds inclusive. An empty result is zero, not an error.
func (q *Queries) SumExpenses(ctx context.Context, userID string, r core.DateRange, scope core.Scope) (core.Money, error) {
	query := `SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = ? AND type = 'expense' AND date >= ? AND date <= ?`
	args := []any{userID, r.Start.String(), r.End.String()}

	if !scope.IsAll() {
		query += ` AND category_id IN (?` + strings.Repeat(", ?", len(scope.CategoryIDs)-1) + `)`
		for _, id := range scope.CategoryIDs {
			args = append(args, id)
		}
	}

	var cents int64
	if err := q.db.QueryRowContext(ctx, query, args...).Scan(&cents); err != nil {
		return core.Money{}, fmt.Errorf("sum expenses: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// ExpenseTotalsByCategory groups the range's expenses per category,
// largest total first. A nil range spans the whole ledger.
func (q *Queries) ExpenseTotalsByCategory(ctx context.Context, userID string, r *core.DateRange) ([]core.CategoryTotal, error) {
	where := "t.user_id = ? AND t.type = 'expense'"
	args := []any{userID}
	if r != nil {
		where += " AND t.date >= ? AND t.date <= ?"
		args = append(args, r.Start.String(), r.End.String())
	}

	rows, err := q.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT
			t.category_id,
			COALESCE(c.name, t.category_id),
			COALESCE(c.color, ''),
			COALESCE(SUM(t.amount), 0) AS total
		FROM transactions t
		LEFT JOIN categories c ON c.category_id = t.category_id
		WHERE %s
		GROUP BY t.category_id
		ORDER BY total DESC`, where), args...)
	if err != nil {
		return nil, fmt.Errorf("expense totals by category: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryTotal
	for rows.Next() {
		var (
			ct    core.CategoryTotal
			cents int64
		)
		if err := rows.Scan(&ct.CategoryID, &ct.CategoryName, &ct.CategoryColor, &cents); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		ct.Total = core.Money{Cents: cents}
		out = append(out, ct)
	}
	return out, rows.Err()
}

// IncomeExpenseTotals sums both sides of the ledger in one query. A nil
// range spans the whole ledger.
func (q *Queries) IncomeExpenseTotals(ctx context.Context, userID string, r *core.DateRange) (core.BalanceTotals, error) {
	where := "user_id = ?"
	args := []any{userID}
	if r != nil {
		where += " AND date >= ? AND date <= ?"
		args = append(args, r.Start.String(), r.End.String())
	}

	var income, expense int64
	err := q.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT
			COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0)
		FROM transactions
		WHERE %s`, where), args...).Scan(&income, &expense)
	if err != nil {
		return core.BalanceTotals{}, fmt.Errorf("income/expense totals: %w", err)
	}
	return core.BalanceTotals{
		TotalIncome:  core.Money{Cents: income},
		TotalExpense: core.Money{Cents: expense},
	}, nil
}

func (q *Queries) DailyExpenseTotals(ctx context.Context, userID string, r core.DateRange) ([]core.DailyTotal, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT date, COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = ? AND type = 'expense' AND date >= ? AND date <= ?
		GROUP BY date
		ORDER BY date ASC`,
		userID, r.Start.String(), r.End.String())
	if err != nil {
		return nil, fmt.Errorf("daily expense totals: %w", err)
	}
	defer rows.Close()

	var out []core.DailyTotal
	for rows.Next() {
		var (
			date  string
			cents int64
		)
		if err := rows.Scan(&date, &cents); err != nil {
			return nil, fmt.Errorf("scan daily total: %w", err)
		}
		d, err := core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("parse daily total date %q: %w", date, err)
		}
		out = append(out, core.DailyTotal{Date: d, Total: core.Money{Cents: cents}})
	}
	return out, rows.Err()
}

func (q *Queries) TodaySummary(ctx context.Context, userID string, day core.Date) (core.TodaySummary, error) {
	var (
		cents int64
		count int
	)
	err := q.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0),
			COUNT(*)
		FROM transactions
		WHERE user_id = ? AND date = ?`,
		userID, day.String()).Scan(&cents, &count)
	if err != nil {
		return core.TodaySummary{}, fmt.Errorf("today summary: %w", err)
	}
	return core.TodaySummary{TodayExpense: core.Money{Cents: cents}, TodayCount: count}, nil
}

// ListTransactionsForExport flattens the ledger for the export collaborator,
// oldest first. A nil range spans the whole ledger.
func (q *Queries) ListTransactionsForExport(ctx context.Context, userID string, r *core.DateRange) ([]core.ExportRow, error) {
	where := "t.user_id = ?"
	args := []any{userID}
	if r != nil {
		where += " AND t.date >= ? AND t.date <= ?"
		args = append(args, r.Start.String(), r.End.String())
	}

	rows, err := q.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT
			t.date,
			t.type,
			COALESCE(c.name, t.category_id),
			t.amount,
			COALESCE(t.notes, '')
		FROM transactions t
		LEFT JOIN categories c ON c.category_id = t.category_id
		WHERE %s
		ORDER BY t.date ASC, t.created_at ASC`, where), args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions for export: %w", err)
	}
	defer rows.Close()

	var out []core.ExportRow
	for rows.Next() {
		var (
			row   core.ExportRow
			date  string
			typ   string
			cents int64
		)
		if err := rows.Scan(&date, &typ, &row.CategoryName, &cents, &row.Notes); err != nil {
			return nil, fmt.Errorf("scan export row: %w", err)
		}
		if row.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("parse export date %q: %w", date, err)
		}
		row.Type = core.TransactionType(typ)
		row.Amount = core.Money{Cents: cents}
		out = append(out, row)
	}
	return out, rows.Err()
}
