package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"merit/internal/core"
)

// DefaultCategories is the fixed seed set. Seeding is idempotent and user
// categories are never touched by it.
var DefaultCategories = []core.Category{
	{ID: "expense_food", Name: "Food", Type: core.Expense, Icon: "fast-food", Color: "#FA8C16", IsDefault: true},
	{ID: "expense_transportation", Name: "Transportation", Type: core.Expense, Icon: "bus", Color: "#4A90E2", IsDefault: true},
	{ID: "expense_school_supplies", Name: "School Supplies", Type: core.Expense, Icon: "school", Color: "#4A90E2", IsDefault: true},
	{ID: "expense_leisure", Name: "Leisure", Type: core.Expense, Icon: "game-controller", Color: "#52C41A", IsDefault: true},
	{ID: "expense_others", Name: "Others", Type: core.Expense, Icon: "ellipsis-horizontal", Color: "#666666", IsDefault: true},
	{ID: "income_allowance", Name: "Allowance", Type: core.Income, Icon: "cash", Color: "#52C41A", IsDefault: true},
	{ID: "income_gift", Name: "Gift", Type: core.Income, Icon: "gift", Color: "#52C41A", IsDefault: true},
	{ID: "income_earnings", Name: "Earnings", Type: core.Income, Icon: "briefcase", Color: "#52C41A", IsDefault: true},
	{ID: "income_other", Name: "Other", Type: core.Income, Icon: "ellipsis-horizontal", Color: "#666666", IsDefault: true},
}

func (q *Queries) SeedDefaultCategories(ctx context.Context) error {
	for _, c := range DefaultCategories {
		_, err := q.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO categories (category_id, name, type, icon, color, is_default, user_id) VALUES (?, ?, ?, ?, ?, 1, NULL)`,
			c.ID, c.Name, string(c.Type), c.Icon, c.Color,
		)
		if err != nil {
			return fmt.Errorf("seed category %s: %w", c.ID, err)
		}
	}
	return nil
}

// CreateCategory inserts a user-defined category.
func (q *Queries) CreateCategory(ctx context.Context, c core.Category) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO categories (category_id, name, type, icon, color, is_default, user_id) VALUES (?, ?, ?, ?, ?, 0, ?)`,
		c.ID, c.Name, string(c.Type), c.Icon, c.Color, nullString(c.UserID),
	)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// ListCategories returns the registry, optionally filtered by type. Pass an
// empty type for income and expense categories together.
func (q *Queries) ListCategories(ctx context.Context, typ core.TransactionType) ([]core.Category, error) {
	where := "1 = 1"
	args := []any{}
	if typ != "" {
		where = "type = ?"
		args = append(args, string(typ))
	}

	rows, err := q.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT category_id, name, type, icon, color, is_default, user_id
		 FROM categories
		 WHERE %s
		 ORDER BY is_default DESC, name ASC`, where), args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (q *Queries) GetCategory(ctx context.Context, id string) (core.Category, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT category_id, name, type, icon, color, is_default, user_id
		 FROM categories WHERE category_id = ? LIMIT 1`,
		id,
	)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrNotFound
	}
	return c, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(s rowScanner) (core.Category, error) {
	var (
		c         core.Category
		typ       string
		icon      sql.NullString
		color     sql.NullString
		isDefault int64
		userID    sql.NullString
	)
	if err := s.Scan(&c.ID, &c.Name, &typ, &icon, &color, &isDefault, &userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Category{}, err
		}
		return core.Category{}, fmt.Errorf("scan category: %w", err)
	}
	c.Type = core.TransactionType(typ)
	c.Icon = icon.String
	c.Color = color.String
	c.IsDefault = isDefault == 1
	c.UserID = userID.String
	return c, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
