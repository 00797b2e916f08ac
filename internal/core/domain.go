package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	Weekly  BudgetPeriod = "weekly"
	Monthly BudgetPeriod = "monthly"
)

type (
	TransactionType string
	BudgetPeriod    string

	// Transaction is a single ledger row. Amounts are always positive;
	// the type field decides the sign when totals are derived.
	Transaction struct {
		ID         string
		UserID     string
		Type       TransactionType
		Amount     Money
		CategoryID string
		Date       Date
		Notes      string
		CreatedAt  time.Time
		UpdatedAt  time.Time
	}

	Category struct {
		ID        string
		Name      string
		Type      TransactionType
		Icon      string
		Color     string
		IsDefault bool
		UserID    string // empty for system defaults
	}

	// Budget is a per-category limit over a weekly or monthly window.
	// At most one active row per (user, category, period).
	Budget struct {
		ID          string
		UserID      string
		CategoryID  string
		Period      BudgetPeriod
		LimitAmount Money
		Range       DateRange
		IsActive    bool
	}

	// WeeklyBudget is the single global weekly limit per user. CategoryIDs
	// is empty when the budget applies to all categories.
	WeeklyBudget struct {
		ID                     string
		UserID                 string
		LimitAmount            Money
		Range                  DateRange
		AppliesToAllCategories bool
		IsActive               bool
		CategoryIDs            []string
	}

	WeeklyBudgetSummary struct {
		WeeklyBudget
		WeekSpent  Money
		TodaySpent Money
		DailyLimit Money
	}

	SavingsGoal struct {
		ID            string
		UserID        string
		Name          string
		Icon          string
		TargetAmount  Money
		CurrentAmount Money
		TargetDate    Date // zero when the goal has no target date
		IsCompleted   bool
		CreatedAt     time.Time
	}
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidName    = errors.New("invalid name")
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidWeekday = errors.New("invalid week start day")
	ErrInvalidPeriod  = errors.New("invalid budget period")
	ErrInvalidType    = errors.New("invalid transaction type")
	ErrInvalidScope   = errors.New("invalid category scope")
	ErrNotFound       = errors.New("not found")
)

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	}
	return ErrInvalidType
}

func (p BudgetPeriod) Validate() error {
	switch p {
	case Weekly, Monthly:
		return nil
	}
	return ErrInvalidPeriod
}

func (t Transaction) Validate() error {
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if t.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.CategoryID) == "" {
		return errors.New("empty category id")
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Scope selects which expenses count towards a spend total: every expense,
// a single category, or a set of categories.
type Scope struct {
	CategoryIDs []string
}

// ScopeAll matches every expense regardless of category.
func ScopeAll() Scope { return Scope{} }

func ScopeCategory(id string) Scope { return Scope{CategoryIDs: []string{id}} }

func ScopeCategories(ids []string) Scope { return Scope{CategoryIDs: ids} }

// IsAll reports whether the scope places no category restriction.
func (s Scope) IsAll() bool { return len(s.CategoryIDs) == 0 }

// Scope resolves the category filter this weekly budget aggregates over.
func (b WeeklyBudget) Scope() Scope {
	if b.AppliesToAllCategories {
		return ScopeAll()
	}
	return ScopeCategories(b.CategoryIDs)
}

func (g SavingsGoal) Validate() error {
	if len(strings.TrimSpace(g.Name)) < 2 {
		return ErrInvalidName
	}
	if g.TargetAmount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if g.CurrentAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}
