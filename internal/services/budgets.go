package services

import (
	"context"
	"fmt"
	"time"

	"merit/internal/core"
	"merit/internal/ids"
	"merit/internal/storage"
)

// BudgetService manages per-category limits over weekly or monthly windows.
// Changing a budget never edits the old row: the previous active row for the
// same (user, category, period) tuple is deactivated and a fresh one inserted.
type BudgetService struct {
	repo         *storage.Repository
	ids          ids.Generator
	weekStartDay int

	now func() time.Time
}

func NewBudgetService(repo *storage.Repository, gen ids.Generator, weekStartDay int) (*BudgetService, error) {
	if weekStartDay < 0 || weekStartDay > 6 {
		return nil, core.ErrInvalidWeekday
	}
	return &BudgetService{
		repo:         repo,
		ids:          gen,
		weekStartDay: weekStartDay,
		now:          time.Now,
	}, nil
}

type CreateBudgetInput struct {
	UserID      string
	CategoryID  string
	Period      core.BudgetPeriod
	LimitAmount core.Money
}

// Create installs a budget for the category and period, replacing any active
// one for the same tuple. The window always starts from the current period.
func (s *BudgetService) Create(ctx context.Context, in CreateBudgetInput) (core.Budget, error) {
	if err := in.Period.Validate(); err != nil {
		return core.Budget{}, err
	}
	if err := in.LimitAmount.Validate(); err != nil {
		return core.Budget{}, err
	}
	if _, err := s.repo.GetCategory(ctx, in.CategoryID); err != nil {
		return core.Budget{}, fmt.Errorf("resolve category %q: %w", in.CategoryID, err)
	}

	r, err := core.PeriodRange(in.Period, s.now(), s.weekStartDay)
	if err != nil {
		return core.Budget{}, err
	}

	b := core.Budget{
		ID:          s.ids.NewID(),
		UserID:      in.UserID,
		CategoryID:  in.CategoryID,
		Period:      in.Period,
		LimitAmount: in.LimitAmount,
		Range:       r,
		IsActive:    true,
	}

	err = s.repo.WithTx(ctx, func(q *storage.Queries) error {
		if err := q.DeactivateBudgets(ctx, in.UserID, in.CategoryID, in.Period); err != nil {
			return err
		}
		return q.InsertBudget(ctx, b)
	})
	if err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

// UpdateLimit changes the limit of an existing budget in place. The window
// and scope stay as they are.
func (s *BudgetService) UpdateLimit(ctx context.Context, id string, limit core.Money) error {
	if err := limit.Validate(); err != nil {
		return err
	}
	return s.repo.UpdateBudgetLimit(ctx, id, limit)
}

// SwitchPeriod moves a budget between weekly and monthly by retiring the
// current row and creating one on the new period's window, keeping the limit.
// Retire and insert run in one transaction: the category never ends up with
// no active budget because the switch failed halfway.
func (s *BudgetService) SwitchPeriod(ctx context.Context, id string, period core.BudgetPeriod) (core.Budget, error) {
	if err := period.Validate(); err != nil {
		return core.Budget{}, err
	}

	old, err := s.repo.GetBudget(ctx, id)
	if err != nil {
		return core.Budget{}, err
	}
	if old.Period == period {
		return old, nil
	}

	r, err := core.PeriodRange(period, s.now(), s.weekStartDay)
	if err != nil {
		return core.Budget{}, err
	}

	b := core.Budget{
		ID:          s.ids.NewID(),
		UserID:      old.UserID,
		CategoryID:  old.CategoryID,
		Period:      period,
		LimitAmount: old.LimitAmount,
		Range:       r,
		IsActive:    true,
	}

	err = s.repo.WithTx(ctx, func(q *storage.Queries) error {
		// The tuple changes with the period, so the old row is not covered
		// by the tuple deactivation and has to be retired explicitly.
		if err := q.DeactivateBudget(ctx, id); err != nil {
			return err
		}
		if err := q.DeactivateBudgets(ctx, old.UserID, old.CategoryID, period); err != nil {
			return err
		}
		return q.InsertBudget(ctx, b)
	})
	if err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

// Deactivate retires a budget without touching its history.
func (s *BudgetService) Deactivate(ctx context.Context, id string) error {
	return s.repo.DeactivateBudget(ctx, id)
}

func (s *BudgetService) Get(ctx context.Context, id string) (core.Budget, error) {
	return s.repo.GetBudget(ctx, id)
}

// List returns the user's active budgets with their in-window spend.
func (s *BudgetService) List(ctx context.Context, userID string) ([]core.BudgetListItem, error) {
	return s.repo.ListActiveBudgets(ctx, userID)
}
