package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"merit/internal/core"
	"merit/internal/ids"
	"merit/internal/notify"
	"merit/internal/storage"
)

// WeeklyBudgetService owns the single active weekly budget per user. The
// stored window is advanced lazily: whenever a read finds the row pointing
// at a past week, the row is deactivated and recreated for the current week
// with the same limit and scope. There is no background scheduler.
type WeeklyBudgetService struct {
	repo         *storage.Repository
	ids          ids.Generator
	sink         notify.Sink
	weekStartDay int

	now func() time.Time
}

func NewWeeklyBudgetService(repo *storage.Repository, gen ids.Generator, sink notify.Sink, weekStartDay int) (*WeeklyBudgetService, error) {
	if weekStartDay < 0 || weekStartDay > 6 {
		return nil, core.ErrInvalidWeekday
	}
	return &WeeklyBudgetService{
		repo:         repo,
		ids:          gen,
		sink:         sink,
		weekStartDay: weekStartDay,
		now:          time.Now,
	}, nil
}

func (s *WeeklyBudgetService) currentWeek() core.DateRange {
	// weekStartDay is validated at construction, so this cannot fail.
	r, _ := core.PeriodRange(core.Weekly, s.now(), s.weekStartDay)
	return r
}

// Active returns the user's weekly budget for the current week, rolling a
// stale row forward first. Within one week repeated calls are idempotent:
// the same active row id comes back every time.
func (s *WeeklyBudgetService) Active(ctx context.Context, userID string) (core.WeeklyBudget, error) {
	b, err := s.repo.GetActiveWeeklyBudget(ctx, userID)
	if err != nil {
		return core.WeeklyBudget{}, err
	}

	if !b.AppliesToAllCategories {
		if b.CategoryIDs, err = s.repo.ListWeeklyBudgetCategories(ctx, b.ID); err != nil {
			return core.WeeklyBudget{}, err
		}
	}

	current := s.currentWeek()
	if b.Range.Equal(current) {
		return b, nil
	}

	// The week has turned over. Retire the stale row and create a fresh one
	// carrying the same limit and scope, atomically.
	if err := s.insertActive(ctx, userID, b.LimitAmount, b.AppliesToAllCategories, b.CategoryIDs); err != nil {
		return core.WeeklyBudget{}, fmt.Errorf("roll over weekly budget: %w", err)
	}

	slog.InfoContext(ctx, "Weekly budget rolled over",
		"user_id", userID,
		"stale_budget_id", b.ID,
		"week_start", current.Start.String(),
		"week_end", current.End.String())

	return s.Active(ctx, userID)
}

type UpsertWeeklyBudgetInput struct {
	UserID                 string
	LimitAmount            core.Money
	AppliesToAllCategories bool
	CategoryIDs            []string
}

// Upsert replaces the user's weekly budget with a new active row for the
// current week. Any previous active row is deactivated, never updated in
// place, so every window the user ever had stays auditable by id. A scoped
// budget must name at least one category; an empty scope would otherwise
// read as "all categories" everywhere the scope is consumed.
func (s *WeeklyBudgetService) Upsert(ctx context.Context, in UpsertWeeklyBudgetInput) (string, error) {
	if err := in.LimitAmount.Validate(); err != nil {
		return "", err
	}
	categoryIDs := dedupe(in.CategoryIDs)
	if !in.AppliesToAllCategories && len(categoryIDs) == 0 {
		return "", core.ErrInvalidScope
	}
	return s.upsert(ctx, in.UserID, in.LimitAmount, in.AppliesToAllCategories, categoryIDs)
}

func (s *WeeklyBudgetService) upsert(ctx context.Context, userID string, limit core.Money, all bool, categoryIDs []string) (string, error) {
	if err := s.insertActive(ctx, userID, limit, all, categoryIDs); err != nil {
		return "", err
	}
	b, err := s.repo.GetActiveWeeklyBudget(ctx, userID)
	if err != nil {
		return "", err
	}
	return b.ID, nil
}

func (s *WeeklyBudgetService) insertActive(ctx context.Context, userID string, limit core.Money, all bool, categoryIDs []string) error {
	id := s.ids.NewID()
	budget := core.WeeklyBudget{
		ID:                     id,
		UserID:                 userID,
		LimitAmount:            limit,
		Range:                  s.currentWeek(),
		AppliesToAllCategories: all,
		IsActive:               true,
	}

	return s.repo.WithTx(ctx, func(q *storage.Queries) error {
		if err := q.DeactivateWeeklyBudgets(ctx, userID); err != nil {
			return err
		}
		if err := q.InsertWeeklyBudget(ctx, budget); err != nil {
			return err
		}
		if all {
			return nil
		}
		for _, categoryID := range categoryIDs {
			if err := q.InsertWeeklyBudgetCategory(ctx, id, categoryID); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete retires the active weekly budget. The row is kept, deactivated,
// so history survives; deleting when none is configured is a no-op.
func (s *WeeklyBudgetService) Delete(ctx context.Context, userID string) error {
	b, err := s.repo.GetActiveWeeklyBudget(ctx, userID)
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	return s.repo.WithTx(ctx, func(q *storage.Queries) error {
		if err := q.DeleteWeeklyBudgetCategories(ctx, b.ID); err != nil {
			return err
		}
		return q.DeactivateWeeklyBudgets(ctx, userID)
	})
}

// Summary resolves the current weekly budget and derives its spend numbers:
// the whole week, the given day, and the flat per-day limit (weekly / 7).
func (s *WeeklyBudgetService) Summary(ctx context.Context, userID string, today core.Date) (core.WeeklyBudgetSummary, error) {
	b, err := s.Active(ctx, userID)
	if err != nil {
		return core.WeeklyBudgetSummary{}, err
	}

	scope := b.Scope()
	var weekSpent, todaySpent core.Money

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		weekSpent, err = s.repo.SumExpenses(gctx, userID, b.Range, scope)
		return err
	})
	g.Go(func() error {
		var err error
		todaySpent, err = s.repo.SumExpenses(gctx, userID, core.SingleDay(today), scope)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.WeeklyBudgetSummary{}, fmt.Errorf("compute weekly summary: %w", err)
	}

	return core.WeeklyBudgetSummary{
		WeeklyBudget: b,
		WeekSpent:    weekSpent,
		TodaySpent:   todaySpent,
		DailyLimit:   core.Money{Cents: b.LimitAmount.Cents / 7},
	}, nil
}

// CheckDailyLimit fires the daily-limit alert when the day's spend strictly
// exceeds the per-day limit. At most one alert fires per user per calendar
// day, enforced by a persisted marker; sink failures are swallowed.
func (s *WeeklyBudgetService) CheckDailyLimit(ctx context.Context, userID string, day core.Date) error {
	summary, err := s.Summary(ctx, userID, day)
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if summary.LimitAmount.Cents <= 0 {
		return nil
	}
	if !summary.Range.Contains(day) {
		return nil
	}

	// Strict comparison against the exact rational limit: spent > weekly/7
	// iff 7*spent > weekly. Equal spend is not a breach.
	if summary.TodaySpent.Cents*7 <= summary.LimitAmount.Cents {
		return nil
	}

	fired, err := s.repo.MarkDailyAlert(ctx, userID, day)
	if err != nil {
		return err
	}
	if !fired {
		return nil
	}

	if err := s.sink.NotifyDailyBudgetExceeded(ctx, userID, day, summary.TodaySpent, summary.DailyLimit); err != nil {
		slog.WarnContext(ctx, "Failed to deliver daily budget alert",
			"user_id", userID,
			"date", day.String(),
			"error", err)
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
