package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"merit/internal/core"
	"merit/internal/ids"
	"merit/internal/storage"
)

// TransactionService records income and expenses and exposes the report
// queries built on top of them. Expense writes also poke the weekly budget
// so the daily-limit alert fires as soon as a breach happens.
type TransactionService struct {
	repo    *storage.Repository
	ids     ids.Generator
	budgets *WeeklyBudgetService

	now func() time.Time
}

func NewTransactionService(repo *storage.Repository, gen ids.Generator, budgets *WeeklyBudgetService) *TransactionService {
	return &TransactionService{
		repo:    repo,
		ids:     gen,
		budgets: budgets,
		now:     time.Now,
	}
}

type AddTransactionInput struct {
	UserID     string
	Type       core.TransactionType
	Amount     core.Money
	CategoryID string
	Date       core.Date
	Notes      string
}

func (s *TransactionService) Add(ctx context.Context, in AddTransactionInput) (core.Transaction, error) {
	now := s.now().UTC()
	tx := core.Transaction{
		ID:         s.ids.NewID(),
		UserID:     in.UserID,
		Type:       in.Type,
		Amount:     in.Amount,
		CategoryID: in.CategoryID,
		Date:       in.Date,
		Notes:      in.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if _, err := s.repo.GetCategory(ctx, in.CategoryID); err != nil {
		return core.Transaction{}, fmt.Errorf("resolve category %q: %w", in.CategoryID, err)
	}

	if err := s.repo.InsertTransaction(ctx, tx); err != nil {
		return core.Transaction{}, err
	}

	if tx.Type == core.Expense {
		s.checkBudget(ctx, tx.UserID, tx.Date)
	}
	return tx, nil
}

type UpdateTransactionInput struct {
	ID         string
	Type       core.TransactionType
	Amount     core.Money
	CategoryID string
	Date       core.Date
	Notes      string
}

func (s *TransactionService) Update(ctx context.Context, in UpdateTransactionInput) error {
	existing, err := s.repo.GetTransaction(ctx, in.ID)
	if err != nil {
		return err
	}

	updated := existing
	updated.Type = in.Type
	updated.Amount = in.Amount
	updated.CategoryID = in.CategoryID
	updated.Date = in.Date
	updated.Notes = in.Notes
	updated.UpdatedAt = s.now().UTC()
	if err := updated.Validate(); err != nil {
		return err
	}
	if _, err := s.repo.GetCategory(ctx, in.CategoryID); err != nil {
		return fmt.Errorf("resolve category %q: %w", in.CategoryID, err)
	}

	if err := s.repo.UpdateTransaction(ctx, updated); err != nil {
		return err
	}

	if updated.Type == core.Expense {
		s.checkBudget(ctx, updated.UserID, updated.Date)
	}
	return nil
}

func (s *TransactionService) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteTransaction(ctx, id)
}

func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

// List returns the newest transactions first. Pass an empty type to see
// income and expenses together.
func (s *TransactionService) List(ctx context.Context, userID string, typ core.TransactionType) ([]core.TransactionListItem, error) {
	if typ != "" {
		if err := typ.Validate(); err != nil {
			return nil, err
		}
	}
	return s.repo.ListTransactions(ctx, userID, typ)
}

func (s *TransactionService) Recent(ctx context.Context, userID string, limit int) ([]core.TransactionListItem, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.repo.ListRecentTransactions(ctx, userID, limit)
}

func (s *TransactionService) ExpenseTotalsByCategory(ctx context.Context, userID string, r *core.DateRange) ([]core.CategoryTotal, error) {
	return s.repo.ExpenseTotalsByCategory(ctx, userID, r)
}

func (s *TransactionService) BalanceTotals(ctx context.Context, userID string, r *core.DateRange) (core.BalanceTotals, error) {
	return s.repo.IncomeExpenseTotals(ctx, userID, r)
}

func (s *TransactionService) DailyExpenseTotals(ctx context.Context, userID string, r core.DateRange) ([]core.DailyTotal, error) {
	return s.repo.DailyExpenseTotals(ctx, userID, r)
}

func (s *TransactionService) TodaySummary(ctx context.Context, userID string, today core.Date) (core.TodaySummary, error) {
	return s.repo.TodaySummary(ctx, userID, today)
}

func (s *TransactionService) Export(ctx context.Context, userID string, r *core.DateRange) ([]core.ExportRow, error) {
	return s.repo.ListTransactionsForExport(ctx, userID, r)
}

// checkBudget runs the daily-limit check after an expense write. The write
// already succeeded; a failed check is logged and never surfaced.
func (s *TransactionService) checkBudget(ctx context.Context, userID string, day core.Date) {
	if s.budgets == nil {
		return
	}
	if err := s.budgets.CheckDailyLimit(ctx, userID, day); err != nil {
		slog.WarnContext(ctx, "Daily limit check failed",
			"user_id", userID,
			"date", day.String(),
			"error", err)
	}
}
