package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"merit/internal/core"
	"merit/internal/ids"
	"merit/internal/storage"
)

const testUserID = "u1"

// 2025-03-05 is a Wednesday; with weeks starting Monday the surrounding
// window is 2025-03-03 .. 2025-03-09.
var testNow = time.Date(2025, time.March, 5, 12, 0, 0, 0, time.UTC)

type capturingSink struct {
	mu     sync.Mutex
	daily  []dailyAlert
	oneOff int
}

type dailyAlert struct {
	userID string
	date   core.Date
	spent  core.Money
	limit  core.Money
}

func (s *capturingSink) NotifyDailyBudgetExceeded(_ context.Context, userID string, date core.Date, spent, dailyLimit core.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.daily = append(s.daily, dailyAlert{userID: userID, date: date, spent: spent, limit: dailyLimit})
	return nil
}

func (s *capturingSink) NotifyOneOff(context.Context, string, string, map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.oneOff++
	return nil
}

func (s *capturingSink) dailyAlerts() []dailyAlert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]dailyAlert(nil), s.daily...)
}

type testEnv struct {
	repo         *storage.Repository
	sink         *capturingSink
	now          *time.Time
	weekly       *WeeklyBudgetService
	budgets      *BudgetService
	goals        *GoalService
	transactions *TransactionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "merit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	ctx := context.Background()
	require.NoError(t, repo.SeedDefaultCategories(ctx))
	require.NoError(t, repo.EnsureUser(ctx, testUserID, "Test", 1))

	now := testNow
	clock := func() time.Time { return now }
	sink := &capturingSink{}
	gen := ids.NewUUIDGenerator()

	weekly, err := NewWeeklyBudgetService(repo, gen, sink, 1)
	require.NoError(t, err)
	weekly.now = clock

	budgets, err := NewBudgetService(repo, gen, 1)
	require.NoError(t, err)
	budgets.now = clock

	goals := NewGoalService(repo, gen)
	goals.now = clock

	transactions := NewTransactionService(repo, gen, weekly)
	transactions.now = clock

	return &testEnv{
		repo:         repo,
		sink:         sink,
		now:          &now,
		weekly:       weekly,
		budgets:      budgets,
		goals:        goals,
		transactions: transactions,
	}
}

func (e *testEnv) advance(d time.Duration) {
	*e.now = e.now.Add(d)
}

func (e *testEnv) today() core.Date {
	return core.DateOf(*e.now)
}

func (e *testEnv) addExpense(t *testing.T, cents int64, day core.Date, categoryID string) core.Transaction {
	t.Helper()
	tx, err := e.transactions.Add(context.Background(), AddTransactionInput{
		UserID:     testUserID,
		Type:       core.Expense,
		Amount:     core.Money{Cents: cents},
		CategoryID: categoryID,
		Date:       day,
	})
	require.NoError(t, err)
	return tx
}

func (e *testEnv) addIncome(t *testing.T, cents int64, day core.Date) core.Transaction {
	t.Helper()
	tx, err := e.transactions.Add(context.Background(), AddTransactionInput{
		UserID:     testUserID,
		Type:       core.Income,
		Amount:     core.Money{Cents: cents},
		CategoryID: "income_allowance",
		Date:       day,
	})
	require.NoError(t, err)
	return tx
}
