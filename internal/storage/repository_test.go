package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merit/internal/core"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "merit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSeedDefaultCategoriesIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SeedDefaultCategories(ctx))
	require.NoError(t, repo.SeedDefaultCategories(ctx))

	cats, err := repo.ListCategories(ctx, "")
	require.NoError(t, err)
	assert.Len(t, cats, len(DefaultCategories))

	expenses, err := repo.ListCategories(ctx, core.Expense)
	require.NoError(t, err)
	assert.Len(t, expenses, 5)

	incomes, err := repo.ListCategories(ctx, core.Income)
	require.NoError(t, err)
	assert.Len(t, incomes, 4)
}

func TestEnsureUserKeepsExistingRow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.EnsureUser(ctx, "u1", "First", 1))
	require.NoError(t, repo.EnsureUser(ctx, "u1", "Second", 3))

	name, err := repo.GetUserName(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "First", name)

	_, err = repo.GetUserName(ctx, "nobody")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestMarkDailyAlertDeduplicates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.EnsureUser(ctx, "u1", "Test", 1))

	day := core.NewDate(2025, 3, 5)

	fired, err := repo.MarkDailyAlert(ctx, "u1", day)
	require.NoError(t, err)
	assert.True(t, fired)

	fired, err = repo.MarkDailyAlert(ctx, "u1", day)
	require.NoError(t, err)
	assert.False(t, fired)

	// A different day and a different user both fire again.
	fired, err = repo.MarkDailyAlert(ctx, "u1", day.AddDays(1))
	require.NoError(t, err)
	assert.True(t, fired)

	require.NoError(t, repo.EnsureUser(ctx, "u2", "Other", 1))
	fired, err = repo.MarkDailyAlert(ctx, "u2", day)
	require.NoError(t, err)
	assert.True(t, fired)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.EnsureUser(ctx, "u1", "Test", 1))

	boom := errors.New("boom")
	goal := core.SavingsGoal{
		ID:           "g1",
		UserID:       "u1",
		Name:         "Rollback",
		TargetAmount: core.Money{Cents: 1000},
		CreatedAt:    time.Now().UTC(),
	}

	err := repo.WithTx(ctx, func(q *Queries) error {
		if err := q.InsertGoal(ctx, goal); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repo.GetGoal(ctx, "g1")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestGoalEventDetailRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.EnsureUser(ctx, "u1", "Test", 1))

	goal := core.SavingsGoal{
		ID:           "g1",
		UserID:       "u1",
		Name:         "Events",
		TargetAmount: core.Money{Cents: 10000},
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, repo.InsertGoal(ctx, goal))

	at := time.Date(2025, time.March, 5, 10, 0, 0, 0, time.UTC)
	events := []core.GoalEvent{
		{ID: "e1", GoalID: "g1", UserID: "u1", Type: core.EventCreate, CreatedAt: at,
			Detail: core.CreateDetail{NewTarget: core.Money{Cents: 10000}}},
		{ID: "e2", GoalID: "g1", UserID: "u1", Type: core.EventAdd, Note: "note", CreatedAt: at,
			Detail: core.AddDetail{Delta: core.Money{Cents: 500}, NewCurrent: core.Money{Cents: 500}}},
		{ID: "e3", GoalID: "g1", UserID: "u1", Type: core.EventSetCurrent, CreatedAt: at,
			Detail: core.SetCurrentDetail{OldCurrent: core.Money{Cents: 500}, NewCurrent: core.Money{Cents: 9000}}},
		{ID: "e4", GoalID: "g1", UserID: "u1", Type: core.EventEdit, CreatedAt: at,
			Detail: core.EditDetail{
				OldCurrent: core.Money{Cents: 9000}, NewCurrent: core.Money{Cents: 9000},
				OldTarget: core.Money{Cents: 10000}, NewTarget: core.Money{Cents: 9000},
				NewTargetDate: core.NewDate(2025, 6, 1),
			}},
		{ID: "e5", GoalID: "g1", UserID: "u1", Type: core.EventComplete, CreatedAt: at},
		{ID: "e6", GoalID: "g1", UserID: "u1", Type: core.EventReopen, CreatedAt: at},
	}
	for _, e := range events {
		require.NoError(t, repo.InsertGoalEvent(ctx, e))
	}

	got, err := repo.ListGoalEvents(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, got, len(events))

	// Same-instant events keep insertion order via rowid.
	for i, e := range events {
		assert.Equal(t, e.ID, got[i].ID)
		assert.Equal(t, e.Type, got[i].Type)
		assert.Equal(t, e.Detail, got[i].Detail)
	}
	assert.Equal(t, "note", got[1].Note)
}

func TestInsertGoalEventRejectsUnknownDetail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	type weird struct{ core.AddDetail }
	err := repo.InsertGoalEvent(ctx, core.GoalEvent{
		ID: "e1", GoalID: "g1", UserID: "u1", Type: core.EventAdd,
		CreatedAt: time.Now(), Detail: weird{},
	})
	assert.Error(t, err)
}

func TestSumExpensesScopes(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.SeedDefaultCategories(ctx))
	require.NoError(t, repo.EnsureUser(ctx, "u1", "Test", 1))

	insert := func(id, category string, cents int64, day string) {
		d, err := core.ParseDate(day)
		require.NoError(t, err)
		require.NoError(t, repo.InsertTransaction(ctx, core.Transaction{
			ID: id, UserID: "u1", Type: core.Expense,
			Amount: core.Money{Cents: cents}, CategoryID: category, Date: d,
			CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
		}))
	}
	insert("t1", "expense_food", 1000, "2025-03-03")
	insert("t2", "expense_leisure", 2000, "2025-03-04")
	insert("t3", "expense_food", 4000, "2025-03-10") // outside the range

	week := core.DateRange{Start: core.NewDate(2025, 3, 3), End: core.NewDate(2025, 3, 9)}

	all, err := repo.SumExpenses(ctx, "u1", week, core.ScopeAll())
	require.NoError(t, err)
	assert.Equal(t, int64(3000), all.Cents)

	food, err := repo.SumExpenses(ctx, "u1", week, core.ScopeCategory("expense_food"))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), food.Cents)

	both, err := repo.SumExpenses(ctx, "u1", week, core.ScopeCategories([]string{"expense_food", "expense_leisure"}))
	require.NoError(t, err)
	assert.Equal(t, int64(3000), both.Cents)

	empty, err := repo.SumExpenses(ctx, "u1", core.SingleDay(core.NewDate(2025, 1, 1)), core.ScopeAll())
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.Cents)
}

func TestMigrationsRunTwice(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "merit.db")

	repo, err := NewRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	// Reopening the same file must not fail on already-applied migrations.
	repo, err = NewRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Close())
}
