package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merit/internal/core"
)

func TestAddExpenseBreachingLimitAlerts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.weekly.Upsert(ctx, UpsertWeeklyBudgetInput{
		UserID:                 testUserID,
		LimitAmount:            core.Money{Cents: 69999},
		AppliesToAllCategories: true,
	})
	require.NoError(t, err)

	// The expense write itself drives the threshold check.
	env.addExpense(t, 10000, env.today(), "expense_food")

	alerts := env.sink.dailyAlerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, env.today().String(), alerts[0].date.String())
}

func TestAddTransactionValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.transactions.Add(ctx, AddTransactionInput{
		UserID:     testUserID,
		Type:       core.Expense,
		Amount:     core.Money{Cents: 0},
		CategoryID: "expense_food",
		Date:       env.today(),
	})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	_, err = env.transactions.Add(ctx, AddTransactionInput{
		UserID:     testUserID,
		Type:       "transfer",
		Amount:     core.Money{Cents: 100},
		CategoryID: "expense_food",
		Date:       env.today(),
	})
	assert.ErrorIs(t, err, core.ErrInvalidType)

	_, err = env.transactions.Add(ctx, AddTransactionInput{
		UserID:     testUserID,
		Type:       core.Expense,
		Amount:     core.Money{Cents: 100},
		CategoryID: "no_such_category",
		Date:       env.today(),
	})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestUpdateTransaction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tx := env.addExpense(t, 1500, env.today(), "expense_food")

	err := env.transactions.Update(ctx, UpdateTransactionInput{
		ID:         tx.ID,
		Type:       core.Expense,
		Amount:     core.Money{Cents: 2500},
		CategoryID: "expense_leisure",
		Date:       env.today(),
		Notes:      "cinema instead",
	})
	require.NoError(t, err)

	got, err := env.transactions.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), got.Amount.Cents)
	assert.Equal(t, "expense_leisure", got.CategoryID)
	assert.Equal(t, "cinema instead", got.Notes)

	err = env.transactions.Update(ctx, UpdateTransactionInput{
		ID:         "missing",
		Type:       core.Expense,
		Amount:     core.Money{Cents: 100},
		CategoryID: "expense_food",
		Date:       env.today(),
	})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDeleteTransaction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tx := env.addExpense(t, 1000, env.today(), "expense_food")
	require.NoError(t, env.transactions.Delete(ctx, tx.ID))

	_, err := env.transactions.Get(ctx, tx.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, env.transactions.Delete(ctx, tx.ID), core.ErrNotFound)
}

func TestListTransactionsFilterAndJoin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addExpense(t, 1000, env.today(), "expense_food")
	env.addIncome(t, 5000, env.today())

	all, err := env.transactions.List(ctx, testUserID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	expenses, err := env.transactions.List(ctx, testUserID, core.Expense)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "Food", expenses[0].CategoryName)

	_, err = env.transactions.List(ctx, testUserID, "transfer")
	assert.ErrorIs(t, err, core.ErrInvalidType)
}

func TestRecentTransactionsHonorsLimit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		env.addExpense(t, int64(100*(i+1)), env.today(), "expense_food")
	}

	recent, err := env.transactions.Recent(ctx, testUserID, 5)
	require.NoError(t, err)
	assert.Len(t, recent, 5)
}

func TestBalanceTotals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addIncome(t, 10000, env.today())
	env.addExpense(t, 3000, env.today(), "expense_food")
	env.addExpense(t, 2000, core.NewDate(2025, 2, 1), "expense_food")

	whole, err := env.transactions.BalanceTotals(ctx, testUserID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), whole.TotalIncome.Cents)
	assert.Equal(t, int64(5000), whole.TotalExpense.Cents)

	march := core.DateRange{Start: core.NewDate(2025, 3, 1), End: core.NewDate(2025, 3, 31)}
	scoped, err := env.transactions.BalanceTotals(ctx, testUserID, &march)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), scoped.TotalExpense.Cents)
}

func TestExpenseTotalsByCategoryOrdering(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addExpense(t, 1000, env.today(), "expense_food")
	env.addExpense(t, 4000, env.today(), "expense_leisure")
	env.addExpense(t, 500, env.today(), "expense_food")

	totals, err := env.transactions.ExpenseTotalsByCategory(ctx, testUserID, nil)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, "Leisure", totals[0].CategoryName)
	assert.Equal(t, int64(4000), totals[0].Total.Cents)
	assert.Equal(t, int64(1500), totals[1].Total.Cents)
}

func TestDailyExpenseTotals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addExpense(t, 1000, core.NewDate(2025, 3, 3), "expense_food")
	env.addExpense(t, 2000, core.NewDate(2025, 3, 4), "expense_food")
	env.addExpense(t, 500, core.NewDate(2025, 3, 4), "expense_leisure")

	week := core.DateRange{Start: core.NewDate(2025, 3, 3), End: core.NewDate(2025, 3, 9)}
	totals, err := env.transactions.DailyExpenseTotals(ctx, testUserID, week)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, "2025-03-03", totals[0].Date.String())
	assert.Equal(t, int64(1000), totals[0].Total.Cents)
	assert.Equal(t, int64(2500), totals[1].Total.Cents)
}

func TestTodaySummaryCountsBothTypes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addExpense(t, 1000, env.today(), "expense_food")
	env.addIncome(t, 5000, env.today())

	s, err := env.transactions.TodaySummary(ctx, testUserID, env.today())
	require.NoError(t, err)
	assert.Equal(t, int64(1000), s.TodayExpense.Cents)
	assert.Equal(t, 2, s.TodayCount)
}

func TestExportOldestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addExpense(t, 2000, core.NewDate(2025, 3, 4), "expense_food")
	env.addExpense(t, 1000, core.NewDate(2025, 3, 1), "expense_food")

	rows, err := env.transactions.Export(ctx, testUserID, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-03-01", rows[0].Date.String())
	assert.Equal(t, "Food", rows[0].CategoryName)
}
