package core

// Read-side projections consumed by presentation layers. These are derived
// from the ledger on every read and never persisted.

// TransactionListItem is a ledger row joined with its category's display
// attributes.
type TransactionListItem struct {
	Transaction
	CategoryName  string
	CategoryIcon  string
	CategoryColor string
}

// BudgetListItem is an active per-category budget joined with the spend
// accumulated inside its window.
type BudgetListItem struct {
	Budget
	CategoryName  string
	CategoryIcon  string
	CategoryColor string
	Spent         Money
}

// CategoryTotal is the expense sum for one category over a range.
type CategoryTotal struct {
	CategoryID    string
	CategoryName  string
	CategoryColor string
	Total         Money
}

// DailyTotal is the expense sum for a single calendar day.
type DailyTotal struct {
	Date  Date
	Total Money
}

// BalanceTotals carries income and expense sums over some span.
type BalanceTotals struct {
	TotalIncome  Money
	TotalExpense Money
}

// TodaySummary counts the day's activity alongside its expense total.
type TodaySummary struct {
	TodayExpense Money
	TodayCount   int
}

// ExportRow is one flattened line for the export collaborator.
type ExportRow struct {
	Date         Date
	Type         TransactionType
	CategoryName string
	Amount       Money
	Notes        string
}
