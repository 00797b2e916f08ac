package core

import "time"

// DefaultWeekStartDay is Monday, matching time.Weekday numbering
// (0=Sunday .. 6=Saturday).
const DefaultWeekStartDay = 1

// PeriodRange maps a reference instant to the budget window containing it.
//
// Weekly windows start on the most recent day whose weekday equals
// weekStartDay and span exactly seven days. Monthly windows cover the
// reference instant's calendar month. Both bounds are inclusive. The
// computation is pure and uses only the wall-clock date components of ref.
func PeriodRange(period BudgetPeriod, ref time.Time, weekStartDay int) (DateRange, error) {
	if weekStartDay < 0 || weekStartDay > 6 {
		return DateRange{}, ErrInvalidWeekday
	}

	switch period {
	case Weekly:
		day := DateOf(ref)
		daysSinceStart := (int(day.Weekday()) - weekStartDay + 7) % 7
		start := day.AddDays(-daysSinceStart)
		return DateRange{Start: start, End: start.AddDays(6)}, nil
	case Monthly:
		y, m, _ := ref.Date()
		start := NewDate(y, int(m), 1)
		// Day zero of the next month is the last day of this one.
		end := Date{Time: time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC)}
		return DateRange{Start: start, End: end}, nil
	}
	return DateRange{}, ErrInvalidPeriod
}
