package core

import (
	"errors"
	"testing"
	"time"
)

func TestPeriodRange_Weekly(t *testing.T) {
	tests := []struct {
		name         string
		ref          time.Time
		weekStartDay int
		wantStart    string
		wantEnd      string
	}{
		{
			name:         "wednesday with monday start",
			ref:          time.Date(2024, 1, 17, 15, 30, 0, 0, time.UTC),
			weekStartDay: 1,
			wantStart:    "2024-01-15",
			wantEnd:      "2024-01-21",
		},
		{
			name:         "reference on the start day itself",
			ref:          time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			weekStartDay: 1,
			wantStart:    "2024-01-15",
			wantEnd:      "2024-01-21",
		},
		{
			name:         "sunday with monday start falls in previous week",
			ref:          time.Date(2024, 1, 21, 23, 59, 0, 0, time.UTC),
			weekStartDay: 1,
			wantStart:    "2024-01-15",
			wantEnd:      "2024-01-21",
		},
		{
			name:         "sunday start",
			ref:          time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC),
			weekStartDay: 0,
			wantStart:    "2024-01-14",
			wantEnd:      "2024-01-20",
		},
		{
			name:         "saturday start",
			ref:          time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC),
			weekStartDay: 6,
			wantStart:    "2024-01-13",
			wantEnd:      "2024-01-19",
		},
		{
			name:         "week spanning a month boundary",
			ref:          time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC),
			weekStartDay: 1,
			wantStart:    "2024-01-29",
			wantEnd:      "2024-02-04",
		},
		{
			name:         "week spanning a year boundary",
			ref:          time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC),
			weekStartDay: 1,
			wantStart:    "2024-12-30",
			wantEnd:      "2025-01-05",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PeriodRange(Weekly, tt.ref, tt.weekStartDay)
			if err != nil {
				t.Fatalf("PeriodRange() error = %v", err)
			}
			if got.Start.String() != tt.wantStart || got.End.String() != tt.wantEnd {
				t.Errorf("PeriodRange() = [%s, %s], want [%s, %s]",
					got.Start, got.End, tt.wantStart, tt.wantEnd)
			}
			if got.End.Time.Sub(got.Start.Time) != 6*24*time.Hour {
				t.Errorf("weekly range is not exactly 7 days: [%s, %s]", got.Start, got.End)
			}
		})
	}
}

func TestPeriodRange_Monthly(t *testing.T) {
	tests := []struct {
		name      string
		ref       time.Time
		wantStart string
		wantEnd   string
	}{
		{
			name:      "mid january",
			ref:       time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC),
			wantStart: "2024-01-01",
			wantEnd:   "2024-01-31",
		},
		{
			name:      "leap february",
			ref:       time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC),
			wantStart: "2024-02-01",
			wantEnd:   "2024-02-29",
		},
		{
			name:      "non-leap february",
			ref:       time.Date(2023, 2, 10, 12, 0, 0, 0, time.UTC),
			wantStart: "2023-02-01",
			wantEnd:   "2023-02-28",
		},
		{
			name:      "thirty day month",
			ref:       time.Date(2024, 4, 30, 23, 0, 0, 0, time.UTC),
			wantStart: "2024-04-01",
			wantEnd:   "2024-04-30",
		},
		{
			name:      "december",
			ref:       time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
			wantStart: "2024-12-01",
			wantEnd:   "2024-12-31",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PeriodRange(Monthly, tt.ref, DefaultWeekStartDay)
			if err != nil {
				t.Fatalf("PeriodRange() error = %v", err)
			}
			if got.Start.String() != tt.wantStart || got.End.String() != tt.wantEnd {
				t.Errorf("PeriodRange() = [%s, %s], want [%s, %s]",
					got.Start, got.End, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestPeriodRange_Invalid(t *testing.T) {
	if _, err := PeriodRange(Weekly, time.Now(), 7); !errors.Is(err, ErrInvalidWeekday) {
		t.Errorf("weekStartDay 7: got %v, want ErrInvalidWeekday", err)
	}
	if _, err := PeriodRange(Weekly, time.Now(), -1); !errors.Is(err, ErrInvalidWeekday) {
		t.Errorf("weekStartDay -1: got %v, want ErrInvalidWeekday", err)
	}
	if _, err := PeriodRange(BudgetPeriod("yearly"), time.Now(), 1); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("unknown period: got %v, want ErrInvalidPeriod", err)
	}
}

func TestDateRange_Contains(t *testing.T) {
	r := DateRange{Start: NewDate(2024, 1, 15), End: NewDate(2024, 1, 21)}

	tests := []struct {
		name string
		d    Date
		want bool
	}{
		{"start bound", NewDate(2024, 1, 15), true},
		{"end bound", NewDate(2024, 1, 21), true},
		{"inside", NewDate(2024, 1, 18), true},
		{"before", NewDate(2024, 1, 14), false},
		{"after", NewDate(2024, 1, 22), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.d); got != tt.want {
				t.Errorf("Contains(%s) = %v, want %v", tt.d, got, tt.want)
			}
		})
	}
}
