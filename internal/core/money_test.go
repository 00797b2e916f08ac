package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"plain integer", "12", 1200, false},
		{"dot separator", "12.34", 1234, false},
		{"comma separator", "12,34", 1234, false},
		{"single fractional digit", "12.3", 1230, false},
		{"third digit rounds down", "12.344", 1234, false},
		{"third digit rounds up", "12.345", 1235, false},
		{"zero allowed", "0", 0, false},
		{"leading dot", ".50", 50, false},
		{"whitespace trimmed", " 7.25 ", 725, false},
		{"empty", "", 0, true},
		{"negative rejected", "-5", 0, true},
		{"explicit plus rejected", "+5", 0, true},
		{"two separators", "1.2.3", 0, true},
		{"letters", "12a", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDecimalToCents(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestMoney_GreaterThan(t *testing.T) {
	if (Money{Cents: 100}).GreaterThan(Money{Cents: 100}) {
		t.Error("equal amounts must not compare as greater")
	}
	if !(Money{Cents: 101}).GreaterThan(Money{Cents: 100}) {
		t.Error("101 cents should be greater than 100")
	}
}

func TestMoney_String(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{1234, "12.34"},
		{100, "1.00"},
		{5, "0.05"},
		{0, "0.00"},
	}
	for _, tt := range tests {
		if got := (Money{Cents: tt.cents}).String(); got != tt.want {
			t.Errorf("Money{%d}.String() = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestCompletionOf(t *testing.T) {
	tests := []struct {
		name            string
		current, target int64
		want            bool
	}{
		{"below target", 500, 1000, false},
		{"exactly at target", 1000, 1000, true},
		{"above target", 1500, 1000, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompletionOf(Money{Cents: tt.current}, Money{Cents: tt.target})
			if got != tt.want {
				t.Errorf("CompletionOf(%d, %d) = %v, want %v", tt.current, tt.target, got, tt.want)
			}
		})
	}
}
