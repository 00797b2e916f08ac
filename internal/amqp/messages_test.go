package amqp

import "testing"

func TestAlertMessage_RoundTrip(t *testing.T) {
	msg := NewDailyBudgetExceededMessage("user-1", "2024-01-15", 15000, 10000)

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	got, err := AlertMessageFromJSON(data)
	if err != nil {
		t.Fatalf("AlertMessageFromJSON() error = %v", err)
	}

	if got.Kind != KindDailyBudgetExceeded {
		t.Errorf("Kind = %q, want %q", got.Kind, KindDailyBudgetExceeded)
	}
	if got.UserID != "user-1" || got.Date != "2024-01-15" {
		t.Errorf("identity fields = %q/%q", got.UserID, got.Date)
	}
	if got.SpentCents != 15000 || got.DailyLimitCents != 10000 {
		t.Errorf("amounts = %d/%d, want 15000/10000", got.SpentCents, got.DailyLimitCents)
	}
}

func TestAlertMessage_OneOff(t *testing.T) {
	msg := NewOneOffMessage("Weekly check-in", "How did this week go?", map[string]string{"screen": "dashboard"})

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	got, err := AlertMessageFromJSON(data)
	if err != nil {
		t.Fatalf("AlertMessageFromJSON() error = %v", err)
	}

	if got.Kind != KindOneOff {
		t.Errorf("Kind = %q, want %q", got.Kind, KindOneOff)
	}
	if got.Title != "Weekly check-in" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Extra["screen"] != "dashboard" {
		t.Errorf("Extra = %v", got.Extra)
	}
}

func TestAlertMessageFromJSON_Malformed(t *testing.T) {
	if _, err := AlertMessageFromJSON([]byte("{not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}
