package amqp

import (
	"encoding/json"
	"time"
)

// Alert kinds carried on the budget alert queue.
const (
	KindDailyBudgetExceeded = "daily_budget_exceeded"
	KindOneOff              = "one_off"
)

// AlertMessage is the envelope published for every notification. Kind
// decides which fields are meaningful; the delivery worker fans out on it.
type AlertMessage struct {
	Kind            string            `json:"kind"`
	UserID          string            `json:"user_id,omitempty"`
	Date            string            `json:"date,omitempty"`
	SpentCents      int64             `json:"spent_cents,omitempty"`
	DailyLimitCents int64             `json:"daily_limit_cents,omitempty"`
	Title           string            `json:"title,omitempty"`
	Body            string            `json:"body,omitempty"`
	Extra           map[string]string `json:"extra,omitempty"`
	Timestamp       time.Time         `json:"timestamp"`
}

// NewDailyBudgetExceededMessage builds the alert for a breached daily limit.
func NewDailyBudgetExceededMessage(userID, date string, spentCents, dailyLimitCents int64) *AlertMessage {
	return &AlertMessage{
		Kind:            KindDailyBudgetExceeded,
		UserID:          userID,
		Date:            date,
		SpentCents:      spentCents,
		DailyLimitCents: dailyLimitCents,
		Timestamp:       time.Now(),
	}
}

// NewOneOffMessage builds a free-form notification.
func NewOneOffMessage(title, body string, extra map[string]string) *AlertMessage {
	return &AlertMessage{
		Kind:      KindOneOff,
		Title:     title,
		Body:      body,
		Extra:     extra,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *AlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AlertMessageFromJSON creates a message from JSON bytes
func AlertMessageFromJSON(data []byte) (*AlertMessage, error) {
	var msg AlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
