// Package notify defines the notification sink boundary. Delivery is best
// effort everywhere: a sink error never fails the mutation that raised the
// alert.
package notify

import (
	"context"
	"log/slog"

	"merit/internal/amqp"
	"merit/internal/core"
)

// Sink is the notification delivery collaborator the engine talks to.
type Sink interface {
	NotifyDailyBudgetExceeded(ctx context.Context, userID string, date core.Date, spent, dailyLimit core.Money) error
	NotifyOneOff(ctx context.Context, title, body string, extra map[string]string) error
}

// AMQPSink publishes alerts to the message queue for the delivery worker.
type AMQPSink struct {
	client *amqp.Client
}

func NewAMQPSink(client *amqp.Client) *AMQPSink {
	return &AMQPSink{client: client}
}

func (s *AMQPSink) NotifyDailyBudgetExceeded(ctx context.Context, userID string, date core.Date, spent, dailyLimit core.Money) error {
	msg := amqp.NewDailyBudgetExceededMessage(userID, date.String(), spent.Cents, dailyLimit.Cents)
	return s.client.PublishAlert(ctx, msg)
}

func (s *AMQPSink) NotifyOneOff(ctx context.Context, title, body string, extra map[string]string) error {
	return s.client.PublishAlert(ctx, amqp.NewOneOffMessage(title, body, extra))
}

// LogSink writes alerts to the log. It stands in for the queue when no
// AMQP broker is configured.
type LogSink struct{}

func NewLogSink() LogSink { return LogSink{} }

func (LogSink) NotifyDailyBudgetExceeded(ctx context.Context, userID string, date core.Date, spent, dailyLimit core.Money) error {
	slog.InfoContext(ctx, "Daily budget limit exceeded",
		"user_id", userID,
		"date", date.String(),
		"spent", spent.String(),
		"daily_limit", dailyLimit.String())
	return nil
}

func (LogSink) NotifyOneOff(ctx context.Context, title, body string, extra map[string]string) error {
	slog.InfoContext(ctx, "Notification", "title", title, "body", body, "extra", extra)
	return nil
}
