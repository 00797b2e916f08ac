package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"merit/internal/amqp"
	"merit/internal/core"
	"merit/internal/storage"
)

// Deliverer is the last hop of a notification: it puts the rendered text in
// front of the user. The default implementation writes to the log.
type Deliverer interface {
	Deliver(ctx context.Context, title, body string) error
}

// LogDeliverer prints notifications to the structured log.
type LogDeliverer struct{}

func (LogDeliverer) Deliver(ctx context.Context, title, body string) error {
	slog.InfoContext(ctx, "Notification delivered", "title", title, "body", body)
	return nil
}

// AlertWorker consumes queued alert messages and renders them for delivery.
type AlertWorker struct {
	storage   *storage.Repository
	deliverer Deliverer
}

func NewAlertWorker(storage *storage.Repository, deliverer Deliverer) *AlertWorker {
	return &AlertWorker{
		storage:   storage,
		deliverer: deliverer,
	}
}

// HandleAlertMessage processes a single alert message from AMQP.
func (w *AlertWorker) HandleAlertMessage(ctx context.Context, msg *amqp.AlertMessage) error {
	slog.InfoContext(ctx, "Processing alert message",
		"kind", msg.Kind,
		"user_id", msg.UserID)

	switch msg.Kind {
	case amqp.KindDailyBudgetExceeded:
		return w.handleDailyBudgetExceeded(ctx, msg)
	case amqp.KindOneOff:
		return w.deliverer.Deliver(ctx, msg.Title, msg.Body)
	}

	slog.WarnContext(ctx, "Dropping alert message of unknown kind", "kind", msg.Kind)
	return nil
}

func (w *AlertWorker) handleDailyBudgetExceeded(ctx context.Context, msg *amqp.AlertMessage) error {
	name, err := w.storage.GetUserName(ctx, msg.UserID)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("look up user for alert: %w", err)
	}
	if name == "" {
		name = "there"
	}

	spent := core.Money{Cents: msg.SpentCents}
	limit := core.Money{Cents: msg.DailyLimitCents}

	title := "Daily budget exceeded"
	body := fmt.Sprintf("Hi %s, you spent %s today against a daily limit of %s (%s).",
		name, spent.String(), limit.String(), msg.Date)

	if err := w.deliverer.Deliver(ctx, title, body); err != nil {
		return fmt.Errorf("deliver daily budget alert: %w", err)
	}

	slog.InfoContext(ctx, "Delivered daily budget alert",
		"user_id", msg.UserID,
		"date", msg.Date,
		"spent_cents", msg.SpentCents,
		"daily_limit_cents", msg.DailyLimitCents)

	return nil
}
