package notifiers

import (
	"context"
	"log/slog"

	"delaynotify/internal/core/domain/model/notification"
	"delaynotify/internal/core/ports"
)

// Log writes messages to the logger instead of sending them. It stands in
// for a channel whose provider credentials are not configured.
type Log struct {
	channel notification.Channel
	logger  *slog.Logger
}

func NewLog(channel notification.Channel, logger *slog.Logger) *Log {
	return &Log{
		channel: channel,
		logger:  logger.With("component", "log_notifier", "channel", channel.String()),
	}
}

func (l *Log) Channel() notification.Channel { return l.channel }

func (l *Log) Send(ctx context.Context, msg ports.OutgoingMessage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	l.logger.InfoContext(ctx, "Notification not sent, channel runs in log mode",
		"recipient", msg.Recipient,
		"subject", msg.Subject,
		"body", msg.Body,
		"idempotency_key", msg.IdempotencyKey,
	)
	return "log-" + msg.IdempotencyKey, nil
}
