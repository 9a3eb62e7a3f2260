package ports

import (
	"context"

	"delaynotify/internal/core/domain/model/kernel"
	"delaynotify/internal/core/domain/model/notification"
)

// NotificationRepository stores the record of every notification attempt.
// The workflow writes through it and never reads a notification back to make
// a control decision; the only read on the send path is the idempotency
// lookup.
type NotificationRepository interface {
	Add(ctx context.Context, n *notification.Notification) error
	Update(ctx context.Context, n *notification.Notification) error

	// GetByIdempotencyKey returns errs.ErrObjectNotFound when nothing was
	// recorded under the key yet.
	GetByIdempotencyKey(ctx context.Context, key string) (*notification.Notification, error)

	ListByDelivery(ctx context.Context, deliveryID kernel.UUID) ([]*notification.Notification, error)
}
