package ports

import (
	"context"

	"delaynotify/internal/core/domain/model/delivery"
	"delaynotify/internal/core/domain/model/kernel"
)

// DeliveryRepository gives the core read-only access to deliveries together
// with their customer, threshold and monitoring flags.
type DeliveryRepository interface {
	// Get retrieves a delivery by its identifier.
	// Returns errs.ErrObjectNotFound when no delivery has that id.
	Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error)

	// ListMonitored returns every delivery with auto_check_traffic enabled,
	// oldest first. A non-nil deliveryID narrows the result to that delivery
	// (empty when it is not monitored).
	//
	// Example:
	//   deliveries, err := repo.ListMonitored(ctx, nil)
	//   if err != nil {
	//       return fmt.Errorf("failed to list monitored deliveries: %w", err)
	//   }
	ListMonitored(ctx context.Context, deliveryID *kernel.UUID) ([]*delivery.Delivery, error)
}
