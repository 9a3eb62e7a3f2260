package postgres

import (
	"context"
	"fmt"

	"delaynotify/internal/adapters/out/postgres/deliveryrepo"
	"delaynotify/internal/adapters/out/postgres/executionrepo"
	"delaynotify/internal/adapters/out/postgres/notificationrepo"

	"gorm.io/gorm"
)

// Migrate creates or updates every table the service reads or writes.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&deliveryrepo.CustomerDTO{},
		&deliveryrepo.ThresholdDTO{},
		&deliveryrepo.DeliveryDTO{},
		&executionrepo.ExecutionDTO{},
		&notificationrepo.NotificationDTO{},
	); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
