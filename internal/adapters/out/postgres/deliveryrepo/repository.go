package deliveryrepo

import (
	"context"
	"errors"

	"delaynotify/internal/core/domain/model/delivery"
	"delaynotify/internal/core/domain/model/kernel"
	"delaynotify/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormDeliveryRepository implements DeliveryRepository using GORM.
type GormDeliveryRepository struct {
	db *gorm.DB
}

// NewGormDeliveryRepository creates a new GORM delivery repository.
func NewGormDeliveryRepository(db *gorm.DB) *GormDeliveryRepository {
	return &GormDeliveryRepository{db: db}
}

// Get retrieves a delivery by ID with its customer and threshold.
func (r *GormDeliveryRepository) Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto DeliveryDTO
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Threshold").
		First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("delivery", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// ListMonitored returns the deliveries with auto_check_traffic set, oldest
// first. A non-nil deliveryID narrows the result to that delivery.
func (r *GormDeliveryRepository) ListMonitored(ctx context.Context, deliveryID *kernel.UUID) ([]*delivery.Delivery, error) {
	query := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Threshold").
		Where("auto_check_traffic = ?", true)
	if deliveryID != nil {
		query = query.Where("id = ?", deliveryID.Bytes())
	}

	var dtos []DeliveryDTO
	if err := query.Order("created_at ASC, id ASC").Find(&dtos).Error; err != nil {
		return nil, err
	}

	deliveries := make([]*delivery.Delivery, 0, len(dtos))
	for _, dto := range dtos {
		d, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}

	return deliveries, nil
}
