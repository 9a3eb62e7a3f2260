// Package deliveryrepo maps deliveries, together with their customer and
// delay threshold, from the system-of-record tables. The core only reads them.
package deliveryrepo

import (
	"time"

	"delaynotify/internal/core/domain/model/delivery"
	"delaynotify/internal/core/domain/model/kernel"
	"delaynotify/internal/core/domain/model/notification"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// DeliveryDTO is a row of the deliveries table.
type DeliveryDTO struct {
	ID                    uuid.UUID      `gorm:"type:uuid;primaryKey"`
	CustomerID            uuid.UUID      `gorm:"type:uuid;not null;index"`
	Customer              CustomerDTO    `gorm:"foreignKey:CustomerID"`
	ThresholdID           uuid.UUID      `gorm:"type:uuid;not null"`
	Threshold             ThresholdDTO   `gorm:"foreignKey:ThresholdID"`
	Origin                string         `gorm:"type:varchar(512);not null"`
	Destination           string         `gorm:"type:varchar(512);not null"`
	Status                string         `gorm:"type:varchar(32);not null;index"`
	AutoCheckTraffic      bool           `gorm:"not null;default:false;index"`
	EnableRecurringChecks bool           `gorm:"not null;default:false"`
	CheckIntervalMinutes  int            `gorm:"not null;default:0"`
	NotificationChannels  pq.StringArray `gorm:"type:text[]"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (DeliveryDTO) TableName() string {
	return "deliveries"
}

// CustomerDTO is a row of the customers table.
type CustomerDTO struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name  string    `gorm:"type:varchar(255);not null"`
	Email string    `gorm:"type:varchar(320)"`
	Phone string    `gorm:"type:varchar(32)"`
}

func (CustomerDTO) TableName() string {
	return "customers"
}

// ThresholdDTO is a row of the delay_thresholds table.
type ThresholdDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"type:varchar(255)"`
	DelayMinutes int       `gorm:"not null"`
}

func (ThresholdDTO) TableName() string {
	return "delay_thresholds"
}

// toDomain rebuilds a delivery. A stored check interval outside the supported
// range is clamped rather than rejected.
func toDomain(dto DeliveryDTO) (*delivery.Delivery, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromBytes(dto.Customer.ID[:])
	if err != nil {
		return nil, err
	}
	thresholdID, err := kernel.UUIDFromBytes(dto.Threshold.ID[:])
	if err != nil {
		return nil, err
	}

	channels := make([]notification.Channel, 0, len(dto.NotificationChannels))
	for _, raw := range dto.NotificationChannels {
		c, channelErr := notification.ParseChannel(raw)
		if channelErr != nil {
			return nil, channelErr
		}
		channels = append(channels, c)
	}

	interval := time.Duration(dto.CheckIntervalMinutes) * time.Minute
	if interval != 0 {
		interval = delivery.ClampInterval(interval)
	}

	return delivery.NewDelivery(
		id,
		delivery.Customer{
			ID:    customerID,
			Name:  dto.Customer.Name,
			Email: dto.Customer.Email,
			Phone: dto.Customer.Phone,
		},
		delivery.Route{Origin: dto.Origin, Destination: dto.Destination},
		delivery.Status(dto.Status),
		delivery.Threshold{
			ID:      thresholdID,
			Name:    dto.Threshold.Name,
			Minutes: dto.Threshold.DelayMinutes,
		},
		delivery.Monitoring{
			AutoCheckTraffic:      dto.AutoCheckTraffic,
			EnableRecurringChecks: dto.EnableRecurringChecks,
			CheckInterval:         interval,
		},
		channels,
	)
}
