// Package notificationrepo persists Notification Records. Each record is
// keyed by its idempotency key {workflow_id}/{run_id}/{channel}.
package notificationrepo

import (
	"time"

	"delaynotify/internal/core/domain/model/kernel"
	"delaynotify/internal/core/domain/model/notification"

	"github.com/google/uuid"
)

// NotificationDTO is a row of the notifications table.
type NotificationDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	DeliveryID     uuid.UUID `gorm:"type:uuid;not null;index"`
	CustomerID     uuid.UUID `gorm:"type:uuid;not null"`
	Channel        string    `gorm:"type:varchar(16);not null"`
	Recipient      string    `gorm:"type:varchar(320)"`
	Message        string    `gorm:"type:text;not null"`
	Status         string    `gorm:"type:varchar(16);not null"`
	DelayMinutes   int       `gorm:"not null"`
	IdempotencyKey string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	ExternalID     string    `gorm:"type:varchar(255)"`
	ErrorMessage   string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"not null"`
	SentAt         *time.Time
}

func (NotificationDTO) TableName() string {
	return "notifications"
}

func fromDomain(n *notification.Notification) NotificationDTO {
	return NotificationDTO{
		ID:             n.ID().Bytes(),
		DeliveryID:     n.DeliveryID().Bytes(),
		CustomerID:     n.CustomerID().Bytes(),
		Channel:        n.Channel().String(),
		Recipient:      n.Recipient(),
		Message:        n.Message(),
		Status:         n.Status().String(),
		DelayMinutes:   n.DelayMinutes(),
		IdempotencyKey: n.IdempotencyKey(),
		ExternalID:     n.ExternalID(),
		ErrorMessage:   n.ErrorMessage(),
		CreatedAt:      n.CreatedAt(),
		SentAt:         n.SentAt(),
	}
}

func toDomain(dto NotificationDTO) (*notification.Notification, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	deliveryID, err := kernel.UUIDFromBytes(dto.DeliveryID[:])
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}

	return notification.RestoreNotification(
		id, deliveryID, customerID,
		notification.Channel(dto.Channel),
		dto.Recipient, dto.Message,
		notification.Status(dto.Status),
		dto.DelayMinutes,
		dto.IdempotencyKey, dto.ExternalID, dto.ErrorMessage,
		dto.CreatedAt,
		dto.SentAt,
	)
}
