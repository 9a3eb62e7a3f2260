package notification

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"delaynotify/internal/core/domain/model/kernel"
	"delaynotify/internal/pkg/errs"
)

var (
	ErrNotificationIsNotConstructed = errors.New("Notification must be created via NewNotification constructor")
	ErrNotificationAlreadyFinal     = errors.New("notification already reached a final status")
)

// Notification is the record of one message sent (or attempted) to a
// customer through one channel.
type Notification struct {
	id             kernel.UUID
	deliveryID     kernel.UUID
	customerID     kernel.UUID
	channel        Channel
	recipient      string
	message        string
	status         Status
	delayMinutes   int
	idempotencyKey string
	externalID     string
	errorMessage   string
	createdAt      time.Time
	sentAt         *time.Time

	isConstructed bool
}

// IdempotencyKey derives the per-run, per-channel key for a notification.
func IdempotencyKey(workflowID, runID string, channel Channel) string {
	return strings.Join([]string{workflowID, runID, channel.String()}, "/")
}

func NewNotification(
	deliveryID kernel.UUID,
	customerID kernel.UUID,
	channel Channel,
	recipient string,
	message string,
	delayMinutes int,
	idempotencyKey string,
	now time.Time,
) (*Notification, error) {
	n := &Notification{
		id:            kernel.NewUUID(),
		status:        StatusPending,
		createdAt:     now.UTC(),
		isConstructed: true,
	}

	if err := errors.Join(
		n.setDeliveryID(deliveryID),
		n.setCustomerID(customerID),
		channel.Validate(),
		n.setMessage(message),
		n.setDelayMinutes(delayMinutes),
		n.setIdempotencyKey(idempotencyKey),
	); err != nil {
		return nil, err
	}
	n.channel = channel
	n.recipient = strings.TrimSpace(recipient)

	return n, nil
}

// RestoreNotification rebuilds a notification from persisted state.
func RestoreNotification(
	id, deliveryID, customerID kernel.UUID,
	channel Channel,
	recipient, message string,
	status Status,
	delayMinutes int,
	idempotencyKey, externalID, errorMessage string,
	createdAt time.Time,
	sentAt *time.Time,
) (*Notification, error) {
	if err := errors.Join(id.Validate(), channel.Validate(), status.Validate()); err != nil {
		return nil, err
	}
	return &Notification{
		id:             id,
		deliveryID:     deliveryID,
		customerID:     customerID,
		channel:        channel,
		recipient:      recipient,
		message:        message,
		status:         status,
		delayMinutes:   delayMinutes,
		idempotencyKey: idempotencyKey,
		externalID:     externalID,
		errorMessage:   errorMessage,
		createdAt:      createdAt,
		sentAt:         sentAt,
		isConstructed:  true,
	}, nil
}

func (n *Notification) Validate() error {
	if n == nil || !n.isConstructed {
		return ErrNotificationIsNotConstructed
	}
	return nil
}

func (n *Notification) ID() kernel.UUID         { return n.id }
func (n *Notification) DeliveryID() kernel.UUID { return n.deliveryID }
func (n *Notification) CustomerID() kernel.UUID { return n.customerID }
func (n *Notification) Channel() Channel        { return n.channel }
func (n *Notification) Recipient() string       { return n.recipient }
func (n *Notification) Message() string         { return n.message }
func (n *Notification) Status() Status          { return n.status }
func (n *Notification) DelayMinutes() int       { return n.delayMinutes }
func (n *Notification) IdempotencyKey() string  { return n.idempotencyKey }
func (n *Notification) ExternalID() string      { return n.externalID }
func (n *Notification) ErrorMessage() string    { return n.errorMessage }
func (n *Notification) CreatedAt() time.Time    { return n.createdAt }
func (n *Notification) SentAt() *time.Time      { return n.sentAt }

func (n *Notification) MarkSent(externalID string, at time.Time) error {
	if n.status.IsFinal() {
		return ErrNotificationAlreadyFinal
	}
	sentAt := at.UTC()
	n.status = StatusSent
	n.externalID = externalID
	n.sentAt = &sentAt
	return nil
}

func (n *Notification) MarkFailed(reason string) error {
	if n.status.IsFinal() {
		return ErrNotificationAlreadyFinal
	}
	n.status = StatusFailed
	n.errorMessage = reason
	return nil
}

// MarkSkipped records a channel that had nothing to send to, such as a
// customer without a phone number on file.
func (n *Notification) MarkSkipped(reason string) error {
	if n.status.IsFinal() {
		return ErrNotificationAlreadyFinal
	}
	n.status = StatusSkipped
	n.errorMessage = reason
	return nil
}

func (n *Notification) setDeliveryID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	n.deliveryID = id
	return nil
}

func (n *Notification) setCustomerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	n.customerID = id
	return nil
}

func (n *Notification) setMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return errs.NewValueIsRequiredError("message")
	}
	n.message = message
	return nil
}

func (n *Notification) setDelayMinutes(delay int) error {
	if delay < 0 {
		return errs.NewValueIsOutOfRangeErrorWithCause("delayMinutes", delay, 0, "∞",
			fmt.Errorf("delay cannot be negative"))
	}
	n.delayMinutes = delay
	return nil
}

func (n *Notification) setIdempotencyKey(key string) error {
	if key == "" {
		return errs.NewValueIsRequiredError("idempotencyKey")
	}
	n.idempotencyKey = key
	return nil
}
