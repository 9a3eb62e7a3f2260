package ports

import (
	"context"
	"errors"

	"delaynotify/internal/core/domain/model/delivery"
	"delaynotify/internal/core/domain/model/notification"
	"delaynotify/internal/core/domain/model/traffic"
	"delaynotify/internal/core/domain/services"
)

// TrafficProvider looks up live traffic for a route. Errors are treated as
// transient and retried by the caller's policy.
type TrafficProvider interface {
	// Name is the provider tag reported on every lookup.
	Name() string
	Lookup(ctx context.Context, route delivery.Route) (traffic.Report, error)
}

// MessageGenerator composes the human-readable delay message.
type MessageGenerator interface {
	Generate(ctx context.Context, in services.MessageInput) (string, error)
}

// OutgoingMessage is one message to hand to a Notifier.
type OutgoingMessage struct {
	Recipient      string
	Subject        string
	Body           string
	IdempotencyKey string
}

// Notifier delivers messages through one channel.
//
// Send returns a *PermanentError when the provider rejected the message in
// a way retrying cannot fix (invalid address, unverified sender). Any other
// error is transient.
type Notifier interface {
	Channel() notification.Channel
	Send(ctx context.Context, msg OutgoingMessage) (externalID string, err error)
}

// PermanentError marks a notifier failure that must not be retried.
type PermanentError struct {
	Channel notification.Channel
	Reason  string
	Cause   error
}

func NewPermanentError(channel notification.Channel, reason string, cause error) *PermanentError {
	return &PermanentError{Channel: channel, Reason: reason, Cause: cause}
}

func (e *PermanentError) Error() string {
	if e.Cause != nil {
		return e.Channel.String() + " delivery rejected: " + e.Reason + " (cause: " + e.Cause.Error() + ")"
	}
	return e.Channel.String() + " delivery rejected: " + e.Reason
}

func (e *PermanentError) Unwrap() error {
	return e.Cause
}

// IsPermanent reports whether err carries a *PermanentError.
func IsPermanent(err error) bool {
	var permanent *PermanentError
	return errors.As(err, &permanent)
}
