package delivery

import (
	"errors"

	"delaynotify/internal/core/domain/model/kernel"
	"delaynotify/internal/core/domain/model/notification"
	"delaynotify/internal/pkg/errs"
)

var ErrDeliveryIsNotConstructed = errors.New("Delivery must be created via NewDelivery constructor")

type Delivery struct {
	id         kernel.UUID
	customer   Customer
	route      Route
	status     Status
	threshold  Threshold
	monitoring Monitoring
	channels   []notification.Channel

	isConstructed bool
}

func NewDelivery(
	id kernel.UUID,
	customer Customer,
	route Route,
	status Status,
	threshold Threshold,
	monitoring Monitoring,
	channels []notification.Channel,
) (*Delivery, error) {
	if err := errors.Join(
		id.Validate(),
		customer.Validate(),
		route.Validate(),
		status.Validate(),
		threshold.Validate(),
		monitoring.Validate(),
		validateChannels(channels),
	); err != nil {
		return nil, err
	}

	return &Delivery{
		id:            id,
		customer:      customer,
		route:         route,
		status:        status,
		threshold:     threshold,
		monitoring:    monitoring,
		channels:      dedupeChannels(channels),
		isConstructed: true,
	}, nil
}

func (d *Delivery) Validate() error {
	if d == nil || !d.isConstructed {
		return ErrDeliveryIsNotConstructed
	}
	return nil
}

func (d *Delivery) ID() kernel.UUID        { return d.id }
func (d *Delivery) Customer() Customer     { return d.customer }
func (d *Delivery) Route() Route           { return d.route }
func (d *Delivery) Status() Status         { return d.status }
func (d *Delivery) Threshold() Threshold   { return d.threshold }
func (d *Delivery) Monitoring() Monitoring { return d.monitoring }

func (d *Delivery) Channels() []notification.Channel {
	out := make([]notification.Channel, len(d.channels))
	copy(out, d.channels)
	return out
}

// IsMonitored reports whether traffic checks should run for the delivery.
func (d *Delivery) IsMonitored() bool {
	return d.monitoring.AutoCheckTraffic && !d.status.IsTerminal()
}

// WantsRecurringChecks reports whether the delivery should stay under a
// recurring check loop rather than a one-shot check.
func (d *Delivery) WantsRecurringChecks() bool {
	return d.monitoring.AutoCheckTraffic && d.monitoring.EnableRecurringChecks
}

// RecipientFor returns the customer address for a channel, empty when the
// customer has none on file.
func (d *Delivery) RecipientFor(channel notification.Channel) string {
	switch channel {
	case notification.ChannelEmail:
		return d.customer.Email
	case notification.ChannelSMS:
		return d.customer.Phone
	default:
		return ""
	}
}

func validateChannels(channels []notification.Channel) error {
	if len(channels) == 0 {
		return errs.NewValueIsRequiredError("channels")
	}
	var err error
	for _, c := range channels {
		err = errors.Join(err, c.Validate())
	}
	return err
}

func dedupeChannels(channels []notification.Channel) []notification.Channel {
	seen := make(map[notification.Channel]struct{}, len(channels))
	out := make([]notification.Channel, 0, len(channels))
	for _, c := range channels {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
