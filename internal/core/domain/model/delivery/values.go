package delivery

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"delaynotify/internal/core/domain/model/kernel"
	"delaynotify/internal/pkg/errs"
)

const (
	MinCheckInterval     = 5 * time.Minute
	MaxCheckInterval     = 30 * 24 * time.Hour
	DefaultCheckInterval = 30 * time.Minute
)

// Customer is the recipient of delay notifications.
type Customer struct {
	ID    kernel.UUID
	Name  string
	Email string
	Phone string
}

func (c Customer) Validate() error {
	if err := c.ID.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Name) == "" {
		return errs.NewValueIsRequiredError("customer.name")
	}
	return nil
}

// Route is the origin/destination pair handed to the traffic provider.
type Route struct {
	Origin      string
	Destination string
}

func NewRoute(origin, destination string) (Route, error) {
	r := Route{Origin: strings.TrimSpace(origin), Destination: strings.TrimSpace(destination)}
	return r, r.Validate()
}

func (r Route) Validate() error {
	var err error
	if r.Origin == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("route.origin"))
	}
	if r.Destination == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("route.destination"))
	}
	return err
}

func (r Route) String() string {
	return fmt.Sprintf("%s → %s", r.Origin, r.Destination)
}

// Threshold is the delay, in minutes, at or above which the customer is notified.
type Threshold struct {
	ID      kernel.UUID
	Name    string
	Minutes int
}

func (t Threshold) Validate() error {
	if t.Minutes < 0 {
		return errs.NewValueIsOutOfRangeError("threshold.minutes", t.Minutes, 0, "∞")
	}
	return nil
}

// Monitoring holds the flags that drive the workflows for a delivery.
type Monitoring struct {
	AutoCheckTraffic      bool
	EnableRecurringChecks bool
	CheckInterval         time.Duration
}

func (m Monitoring) Validate() error {
	if !m.EnableRecurringChecks || m.CheckInterval == 0 {
		return nil
	}
	if m.CheckInterval < MinCheckInterval || m.CheckInterval > MaxCheckInterval {
		return errs.NewValueIsOutOfRangeError("checkInterval",
			m.CheckInterval.String(), MinCheckInterval.String(), MaxCheckInterval.String())
	}
	return nil
}

// EffectiveInterval returns the recurring cadence, defaulted and clamped to
// [MinCheckInterval, MaxCheckInterval].
func (m Monitoring) EffectiveInterval() time.Duration {
	return ClampInterval(m.CheckInterval)
}

func ClampInterval(d time.Duration) time.Duration {
	switch {
	case d == 0:
		return DefaultCheckInterval
	case d < MinCheckInterval:
		return MinCheckInterval
	case d > MaxCheckInterval:
		return MaxCheckInterval
	default:
		return d
	}
}
