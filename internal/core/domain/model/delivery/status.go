package delivery

import (
	"fmt"

	"delaynotify/internal/pkg/errs"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

func (s Status) Validate() error {
	switch s {
	case StatusPending, StatusInTransit, StatusDelivered, StatusCancelled, StatusFailed:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a delivery status", string(s)))
	}
}

// IsTerminal reports whether the delivery is finished and no longer needs
// traffic monitoring.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusFailed
}

func (s Status) String() string {
	return string(s)
}
