package notification

import (
	"fmt"

	"delaynotify/internal/pkg/errs"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

func (s Status) Validate() error {
	switch s {
	case StatusPending, StatusSent, StatusFailed, StatusSkipped:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a notification status", string(s)))
	}
}

func (s Status) IsFinal() bool {
	return s == StatusSent || s == StatusFailed || s == StatusSkipped
}

func (s Status) String() string {
	return string(s)
}
