package execution

import (
	"fmt"
	"strings"

	"delaynotify/internal/core/domain/model/kernel"
	"delaynotify/internal/pkg/errs"
)

type Mode string

const (
	ModeDelayNotification Mode = "delay-notification"
	ModeRecurringCheck    Mode = "recurring-check"
)

// ModeFor picks the workflow mode from the delivery's recurring flag.
func ModeFor(recurring bool) Mode {
	if recurring {
		return ModeRecurringCheck
	}
	return ModeDelayNotification
}

func (m Mode) Validate() error {
	switch m {
	case ModeDelayNotification, ModeRecurringCheck:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("mode", fmt.Errorf("%q is not a workflow mode", string(m)))
	}
}

func (m Mode) String() string {
	return string(m)
}

// WorkflowID addresses every run of one delivery's workflow in one mode.
type WorkflowID string

func NewWorkflowID(mode Mode, deliveryID kernel.UUID) (WorkflowID, error) {
	if err := mode.Validate(); err != nil {
		return "", err
	}
	if err := deliveryID.Validate(); err != nil {
		return "", err
	}
	return WorkflowID(string(mode) + "-" + deliveryID.String()), nil
}

// ParseWorkflowID splits an identifier back into its mode and delivery id.
func ParseWorkflowID(s string) (Mode, kernel.UUID, error) {
	for _, mode := range []Mode{ModeRecurringCheck, ModeDelayNotification} {
		prefix := string(mode) + "-"
		if !strings.HasPrefix(s, prefix) {
			continue
		}
		deliveryID, err := kernel.UUIDFromString(strings.TrimPrefix(s, prefix))
		if err != nil {
			return "", kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause("workflowId", err)
		}
		return mode, deliveryID, nil
	}
	return "", kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause("workflowId",
		fmt.Errorf("%q has no known mode prefix", s))
}

func (w WorkflowID) String() string {
	return string(w)
}

// RunKey identifies one run of one workflow.
type RunKey struct {
	WorkflowID WorkflowID
	RunID      string
}

func (k RunKey) String() string {
	return k.WorkflowID.String() + "/" + k.RunID
}
