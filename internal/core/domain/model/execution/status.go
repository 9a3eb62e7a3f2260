package execution

import (
	"fmt"
	"strings"

	"delaynotify/internal/pkg/errs"
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
	StatusTimedOut  Status = "timed_out"
)

// Statuses lists the canonical statuses in reporting order.
var Statuses = []Status{StatusRunning, StatusCompleted, StatusFailed, StatusCancelled, StatusTimedOut}

func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(s)))
	if err := status.Validate(); err != nil {
		return "", err
	}
	return status, nil
}

func (s Status) Validate() error {
	switch s {
	case StatusRunning, StatusCompleted, StatusFailed, StatusCancelled, StatusTimedOut:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not an execution status", string(s)))
	}
}

func (s Status) IsTerminal() bool {
	return s != StatusRunning && s.Validate() == nil
}

func (s Status) String() string {
	return string(s)
}

const engineStatusPrefix = "WORKFLOW_EXECUTION_STATUS_"

// engineStatuses maps the engine's native status names onto canonical
// statuses. A continued-as-new run finished its tick and handed over to the
// next run, so it counts as completed. Terminated runs were stopped by an
// operator and count as cancelled.
var engineStatuses = map[string]Status{
	"RUNNING":          StatusRunning,
	"COMPLETED":        StatusCompleted,
	"CONTINUED_AS_NEW": StatusCompleted,
	"FAILED":           StatusFailed,
	"CANCELED":         StatusCancelled,
	"CANCELLED":        StatusCancelled,
	"TERMINATED":       StatusCancelled,
	"TIMED_OUT":        StatusTimedOut,
}

// ParseEngineStatus translates a native engine status name. Names are
// matched case-insensitively with spaces and dashes treated as underscores,
// so "Timed Out", "timed_out" and "WORKFLOW_EXECUTION_STATUS_TIMED_OUT" all
// resolve. ok is false for names the table does not know.
func ParseEngineStatus(native string) (status Status, ok bool) {
	key := strings.ToUpper(strings.TrimSpace(native))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	key = strings.TrimPrefix(key, engineStatusPrefix)
	status, ok = engineStatuses[key]
	return status, ok
}
