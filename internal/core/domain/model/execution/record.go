package execution

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"delaynotify/internal/core/domain/model/kernel"
	"delaynotify/internal/pkg/errs"
)

var (
	ErrRecordIsNotConstructed = errors.New("Record must be created via NewRecord constructor")
	ErrRecordAlreadyFinished  = errors.New("execution record already reached a terminal status")
)

// Record is the persisted history entry for one workflow run.
type Record struct {
	id           kernel.UUID
	workflowID   WorkflowID
	runID        string
	deliveryID   kernel.UUID
	status       Status
	startedAt    time.Time
	completedAt  *time.Time
	errorMessage string

	isConstructed bool
}

// NewRecord creates the running record written when a run starts.
func NewRecord(workflowID WorkflowID, runID string, deliveryID kernel.UUID, startedAt time.Time) (*Record, error) {
	var err error
	if _, _, parseErr := ParseWorkflowID(workflowID.String()); parseErr != nil {
		err = errors.Join(err, parseErr)
	}
	if strings.TrimSpace(runID) == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("runId"))
	}
	if err = errors.Join(err, deliveryID.Validate()); err != nil {
		return nil, err
	}

	return &Record{
		id:            kernel.NewUUID(),
		workflowID:    workflowID,
		runID:         runID,
		deliveryID:    deliveryID,
		status:        StatusRunning,
		startedAt:     startedAt.UTC(),
		isConstructed: true,
	}, nil
}

// RestoreRecord rebuilds a record from persisted state.
func RestoreRecord(
	id kernel.UUID,
	workflowID WorkflowID,
	runID string,
	deliveryID kernel.UUID,
	status Status,
	startedAt time.Time,
	completedAt *time.Time,
	errorMessage string,
) (*Record, error) {
	if err := errors.Join(id.Validate(), status.Validate()); err != nil {
		return nil, err
	}
	return &Record{
		id:            id,
		workflowID:    workflowID,
		runID:         runID,
		deliveryID:    deliveryID,
		status:        status,
		startedAt:     startedAt,
		completedAt:   completedAt,
		errorMessage:  errorMessage,
		isConstructed: true,
	}, nil
}

func (r *Record) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrRecordIsNotConstructed
	}
	return nil
}

func (r *Record) ID() kernel.UUID         { return r.id }
func (r *Record) WorkflowID() WorkflowID  { return r.workflowID }
func (r *Record) RunID() string           { return r.runID }
func (r *Record) DeliveryID() kernel.UUID { return r.deliveryID }
func (r *Record) Status() Status          { return r.status }
func (r *Record) StartedAt() time.Time    { return r.startedAt }
func (r *Record) CompletedAt() *time.Time { return r.completedAt }
func (r *Record) ErrorMessage() string    { return r.errorMessage }

func (r *Record) RunKey() RunKey {
	return RunKey{WorkflowID: r.workflowID, RunID: r.runID}
}

// Finish moves a running record to a terminal status.
func (r *Record) Finish(status Status, at time.Time, errorMessage string) error {
	if r.status.IsTerminal() {
		return ErrRecordAlreadyFinished
	}
	if !status.IsTerminal() {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not terminal", string(status)))
	}
	completedAt := at.UTC()
	r.status = status
	r.completedAt = &completedAt
	r.errorMessage = errorMessage
	return nil
}
