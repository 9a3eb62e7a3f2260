package ports

import (
	"context"
	"errors"
	"time"

	"delaynotify/internal/core/domain/model/execution"
	"delaynotify/internal/core/domain/model/kernel"
)

var (
	// ErrExecutionNotFound is returned by the engine when it holds no
	// execution (or no such run) for the workflow id.
	ErrExecutionNotFound = errors.New("workflow execution not found")

	// ErrExecutionRecordExists is returned by ExecutionRepository.Add for a
	// duplicate (workflow_id, run_id) pair.
	ErrExecutionRecordExists = errors.New("execution record already exists")
)

// StartRequest describes the workflow to ensure for a delivery. Actor and
// RequestID travel into the workflow input as audit context.
type StartRequest struct {
	WorkflowID execution.WorkflowID
	Mode       execution.Mode
	DeliveryID kernel.UUID
	Actor      string
	RequestID  string
}

// StartResult reports the run now addressed by the workflow id. Started is
// false when an execution was already open and has been left untouched.
type StartResult struct {
	Key     execution.RunKey
	Started bool
}

// LiveExecution is the engine's current view of one run. NativeStatus is the
// engine's own status name; translate it with execution.ParseEngineStatus.
// StoppedBy is set when an operator's stop signal ended a recurring loop.
type LiveExecution struct {
	Key          execution.RunKey
	NativeStatus string
	StartedAt    time.Time
	ClosedAt     *time.Time
	StoppedBy    string
}

// WorkflowEngine is the Execution Registry together with the control
// operations the core performs against it.
type WorkflowEngine interface {
	// Start ensures an execution is open for the workflow id. Starting an id
	// that already has an open execution is not an error.
	Start(ctx context.Context, req StartRequest) (StartResult, error)

	// Describe returns the latest run of the workflow id.
	// Returns ErrExecutionNotFound when the engine holds nothing for it.
	Describe(ctx context.Context, workflowID execution.WorkflowID) (LiveExecution, error)

	// DescribeRun returns one specific run.
	// Returns ErrExecutionNotFound when the engine no longer holds the run.
	DescribeRun(ctx context.Context, key execution.RunKey) (LiveExecution, error)

	// Cancel requests graceful cancellation of the open execution.
	// Returns ErrExecutionNotFound when there is no open execution.
	Cancel(ctx context.Context, workflowID execution.WorkflowID) error

	// Terminate stops the open execution immediately.
	// Returns ErrExecutionNotFound when there is no open execution.
	Terminate(ctx context.Context, workflowID execution.WorkflowID, reason string) error
}
