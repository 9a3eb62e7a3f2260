package ports

import (
	"context"
	"time"

	"delaynotify/internal/core/domain/model/execution"
	"delaynotify/internal/core/domain/model/kernel"
)

// ExecutionRepository is the Execution History Store: one row per workflow
// run, appended when the run starts and updated when it finishes. Rows are
// never deleted.
type ExecutionRepository interface {
	// Add persists a new execution record.
	// Returns ErrExecutionRecordExists when a record for the same
	// (workflow_id, run_id) pair is already stored.
	Add(ctx context.Context, record *execution.Record) error

	// Update persists the status, completion time and error message of an
	// existing record.
	Update(ctx context.Context, record *execution.Record) error

	// Get retrieves a record by its own identifier.
	Get(ctx context.Context, id kernel.UUID) (*execution.Record, error)

	// GetByRun retrieves the record of one workflow run.
	GetByRun(ctx context.Context, key execution.RunKey) (*execution.Record, error)

	// GetLatestOpen retrieves the most recently started record of a workflow
	// that is still running.
	GetLatestOpen(ctx context.Context, workflowID execution.WorkflowID) (*execution.Record, error)

	// List returns all records ordered by start time, optionally narrowed to
	// one delivery.
	List(ctx context.Context, deliveryID *kernel.UUID) ([]*execution.Record, error)

	// ListRunningStartedBefore returns at most limit records still marked
	// running whose run started before the given instant, oldest first.
	ListRunningStartedBefore(ctx context.Context, before time.Time, limit int) ([]*execution.Record, error)
}
