package queries

import (
	"errors"
	"time"

	"delaynotify/internal/core/domain/model/kernel"
	"delaynotify/internal/pkg/guard"
)

var ErrGetExecutionQueryIsNotConstructed = errors.New(
	"GetExecutionQuery must be created via NewGetExecutionQuery constructor",
)

// GetExecutionQuery retrieves one Execution Record by its id.
type GetExecutionQuery struct {
	executionID kernel.UUID
	guard       guard.ConstructorGuard
}

func NewGetExecutionQuery(executionID kernel.UUID) GetExecutionQuery {
	return GetExecutionQuery{
		executionID: executionID,
		guard:       guard.NewConstructorGuard(),
	}
}

func (q GetExecutionQuery) ExecutionID() kernel.UUID {
	return q.executionID
}

func (q GetExecutionQuery) Validate() error {
	if err := q.guard.Validate(ErrGetExecutionQueryIsNotConstructed); err != nil {
		return err
	}
	return q.executionID.Validate()
}

// Status sources of GetExecutionQueryResponse.
const (
	SourceHistory  = "history"
	SourceRegistry = "registry"
)

// GetExecutionQueryResponse is the persisted record shape. StatusSource says
// whether Status comes from the stored row or from the engine's live view of
// the same run.
type GetExecutionQueryResponse struct {
	ID           kernel.UUID `json:"id"`
	WorkflowID   string      `json:"workflow_id"`
	RunID        string      `json:"run_id"`
	DeliveryID   kernel.UUID `json:"delivery_id"`
	Status       string      `json:"status"`
	StartedAt    time.Time   `json:"started_at"`
	CompletedAt  *time.Time  `json:"completed_at"`
	ErrorMessage *string     `json:"error_message"`
	StatusSource string      `json:"status_source"`
}
