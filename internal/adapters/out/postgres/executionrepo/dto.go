// Package executionrepo persists Execution Records, the per-run history the
// status reconciler falls back to once the engine no longer reports a run.
package executionrepo

import (
	"time"

	"delaynotify/internal/core/domain/model/execution"
	"delaynotify/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// ExecutionDTO is a row of the workflow_executions table. The pair
// (workflow_id, run_id) is unique.
type ExecutionDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	WorkflowID   string    `gorm:"type:varchar(128);not null;uniqueIndex:ux_workflow_executions_run,priority:1;index"`
	RunID        string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_workflow_executions_run,priority:2"`
	DeliveryID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Status       string    `gorm:"type:varchar(16);not null;index"`
	StartedAt    time.Time `gorm:"not null;index"`
	CompletedAt  *time.Time
	ErrorMessage string `gorm:"type:text"`
}

func (ExecutionDTO) TableName() string {
	return "workflow_executions"
}

func fromDomain(r *execution.Record) ExecutionDTO {
	return ExecutionDTO{
		ID:           r.ID().Bytes(),
		WorkflowID:   r.WorkflowID().String(),
		RunID:        r.RunID(),
		DeliveryID:   r.DeliveryID().Bytes(),
		Status:       r.Status().String(),
		StartedAt:    r.StartedAt(),
		CompletedAt:  r.CompletedAt(),
		ErrorMessage: r.ErrorMessage(),
	}
}

func toDomain(dto ExecutionDTO) (*execution.Record, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	deliveryID, err := kernel.UUIDFromBytes(dto.DeliveryID[:])
	if err != nil {
		return nil, err
	}

	return execution.RestoreRecord(
		id,
		execution.WorkflowID(dto.WorkflowID),
		dto.RunID,
		deliveryID,
		execution.Status(dto.Status),
		dto.StartedAt,
		dto.CompletedAt,
		dto.ErrorMessage,
	)
}

func toDomainList(dtos []ExecutionDTO) ([]*execution.Record, error) {
	records := make([]*execution.Record, 0, len(dtos))
	for _, dto := range dtos {
		r, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}
