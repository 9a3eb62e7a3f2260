package executionrepo

import (
	"context"
	"errors"
	"time"

	"delaynotify/internal/core/domain/model/execution"
	"delaynotify/internal/core/domain/model/kernel"
	"delaynotify/internal/core/ports"
	"delaynotify/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormExecutionRepository implements ExecutionRepository using GORM.
type GormExecutionRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormExecutionRepository creates a new GORM execution repository.
func NewGormExecutionRepository(db *gorm.DB, tracker aggregateTracker) *GormExecutionRepository {
	return &GormExecutionRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add inserts a new record. A second record for the same (workflow_id,
// run_id) is rejected with ports.ErrExecutionRecordExists.
func (r *GormExecutionRepository) Add(ctx context.Context, record *execution.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	dto := fromDomain(record)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "workflow_id"}, {Name: "run_id"}},
			DoNothing: true,
		}).
		Create(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrExecutionRecordExists
	}

	r.tracker.TrackAggregate(record.ID(), record)
	return nil
}

// Update saves the status fields of an existing record.
func (r *GormExecutionRepository) Update(ctx context.Context, record *execution.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	dto := fromDomain(record)
	result := r.db.WithContext(ctx).
		Model(&ExecutionDTO{}).
		Where("id = ?", dto.ID).
		Select("status", "completed_at", "error_message").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.tracker.TrackAggregate(record.ID(), record)
	return nil
}

// Get retrieves a record by ID.
func (r *GormExecutionRepository) Get(ctx context.Context, id kernel.UUID) (*execution.Record, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto ExecutionDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("execution", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetByRun retrieves the record of one run.
func (r *GormExecutionRepository) GetByRun(ctx context.Context, key execution.RunKey) (*execution.Record, error) {
	var dto ExecutionDTO
	err := r.db.WithContext(ctx).
		First(&dto, "workflow_id = ? AND run_id = ?", key.WorkflowID.String(), key.RunID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("execution", key.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetLatestOpen retrieves the most recently started running record of a
// workflow.
func (r *GormExecutionRepository) GetLatestOpen(ctx context.Context, workflowID execution.WorkflowID) (*execution.Record, error) {
	var dto ExecutionDTO
	err := r.db.WithContext(ctx).
		Where("workflow_id = ? AND status = ?", workflowID.String(), execution.StatusRunning.String()).
		Order("started_at DESC").
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("execution", workflowID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// List returns the history, newest first. A non-nil deliveryID narrows it to
// one delivery.
func (r *GormExecutionRepository) List(ctx context.Context, deliveryID *kernel.UUID) ([]*execution.Record, error) {
	query := r.db.WithContext(ctx)
	if deliveryID != nil {
		query = query.Where("delivery_id = ?", deliveryID.Bytes())
	}

	var dtos []ExecutionDTO
	if err := query.Order("started_at DESC").Find(&dtos).Error; err != nil {
		return nil, err
	}

	return toDomainList(dtos)
}

// ListRunningStartedBefore returns up to limit running records started before
// the given time, oldest first.
func (r *GormExecutionRepository) ListRunningStartedBefore(
	ctx context.Context,
	before time.Time,
	limit int,
) ([]*execution.Record, error) {
	var dtos []ExecutionDTO
	err := r.db.WithContext(ctx).
		Where("status = ? AND started_at < ?", execution.StatusRunning.String(), before).
		Order("started_at ASC").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return toDomainList(dtos)
}
