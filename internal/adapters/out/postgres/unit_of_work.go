// Package postgres provides the GORM-based Unit of Work over the delivery,
// execution history and notification tables.
//
// A unit of work hands out repositories bound to one transaction once Begin
// has been called, and bound to the plain connection otherwise. Read-only
// callers such as the status reconciler can use the repositories without
// beginning a transaction.
//
// Usage:
//
//	factory := NewGormUnitOfWorkFactory(db)
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() {
//	    _ = uow.Rollback(ctx)
//	}()
//
//	record, err := uow.ExecutionRepository().GetLatestOpen(ctx, workflowID)
//	if err != nil {
//	    return err
//	}
//	if err := record.Finish(execution.StatusCancelled, time.Now(), "terminated"); err != nil {
//	    return err
//	}
//	if err := uow.ExecutionRepository().Update(ctx, record); err != nil {
//	    return err
//	}
//
//	return uow.Commit(ctx)
//
// Rollback after a successful Commit returns gorm.ErrInvalidTransaction,
// which the deferred call above ignores.
//
// Each UnitOfWork instance belongs to one goroutine. Concurrent callers,
// such as activities running on the same worker, create their own.
package postgres

import (
	"context"

	"delaynotify/internal/adapters/out/postgres/deliveryrepo"
	"delaynotify/internal/adapters/out/postgres/executionrepo"
	"delaynotify/internal/adapters/out/postgres/notificationrepo"
	"delaynotify/internal/core/domain/model/kernel"
	"delaynotify/internal/core/ports"

	"gorm.io/gorm"
)

// trackedAggregate represents an aggregate written during the unit of work.
type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate any
}

// GormUnitOfWorkFactory creates UnitOfWork instances over one GORM connection.
//
// Example:
//
//	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
//	if err != nil {
//	    log.Fatal("failed to connect database")
//	}
//	factory := NewGormUnitOfWorkFactory(db)
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

// NewGormUnitOfWorkFactory creates a factory for GORM-based unit of work instances.
func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

// Create produces a new UnitOfWork with its own transaction state.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork coordinates one database transaction and records the
// aggregates written through its repositories.
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	trackedAggregates []trackedAggregate
}

// Begin opens the transaction. Calling Begin again while it is open is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}

	return nil
}

// Commit finalizes the transaction. It returns gorm.ErrInvalidTransaction when
// no transaction is open.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return err
}

// Rollback discards the transaction. It returns gorm.ErrInvalidTransaction
// when no transaction is open.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return err
}

// DeliveryRepository reads deliveries within the current transaction, if any.
func (uow *GormUnitOfWork) DeliveryRepository() ports.DeliveryRepository {
	return deliveryrepo.NewGormDeliveryRepository(uow.conn())
}

// ExecutionRepository accesses the execution history within the current
// transaction, if any.
//
// Example:
//
//	uow := factory.Create()
//	_ = uow.Begin(ctx)
//
//	record, _ := execution.NewRecord(workflowID, runID, deliveryID, time.Now())
//	if err := uow.ExecutionRepository().Add(ctx, record); err != nil {
//	    if errors.Is(err, ports.ErrExecutionRecordExists) {
//	        // the run was already recorded
//	    }
//	    _ = uow.Rollback(ctx)
//	    return err
//	}
//
//	_ = uow.Commit(ctx)
func (uow *GormUnitOfWork) ExecutionRepository() ports.ExecutionRepository {
	return executionrepo.NewGormExecutionRepository(uow.conn(), uow)
}

// NotificationRepository accesses notification records within the current
// transaction, if any.
func (uow *GormUnitOfWork) NotificationRepository() ports.NotificationRepository {
	return notificationrepo.NewGormNotificationRepository(uow.conn(), uow)
}

// TrackAggregate registers an aggregate written within this unit of work.
// Repositories call it after a successful Add or Update.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate any) {
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}

// TrackedCount reports how many aggregate writes this unit of work has seen
// since it was created or last rolled back.
func (uow *GormUnitOfWork) TrackedCount() int {
	return len(uow.trackedAggregates)
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}
