// Package commands contains business operations that change system state:
// starting and cancelling workflows and keeping the execution history in
// step with the engine.
// All commands follow a consistent pattern: constructor-guarded command,
// validation, then the handler's side effects.
package commands

import (
	"context"

	"delaynotify/internal/core/ports"
)

// Unit of Work interfaces narrowed to what each handler touches.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// DeliveryRepoFactory provides read access to deliveries.
	DeliveryRepoFactory interface {
		DeliveryRepository() ports.DeliveryRepository
	}

	// ExecutionRepoFactory provides access to the execution history.
	ExecutionRepoFactory interface {
		ExecutionRepository() ports.ExecutionRepository
	}

	// DeliveryReader is used by handlers that only read deliveries and
	// never open a transaction.
	DeliveryReader interface {
		DeliveryRepoFactory
	}

	// DeliveryReaderFactory creates delivery readers.
	DeliveryReaderFactory interface {
		Create() DeliveryReader
	}

	// ExecutionUoW manages transactions over execution records.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   record, err := uow.ExecutionRepository().GetLatestOpen(ctx, workflowID)
	//   // ... finish the record
	//
	//   err = uow.Commit(ctx)
	ExecutionUoW interface {
		TxManager
		ExecutionRepoFactory
	}

	// ExecutionUoWFactory creates new execution unit of work instances.
	ExecutionUoWFactory interface {
		Create() ExecutionUoW
	}
)
