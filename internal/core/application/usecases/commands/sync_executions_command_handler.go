package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"delaynotify/internal/core/domain/model/execution"
	"delaynotify/internal/core/ports"
	"delaynotify/internal/metrics"
)

// SyncExecutionsCommandHandler writes the engine's terminal status back onto
// history rows the workflow could not close itself: terminated runs, runs
// that hit their execution timeout and runs whose worker died between the
// last activity and the outcome write.
//
// Rows whose run the engine no longer holds are left as they are. Each row
// is updated in its own transaction so one failure does not roll back the
// rest of the batch.
type SyncExecutionsCommandHandler struct {
	uowFactory ExecutionUoWFactory
	engine     ports.WorkflowEngine
	metrics    metrics.Sink
	logger     *slog.Logger
}

func NewSyncExecutionsCommandHandler(
	uowFactory ExecutionUoWFactory,
	engine ports.WorkflowEngine,
	sink metrics.Sink,
	logger *slog.Logger,
) SyncExecutionsCommandHandler {
	return SyncExecutionsCommandHandler{
		uowFactory: uowFactory,
		engine:     engine,
		metrics:    sink,
		logger:     logger.With("component", "execution_sync"),
	}
}

func (h SyncExecutionsCommandHandler) Handle(
	ctx context.Context,
	command SyncExecutionsCommand,
) (SyncExecutionsResult, error) {
	if err := command.Validate(); err != nil {
		return SyncExecutionsResult{}, err
	}

	stale, err := h.uowFactory.Create().ExecutionRepository().
		ListRunningStartedBefore(ctx, command.Cutoff(), command.BatchSize())
	if err != nil {
		return SyncExecutionsResult{}, fmt.Errorf("failed to list running executions: %w", err)
	}

	var (
		result SyncExecutionsResult
		errAll error
	)
	for _, record := range stale {
		if ctx.Err() != nil {
			break
		}
		result.Inspected++

		synced, err := h.syncOne(ctx, record, command.Now())
		if err != nil {
			h.logger.ErrorContext(ctx, "Failed to sync execution record",
				"workflow_id", record.WorkflowID(), "run_id", record.RunID(), "error", err)
			errAll = errors.Join(errAll, fmt.Errorf("run %s: %w", record.RunKey(), err))
			continue
		}
		if synced {
			result.Synced++
		}
	}

	if result.Synced > 0 {
		h.metrics.ExecutionRecordsSynced(result.Synced)
		h.logger.InfoContext(ctx, "Execution records synced",
			"inspected", result.Inspected, "synced", result.Synced)
	}

	return result, errAll
}

func (h SyncExecutionsCommandHandler) syncOne(ctx context.Context, record *execution.Record, now time.Time) (bool, error) {
	live, err := h.engine.DescribeRun(ctx, record.RunKey())
	if errors.Is(err, ports.ErrExecutionNotFound) {
		h.logger.WarnContext(ctx, "Engine no longer holds run, leaving record as is",
			"workflow_id", record.WorkflowID(), "run_id", record.RunID())
		return false, nil
	}
	if err != nil {
		return false, err
	}

	status, ok := execution.ParseEngineStatus(live.NativeStatus)
	if !ok {
		h.metrics.UnmappedEngineStatus(live.NativeStatus)
		h.logger.WarnContext(ctx, "Unmapped engine status",
			"workflow_id", record.WorkflowID(), "run_id", record.RunID(), "native_status", live.NativeStatus)
		return false, nil
	}
	if !status.IsTerminal() {
		return false, nil
	}

	closedAt := now
	if live.ClosedAt != nil {
		closedAt = *live.ClosedAt
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return false, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.ExecutionRepository()
	current, err := repo.GetByRun(ctx, record.RunKey())
	if err != nil {
		return false, err
	}
	if current.Status().IsTerminal() {
		return false, nil
	}

	message := ""
	if status != execution.StatusCompleted {
		message = "closed by engine as " + live.NativeStatus
	}
	if err = current.Finish(status, closedAt, message); err != nil {
		return false, err
	}
	if err = repo.Update(ctx, current); err != nil {
		return false, err
	}
	if err = uow.Commit(ctx); err != nil {
		return false, err
	}

	return true, nil
}
