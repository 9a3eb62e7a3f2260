package queries

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"delaynotify/internal/core/domain/model/delivery"
	"delaynotify/internal/core/domain/model/execution"
	"delaynotify/internal/core/domain/model/kernel"
	"delaynotify/internal/core/ports"
	"delaynotify/internal/metrics"
)

// MonitoredDeliveries lists the deliveries whose workflows are counted.
type MonitoredDeliveries interface {
	ListMonitored(ctx context.Context, deliveryID *kernel.UUID) ([]*delivery.Delivery, error)
}

// ExecutionHistory reads Execution Records.
type ExecutionHistory interface {
	List(ctx context.Context, deliveryID *kernel.UUID) ([]*execution.Record, error)
}

// GetWorkflowStatsQueryHandler is the status reconciler. It merges what the
// engine currently reports with the execution history so that every
// (workflow_id, run_id) pair is counted exactly once:
//
//  1. each monitored delivery's workflow is described in the engine and its
//     latest run is counted from the engine's status;
//  2. every history row whose run was not counted in step 1 is counted from
//     the row's own status.
//
// A run the engine no longer knows is therefore counted from history, and a
// run the history never recorded (or recorded with a stale status) is
// counted from the engine. Engine errors other than "not found" are logged
// and the delivery falls back to history; they never fail the query.
type GetWorkflowStatsQueryHandler struct {
	deliveries MonitoredDeliveries
	history    ExecutionHistory
	engine     ports.WorkflowEngine
	metrics    metrics.Sink
	logger     *slog.Logger
}

func NewGetWorkflowStatsQueryHandler(
	deliveries MonitoredDeliveries,
	history ExecutionHistory,
	engine ports.WorkflowEngine,
	sink metrics.Sink,
	logger *slog.Logger,
) GetWorkflowStatsQueryHandler {
	return GetWorkflowStatsQueryHandler{
		deliveries: deliveries,
		history:    history,
		engine:     engine,
		metrics:    sink,
		logger:     logger.With("component", "status_reconciler"),
	}
}

func (h GetWorkflowStatsQueryHandler) Handle(
	ctx context.Context,
	query GetWorkflowStatsQuery,
) (GetWorkflowStatsQueryResponse, error) {
	var stats GetWorkflowStatsQueryResponse
	if err := query.Validate(); err != nil {
		return stats, err
	}

	deliveries, err := h.deliveries.ListMonitored(ctx, query.DeliveryID())
	if err != nil {
		return stats, fmt.Errorf("list monitored deliveries: %w", err)
	}

	seen := make(map[execution.RunKey]struct{}, len(deliveries))
	for _, d := range deliveries {
		live, ok := h.describe(ctx, d)
		if !ok {
			continue
		}
		status, mapped := execution.ParseEngineStatus(live.NativeStatus)
		if !mapped {
			h.logger.WarnContext(ctx, "Unmapped engine status, run excluded from registry counts",
				"workflow_id", live.Key.WorkflowID,
				"run_id", live.Key.RunID,
				"native_status", live.NativeStatus,
			)
			h.metrics.UnmappedEngineStatus(live.NativeStatus)
			continue
		}
		seen[live.Key] = struct{}{}
		stats.count(status)
	}

	records, err := h.history.List(ctx, query.DeliveryID())
	if err != nil {
		return stats, fmt.Errorf("list execution history: %w", err)
	}
	for _, r := range records {
		key := r.RunKey()
		if _, counted := seen[key]; counted {
			continue
		}
		seen[key] = struct{}{}
		stats.count(r.Status())
	}

	return stats, nil
}

// describe returns the engine's view of the delivery's workflow. ok is false
// when the delivery must be served from history alone.
func (h GetWorkflowStatsQueryHandler) describe(ctx context.Context, d *delivery.Delivery) (ports.LiveExecution, bool) {
	workflowID, err := execution.NewWorkflowID(execution.ModeFor(d.WantsRecurringChecks()), d.ID())
	if err != nil {
		h.logger.WarnContext(ctx, "Cannot derive workflow id", "delivery_id", d.ID(), "error", err)
		return ports.LiveExecution{}, false
	}

	live, err := h.engine.Describe(ctx, workflowID)
	switch {
	case errors.Is(err, ports.ErrExecutionNotFound):
		return ports.LiveExecution{}, false
	case err != nil:
		h.logger.WarnContext(ctx, "Execution registry lookup failed, falling back to history",
			"workflow_id", workflowID, "error", err)
		h.metrics.RegistryLookupFailed()
		return ports.LiveExecution{}, false
	}
	return live, true
}
