package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"delaynotify/internal/core/domain/model/delivery"
	"delaynotify/internal/core/domain/model/execution"
	"delaynotify/internal/core/ports"
	"delaynotify/internal/metrics"
)

// MonitorDeliveriesCommandHandler sweeps the monitored deliveries and starts
// a workflow for each one that has none open. A delivery is started when
// the engine holds nothing for its workflow id or when the last run failed
// or timed out. Completed and cancelled runs are left alone: the workflow
// decided it was done, or an operator stopped it.
//
// One delivery failing does not stop the sweep; the errors are joined and
// returned after every delivery was visited.
type MonitorDeliveriesCommandHandler struct {
	deliveries DeliveryReaderFactory
	engine     ports.WorkflowEngine
	metrics    metrics.Sink
	logger     *slog.Logger
}

func NewMonitorDeliveriesCommandHandler(
	deliveries DeliveryReaderFactory,
	engine ports.WorkflowEngine,
	sink metrics.Sink,
	logger *slog.Logger,
) MonitorDeliveriesCommandHandler {
	return MonitorDeliveriesCommandHandler{
		deliveries: deliveries,
		engine:     engine,
		metrics:    sink,
		logger:     logger.With("component", "monitoring_sweep"),
	}
}

func (h MonitorDeliveriesCommandHandler) Handle(
	ctx context.Context,
	command MonitorDeliveriesCommand,
) (MonitorDeliveriesResult, error) {
	if err := command.Validate(); err != nil {
		return MonitorDeliveriesResult{}, err
	}

	deliveries, err := h.deliveries.Create().DeliveryRepository().ListMonitored(ctx, nil)
	if err != nil {
		return MonitorDeliveriesResult{}, fmt.Errorf("failed to list monitored deliveries: %w", err)
	}

	var (
		result MonitorDeliveriesResult
		errAll error
	)
	for _, d := range deliveries {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if !d.IsMonitored() {
			continue
		}
		result.Checked++

		started, err := h.ensure(ctx, d, command.RequestID())
		if err != nil {
			h.logger.ErrorContext(ctx, "Failed to ensure workflow",
				"delivery_id", d.ID(), "error", err)
			errAll = errors.Join(errAll, fmt.Errorf("delivery %s: %w", d.ID(), err))
			continue
		}
		if started {
			result.Started++
		}
	}

	return result, errAll
}

func (h MonitorDeliveriesCommandHandler) ensure(ctx context.Context, d *delivery.Delivery, requestID string) (bool, error) {
	mode := execution.ModeFor(d.WantsRecurringChecks())
	workflowID, err := execution.NewWorkflowID(mode, d.ID())
	if err != nil {
		return false, err
	}

	live, err := h.engine.Describe(ctx, workflowID)
	switch {
	case errors.Is(err, ports.ErrExecutionNotFound):
	case err != nil:
		return false, err
	default:
		if !needsRestart(mode, live) {
			return false, nil
		}
	}

	res, err := h.engine.Start(ctx, ports.StartRequest{
		WorkflowID: workflowID,
		Mode:       mode,
		DeliveryID: d.ID(),
		Actor:      SweepActor,
		RequestID:  requestID,
	})
	if err != nil {
		return false, err
	}

	h.metrics.WorkflowStarted(mode.String(), !res.Started)
	if res.Started {
		h.logger.InfoContext(ctx, "Workflow started by sweep",
			"workflow_id", workflowID, "run_id", res.Key.RunID)
	}
	return res.Started, nil
}

// needsRestart decides whether a closed workflow id gets a fresh run. A
// completed recurring loop is restarted unless an operator stopped it: it
// ended because monitoring or recurring checks were off, and the delivery
// wants them again.
func needsRestart(mode execution.Mode, live ports.LiveExecution) bool {
	status, ok := execution.ParseEngineStatus(live.NativeStatus)
	if !ok {
		return false
	}
	switch status {
	case execution.StatusFailed, execution.StatusTimedOut:
		return true
	case execution.StatusCompleted:
		return mode == execution.ModeRecurringCheck && live.StoppedBy == ""
	default:
		return false
	}
}
