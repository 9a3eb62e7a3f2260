package commands

import (
	"context"
	"errors"
	"log/slog"

	"delaynotify/internal/core/domain/model/execution"
	"delaynotify/internal/core/ports"
	"delaynotify/internal/metrics"
)

// ErrDeliveryNotMonitored is returned for a delivery with traffic monitoring
// disabled or already in a terminal status.
var ErrDeliveryNotMonitored = errors.New("delivery is not under traffic monitoring")

// StartMonitoringCommandHandler starts (or finds) the workflow of a delivery.
// Calling it for a delivery whose workflow is already open is not an error
// and never starts a second execution.
type StartMonitoringCommandHandler struct {
	deliveries DeliveryReaderFactory
	engine     ports.WorkflowEngine
	metrics    metrics.Sink
	logger     *slog.Logger
}

func NewStartMonitoringCommandHandler(
	deliveries DeliveryReaderFactory,
	engine ports.WorkflowEngine,
	sink metrics.Sink,
	logger *slog.Logger,
) StartMonitoringCommandHandler {
	return StartMonitoringCommandHandler{
		deliveries: deliveries,
		engine:     engine,
		metrics:    sink,
		logger:     logger.With("component", "start_monitoring"),
	}
}

func (h StartMonitoringCommandHandler) Handle(
	ctx context.Context,
	command StartMonitoringCommand,
) (StartMonitoringResult, error) {
	if err := command.Validate(); err != nil {
		return StartMonitoringResult{}, err
	}

	d, err := h.deliveries.Create().DeliveryRepository().Get(ctx, command.DeliveryID())
	if err != nil {
		return StartMonitoringResult{}, err
	}
	if !d.IsMonitored() {
		return StartMonitoringResult{}, ErrDeliveryNotMonitored
	}

	mode := execution.ModeFor(d.WantsRecurringChecks())
	workflowID, err := execution.NewWorkflowID(mode, d.ID())
	if err != nil {
		return StartMonitoringResult{}, err
	}

	started, err := h.engine.Start(ctx, ports.StartRequest{
		WorkflowID: workflowID,
		Mode:       mode,
		DeliveryID: d.ID(),
		Actor:      command.Actor(),
		RequestID:  command.RequestID(),
	})
	if err != nil {
		return StartMonitoringResult{}, err
	}

	h.metrics.WorkflowStarted(mode.String(), !started.Started)
	h.logger.InfoContext(ctx, "Monitoring ensured",
		"workflow_id", workflowID,
		"run_id", started.Key.RunID,
		"already_running", !started.Started,
		"actor", command.Actor(),
		"request_id", command.RequestID(),
	)

	return StartMonitoringResult{
		WorkflowID:     workflowID.String(),
		RunID:          started.Key.RunID,
		Mode:           mode.String(),
		AlreadyRunning: !started.Started,
	}, nil
}
