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
	"delaynotify/internal/pkg/errs"
)

const (
	MessageCancellationRequested = "cancellation requested"
	MessageTerminated            = "workflow terminated"
	MessageNothingToCancel       = "already completed or does not exist"
)

// CancelWorkflowCommandHandler is the workflow control surface.
//
// A graceful cancel only asks the engine; the run observes the request at its
// next activity boundary or timer and records cancelled itself. A forced
// cancel terminates the run, which then cannot record anything, so the
// handler moves the open Execution Record to cancelled on its behalf. That
// history update is best effort: a failure is logged and the execution sync
// job corrects the row later.
//
// A workflow with no open execution, or an id that names no delivery
// workflow, is reported as success with MessageNothingToCancel.
type CancelWorkflowCommandHandler struct {
	uowFactory ExecutionUoWFactory
	engine     ports.WorkflowEngine
	metrics    metrics.Sink
	logger     *slog.Logger
	now        func() time.Time
}

func NewCancelWorkflowCommandHandler(
	uowFactory ExecutionUoWFactory,
	engine ports.WorkflowEngine,
	sink metrics.Sink,
	logger *slog.Logger,
) CancelWorkflowCommandHandler {
	return CancelWorkflowCommandHandler{
		uowFactory: uowFactory,
		engine:     engine,
		metrics:    sink,
		logger:     logger.With("component", "cancel_workflow"),
		now:        time.Now,
	}
}

func (h CancelWorkflowCommandHandler) Handle(
	ctx context.Context,
	command CancelWorkflowCommand,
) (CancelWorkflowResult, error) {
	if err := command.Validate(); err != nil {
		return CancelWorkflowResult{}, err
	}

	result := CancelWorkflowResult{
		WorkflowID: command.WorkflowID().String(),
		Forced:     command.Force(),
	}

	if !command.Managed() {
		result.Message = MessageNothingToCancel
		h.logger.InfoContext(ctx, "Workflow id is not a delivery workflow, nothing to cancel",
			"workflow_id", command.WorkflowID(), "actor", command.Actor())
		return result, nil
	}

	var err error
	if command.Force() {
		reason := "terminated by " + command.Actor()
		err = h.engine.Terminate(ctx, command.WorkflowID(), reason)
		result.Message = MessageTerminated
	} else {
		err = h.engine.Cancel(ctx, command.WorkflowID())
		result.Message = MessageCancellationRequested
	}

	if errors.Is(err, ports.ErrExecutionNotFound) {
		result.Message = MessageNothingToCancel
		h.logger.InfoContext(ctx, "No open execution to cancel",
			"workflow_id", command.WorkflowID(), "actor", command.Actor())
		return result, nil
	}
	if err != nil {
		return CancelWorkflowResult{}, err
	}

	h.metrics.WorkflowCancelled(command.Force())
	h.logger.InfoContext(ctx, "Workflow cancellation issued",
		"workflow_id", command.WorkflowID(),
		"forced", command.Force(),
		"actor", command.Actor(),
		"request_id", command.RequestID(),
	)

	if command.Force() {
		if err = h.recordTermination(ctx, command); err != nil {
			h.logger.WarnContext(ctx, "Failed to record forced cancellation in history",
				"workflow_id", command.WorkflowID(), "error", err)
		}
	}

	return result, nil
}

func (h CancelWorkflowCommandHandler) recordTermination(ctx context.Context, command CancelWorkflowCommand) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.ExecutionRepository()
	record, err := repo.GetLatestOpen(ctx, command.WorkflowID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	message := fmt.Sprintf("terminated by %s", command.Actor())
	if err = record.Finish(execution.StatusCancelled, h.now(), message); err != nil {
		return err
	}
	if err = repo.Update(ctx, record); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
