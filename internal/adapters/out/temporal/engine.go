package temporal

import (
	"context"
	"errors"
	"fmt"

	"delaynotify/internal/core/domain/model/execution"
	"delaynotify/internal/core/ports"
	"delaynotify/internal/workflows"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/api/workflow/v1"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/converter"
)

// Engine implements ports.WorkflowEngine on a Temporal client.
type Engine struct {
	client    client.Client
	taskQueue string
}

var _ ports.WorkflowEngine = (*Engine)(nil)

func NewEngine(c client.Client, taskQueue string) *Engine {
	return &Engine{client: c, taskQueue: taskQueue}
}

// Start starts the workflow for the request's mode. When the id already has
// an open execution the call leaves it alone and reports its run.
func (e *Engine) Start(ctx context.Context, req ports.StartRequest) (ports.StartResult, error) {
	options := client.StartWorkflowOptions{
		ID:                                       req.WorkflowID.String(),
		TaskQueue:                                e.taskQueue,
		WorkflowIDReusePolicy:                    enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}
	audit := workflows.Audit{Actor: req.Actor, RequestID: req.RequestID}

	var (
		fn  any
		arg any
	)
	switch req.Mode {
	case execution.ModeDelayNotification:
		options.WorkflowExecutionTimeout = workflows.OneShotExecutionTimeout
		options.WorkflowRunTimeout = workflows.OneShotRunTimeout
		fn = workflows.DelayNotificationWorkflow
		arg = workflows.DelayNotificationInput{DeliveryID: req.DeliveryID.String(), Audit: audit}
	case execution.ModeRecurringCheck:
		options.WorkflowRunTimeout = workflows.RecurringRunTimeout
		fn = workflows.RecurringCheckWorkflow
		arg = workflows.RecurringCheckInput{DeliveryID: req.DeliveryID.String(), Audit: audit, Tick: 1}
	default:
		return ports.StartResult{}, req.Mode.Validate()
	}

	run, err := e.client.ExecuteWorkflow(ctx, options, fn, arg)
	if err == nil {
		return ports.StartResult{
			Key:     execution.RunKey{WorkflowID: req.WorkflowID, RunID: run.GetRunID()},
			Started: true,
		}, nil
	}

	var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
	if !errors.As(err, &alreadyStarted) {
		return ports.StartResult{}, fmt.Errorf("start workflow %s: %w", req.WorkflowID, err)
	}

	runID := alreadyStarted.RunId
	if runID == "" {
		live, describeErr := e.Describe(ctx, req.WorkflowID)
		if describeErr != nil {
			return ports.StartResult{}, describeErr
		}
		runID = live.Key.RunID
	}
	return ports.StartResult{
		Key: execution.RunKey{WorkflowID: req.WorkflowID, RunID: runID},
	}, nil
}

func (e *Engine) Describe(ctx context.Context, workflowID execution.WorkflowID) (ports.LiveExecution, error) {
	return e.describe(ctx, workflowID, "")
}

func (e *Engine) DescribeRun(ctx context.Context, key execution.RunKey) (ports.LiveExecution, error) {
	return e.describe(ctx, key.WorkflowID, key.RunID)
}

func (e *Engine) describe(ctx context.Context, workflowID execution.WorkflowID, runID string) (ports.LiveExecution, error) {
	resp, err := e.client.DescribeWorkflowExecution(ctx, workflowID.String(), runID)
	if err != nil {
		return ports.LiveExecution{}, translate(err, "describe", workflowID)
	}
	info := resp.GetWorkflowExecutionInfo()
	if info == nil {
		return ports.LiveExecution{}, fmt.Errorf("describe workflow %s: empty execution info", workflowID)
	}
	return liveExecution(workflowID, info), nil
}

// Cancel requests graceful cancellation; the run observes it at its next
// activity boundary or timer.
func (e *Engine) Cancel(ctx context.Context, workflowID execution.WorkflowID) error {
	if err := e.client.CancelWorkflow(ctx, workflowID.String(), ""); err != nil {
		return translate(err, "cancel", workflowID)
	}
	return nil
}

func (e *Engine) Terminate(ctx context.Context, workflowID execution.WorkflowID, reason string) error {
	if err := e.client.TerminateWorkflow(ctx, workflowID.String(), "", reason); err != nil {
		return translate(err, "terminate", workflowID)
	}
	return nil
}

func liveExecution(workflowID execution.WorkflowID, info *workflow.WorkflowExecutionInfo) ports.LiveExecution {
	live := ports.LiveExecution{
		Key: execution.RunKey{
			WorkflowID: workflowID,
			RunID:      info.GetExecution().GetRunId(),
		},
		NativeStatus: enumspb.WorkflowExecutionStatus_name[int32(info.GetStatus())],
	}
	if ts := info.GetStartTime(); ts != nil {
		live.StartedAt = ts.AsTime()
	}
	if ts := info.GetCloseTime(); ts != nil {
		closed := ts.AsTime()
		live.ClosedAt = &closed
	}
	if field, ok := info.GetMemo().GetFields()[workflows.StoppedByMemoKey]; ok {
		var actor string
		if err := converter.GetDefaultDataConverter().FromPayload(field, &actor); err == nil {
			live.StoppedBy = actor
		}
	}
	return live
}

// translate maps the engine's "no such execution" answers onto
// ports.ErrExecutionNotFound. Cancelling or terminating a closed execution
// is answered with NotFound as well.
func translate(err error, op string, workflowID execution.WorkflowID) error {
	var notFound *serviceerror.NotFound
	if errors.As(err, &notFound) {
		return fmt.Errorf("%s workflow %s: %w", op, workflowID, ports.ErrExecutionNotFound)
	}
	return fmt.Errorf("%s workflow %s: %w", op, workflowID, err)
}
