package workflows

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"delaynotify/internal/core/domain/model/execution"
	"delaynotify/internal/core/domain/model/notification"
	"delaynotify/internal/core/domain/model/traffic"
	"delaynotify/internal/core/domain/services"

	"go.temporal.io/sdk/log"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const notificationSubject = "Delivery delay update"

// checkRun drives one run through the check pipeline and owns its
// Execution Record.
type checkRun struct {
	deliveryID string
	audit      Audit
	workflowID string
	runID      string
	startedAt  time.Time
	snapshot   DeliverySnapshot
	progress   Progress
	logger     log.Logger
}

func newCheckRun(ctx workflow.Context, deliveryID string, audit Audit, tick int) (*checkRun, error) {
	info := workflow.GetInfo(ctx)
	r := &checkRun{
		deliveryID: deliveryID,
		audit:      audit,
		workflowID: info.WorkflowExecution.ID,
		runID:      info.WorkflowExecution.RunID,
		startedAt:  workflow.Now(ctx),
		logger: log.With(workflow.GetLogger(ctx),
			"workflow_id", info.WorkflowExecution.ID,
			"run_id", info.WorkflowExecution.RunID,
			"delivery_id", deliveryID,
		),
	}
	r.progress = Progress{
		WorkflowID: r.workflowID,
		RunID:      r.runID,
		DeliveryID: deliveryID,
		State:      StatePending,
		Tick:       tick,
	}

	if err := workflow.SetQueryHandler(ctx, CurrentStateQuery, func() (Progress, error) {
		return r.progress, nil
	}); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *checkRun) setState(state State) {
	r.logger.Debug("State transition", "from", r.progress.State, "to", state)
	r.progress.State = state
}

// begin writes the running Execution Record and loads the delivery.
func (r *checkRun) begin(ctx workflow.Context) error {
	actx := withPolicy(ctx, StepBookkeeping)

	err := workflow.ExecuteActivity(actx, RecordExecutionStartActivity, RecordExecutionStartInput{
		WorkflowID: r.workflowID,
		RunID:      r.runID,
		DeliveryID: r.deliveryID,
		StartedAt:  r.startedAt,
		Audit:      r.audit,
	}).Get(actx, nil)
	if err != nil {
		return fmt.Errorf("record execution start: %w", err)
	}

	err = workflow.ExecuteActivity(actx, LoadDeliveryActivity, LoadDeliveryInput{
		DeliveryID: r.deliveryID,
	}).Get(actx, &r.snapshot)
	if err != nil {
		return fmt.Errorf("load delivery: %w", err)
	}
	return nil
}

// check runs traffic_check → delay_evaluation → message_generation →
// notification_delivery. Deliveries that are no longer monitored complete
// without a traffic lookup.
func (r *checkRun) check(ctx workflow.Context) (CheckResult, error) {
	result := CheckResult{
		WorkflowID: r.workflowID,
		RunID:      r.runID,
		DeliveryID: r.deliveryID,
		State:      StatePending,
	}

	if !r.snapshot.Monitored() {
		result.SkipReason = fmt.Sprintf("delivery is not monitored (status %s)", r.snapshot.Status)
		r.setState(StateCompleted)
		result.State = StateCompleted
		return result, nil
	}

	r.setState(StateTrafficCheck)
	tctx := withPolicy(ctx, StepTrafficCheck)
	var report traffic.Report
	err := workflow.ExecuteActivity(tctx, CheckTrafficActivity, CheckTrafficInput{
		DeliveryID:  r.deliveryID,
		Origin:      r.snapshot.Origin,
		Destination: r.snapshot.Destination,
	}).Get(tctx, &report)
	if err != nil {
		return result, fmt.Errorf("traffic check: %w", err)
	}
	result.Traffic = &report
	delay := report.DelayMinutes
	r.progress.DelayMinutes = &delay

	r.setState(StateDelayEvaluation)
	decision := services.EvaluateDelay(report.DelayMinutes, r.snapshot.ThresholdMinutes)
	result.Decision = &decision
	if !decision.ShouldNotify {
		r.logger.Info("Delay below threshold, no notification",
			"delay_minutes", decision.DelayMinutes, "threshold_minutes", decision.ThresholdMinutes)
		r.setState(StateCompleted)
		result.State = StateCompleted
		return result, nil
	}

	r.setState(StateMessageGeneration)
	in := services.MessageInput{
		CustomerName: r.snapshot.CustomerName,
		Origin:       r.snapshot.Origin,
		Destination:  r.snapshot.Destination,
		DelayMinutes: report.DelayMinutes,
		Condition:    report.Condition,
	}
	mctx := withPolicy(ctx, StepMessageGeneration)
	var message string
	if err = workflow.ExecuteActivity(mctx, GenerateMessageActivity, in).Get(mctx, &message); err != nil {
		if isCancellation(ctx, err) {
			return result, err
		}
		r.logger.Warn("Message generation failed, using fallback template", "error", err)
		message = ""
	}
	if strings.TrimSpace(message) == "" {
		message = services.FallbackMessage(in)
		result.MessageFallback = true
	}
	result.Message = message

	r.setState(StateNotificationDelivery)
	// Sends are never interrupted by a graceful cancel; it is observed
	// between channels instead.
	sendCtx, _ := workflow.NewDisconnectedContext(ctx)
	nctx := withPolicy(sendCtx, StepNotificationDelivery)
	for _, channel := range r.snapshot.Channels {
		if err = ctx.Err(); err != nil {
			return result, err
		}
		var sent SendNotificationResult
		err = workflow.ExecuteActivity(nctx, SendNotificationActivity, SendNotificationInput{
			WorkflowID:   r.workflowID,
			RunID:        r.runID,
			DeliveryID:   r.deliveryID,
			CustomerID:   r.snapshot.CustomerID,
			Channel:      channel,
			Recipient:    r.snapshot.Recipients[channel],
			Subject:      notificationSubject,
			Message:      message,
			DelayMinutes: report.DelayMinutes,
		}).Get(nctx, &sent)
		if err != nil {
			return result, fmt.Errorf("send %s notification: %w", channel, err)
		}
		result.Notifications = append(result.Notifications, sent)
		if sent.Status == notification.StatusSent {
			r.progress.Notified++
		}
	}
	if err = ctx.Err(); err != nil {
		r.logger.Info("Cancelled after notification delivery", "notified", r.progress.Notified)
		return result, err
	}

	r.setState(StateCompleted)
	result.State = StateCompleted
	return result, nil
}

// end writes the run's terminal Execution Record and returns err unchanged.
// Cancelled and failed outcomes are written from a disconnected context.
func (r *checkRun) end(ctx workflow.Context, err error) error {
	status := execution.StatusCompleted
	var errorMessage string

	switch {
	case err == nil:
		r.setState(StateCompleted)
	case isCancellation(ctx, err):
		status = execution.StatusCancelled
		r.setState(StateCancelled)
		r.logger.Info("Workflow cancelled")
	default:
		status = execution.StatusFailed
		errorMessage = err.Error()
		r.setState(StateFailed)
		r.logger.Error("Workflow failed", "error", err)
	}

	recordCtx := ctx
	if err != nil {
		recordCtx, _ = workflow.NewDisconnectedContext(ctx)
	}
	recordCtx = withPolicy(recordCtx, StepBookkeeping)

	recordErr := workflow.ExecuteActivity(recordCtx, RecordExecutionOutcomeActivity, RecordExecutionOutcomeInput{
		WorkflowID:   r.workflowID,
		RunID:        r.runID,
		DeliveryID:   r.deliveryID,
		StartedAt:    r.startedAt,
		Status:       status.String(),
		CompletedAt:  workflow.Now(ctx),
		ErrorMessage: errorMessage,
	}).Get(recordCtx, nil)
	if recordErr != nil {
		r.logger.Error("Failed to record execution outcome", "status", status, "error", recordErr)
	}

	return err
}

func isCancellation(ctx workflow.Context, err error) bool {
	return temporal.IsCanceledError(err) ||
		errors.Is(err, workflow.ErrCanceled) ||
		errors.Is(ctx.Err(), workflow.ErrCanceled)
}
