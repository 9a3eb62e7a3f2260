package workflows

import (
	"fmt"
	"time"

	"delaynotify/internal/core/domain/model/delivery"

	"go.temporal.io/sdk/workflow"
)

// RecurringRunTimeout bounds one run of the recurring loop: the longest
// allowed interval plus the time a check may take.
const RecurringRunTimeout = delivery.MaxCheckInterval + OneShotRunTimeout

// StoppedByMemoKey is the memo field a loop ended by StopRecurringChecksSignal
// carries. Its value is the signalling actor.
const StoppedByMemoKey = "stopped_by"

// StopSignal is the payload of StopRecurringChecksSignal.
type StopSignal struct {
	Actor  string `json:"actor"`
	Reason string `json:"reason,omitempty"`
}

// RecurringCheckWorkflow runs one check per run, sleeps the delivery's
// interval and continues as new, so every tick gets its own run id under the
// same workflow id and its own Execution Record. Ticks never overlap.
//
// The loop ends without continuing when the delivery reaches a terminal
// status, when monitoring or recurring checks are switched off, or on
// StopRecurringChecksSignal. A failed tick fails the workflow; the monitoring
// sweep starts a fresh loop on its next pass.
func RecurringCheckWorkflow(ctx workflow.Context, input RecurringCheckInput) (*RecurringCheckResult, error) {
	if input.Tick < 1 {
		input.Tick = 1
	}

	r, err := newCheckRun(ctx, input.DeliveryID, input.Audit, input.Tick)
	if err != nil {
		return nil, err
	}
	r.logger.Info("Recurring check tick started", "tick", input.Tick, "actor", input.Audit.Actor)

	stop := workflow.GetSignalChannel(ctx, StopRecurringChecksSignal)

	if err = r.begin(ctx); err != nil {
		return nil, r.end(ctx, err)
	}

	result, err := r.check(ctx)
	if err != nil {
		return nil, r.end(ctx, err)
	}

	if reason, stoppedBy := stopReason(r.snapshot, stop); reason != "" {
		r.logger.Info("Recurring checks finished", "tick", input.Tick, "reason", reason)
		markStopped(ctx, r, stoppedBy)
		return &RecurringCheckResult{Tick: input.Tick, StopReason: reason, LastCheck: result}, r.end(ctx, nil)
	}

	interval := delivery.ClampInterval(r.snapshot.CheckInterval)
	r.setState(StateWaiting)
	r.logger.Info("Waiting for next tick", "interval", interval.String())

	stoppedBy, stopped, err := waitForNextTick(ctx, stop, interval)
	if err != nil {
		return nil, r.end(ctx, err)
	}
	if stopped {
		reason := "stop signal received"
		r.logger.Info("Recurring checks finished", "tick", input.Tick, "reason", reason)
		markStopped(ctx, r, stoppedBy)
		return &RecurringCheckResult{Tick: input.Tick, StopReason: reason, LastCheck: result}, r.end(ctx, nil)
	}

	if err = r.end(ctx, nil); err != nil {
		return nil, err
	}
	return nil, workflow.NewContinueAsNewError(ctx, RecurringCheckWorkflow, RecurringCheckInput{
		DeliveryID: input.DeliveryID,
		Audit:      input.Audit,
		Tick:       input.Tick + 1,
	})
}

// stopReason returns why the loop should end after this tick, and the
// signalling actor when a stop signal is the reason.
func stopReason(snapshot DeliverySnapshot, stop workflow.ReceiveChannel) (reason, stoppedBy string) {
	var signal StopSignal
	switch {
	case stop.ReceiveAsync(&signal):
		return "stop signal received", signalActor(signal)
	case snapshot.Status.IsTerminal():
		return fmt.Sprintf("delivery %s", snapshot.Status), ""
	case !snapshot.AutoCheckTraffic:
		return "traffic monitoring disabled", ""
	case !snapshot.EnableRecurringChecks:
		return "recurring checks disabled", ""
	default:
		return "", ""
	}
}

func signalActor(signal StopSignal) string {
	if signal.Actor == "" {
		return "system"
	}
	return signal.Actor
}

// markStopped records an operator stop on the execution so the monitoring
// sweep leaves the finished loop alone.
func markStopped(ctx workflow.Context, r *checkRun, stoppedBy string) {
	if stoppedBy == "" {
		return
	}
	if err := workflow.UpsertMemo(ctx, map[string]interface{}{StoppedByMemoKey: stoppedBy}); err != nil {
		r.logger.Warn("Failed to record stop actor", "error", err)
	}
}

// waitForNextTick sleeps for interval unless the stop signal arrives first.
// Cancellation surfaces as err.
func waitForNextTick(
	ctx workflow.Context,
	stop workflow.ReceiveChannel,
	interval time.Duration,
) (stoppedBy string, stopped bool, err error) {
	timerCtx, cancelTimer := workflow.WithCancel(ctx)
	defer cancelTimer()

	timer := workflow.NewTimer(timerCtx, interval)
	sel := workflow.NewSelector(ctx)
	sel.AddFuture(timer, func(f workflow.Future) {
		err = f.Get(timerCtx, nil)
	})
	sel.AddReceive(stop, func(c workflow.ReceiveChannel, _ bool) {
		var signal StopSignal
		c.Receive(ctx, &signal)
		stoppedBy = signalActor(signal)
		stopped = true
	})
	sel.Select(ctx)

	return stoppedBy, stopped, err
}
