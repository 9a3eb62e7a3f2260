package workflows

import (
	"go.temporal.io/sdk/workflow"
)

// DelayNotificationWorkflow runs a single check for a delivery and records
// the run in the Execution History Store.
func DelayNotificationWorkflow(ctx workflow.Context, input DelayNotificationInput) (*CheckResult, error) {
	r, err := newCheckRun(ctx, input.DeliveryID, input.Audit, 0)
	if err != nil {
		return nil, err
	}
	r.logger.Info("Delay notification workflow started", "actor", input.Audit.Actor, "request_id", input.Audit.RequestID)

	if err = r.begin(ctx); err != nil {
		return nil, r.end(ctx, err)
	}

	result, err := r.check(ctx)
	if err != nil {
		return nil, r.end(ctx, err)
	}
	return &result, r.end(ctx, nil)
}
