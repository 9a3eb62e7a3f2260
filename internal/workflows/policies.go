package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// Step names one policy-governed step of a check.
type Step string

const (
	StepBookkeeping          Step = "bookkeeping"
	StepTrafficCheck         Step = "traffic_check"
	StepMessageGeneration    Step = "message_generation"
	StepNotificationDelivery Step = "notification_delivery"
)

const (
	// ScheduleToStartTimeout bounds how long any activity may wait to be
	// picked up by a worker.
	ScheduleToStartTimeout = time.Minute

	// OneShotExecutionTimeout and OneShotRunTimeout bound the one-shot
	// delay-notification workflow.
	OneShotExecutionTimeout = 30 * time.Minute
	OneShotRunTimeout       = 10 * time.Minute
)

// ActivityPolicy is the static timeout, heartbeat and retry configuration of
// one step.
type ActivityPolicy struct {
	StartToCloseTimeout time.Duration
	HeartbeatTimeout    time.Duration
	InitialInterval     time.Duration
	BackoffCoefficient  float64
	MaximumInterval     time.Duration
	MaximumAttempts     int32
}

// Policies is the activity policy table. Notification delivery gets the most
// generous retry budget.
var Policies = map[Step]ActivityPolicy{
	StepBookkeeping: {
		StartToCloseTimeout: 30 * time.Second,
		InitialInterval:     time.Second,
		BackoffCoefficient:  2,
		MaximumInterval:     30 * time.Second,
		MaximumAttempts:     5,
	},
	StepTrafficCheck: {
		StartToCloseTimeout: 30 * time.Second,
		HeartbeatTimeout:    10 * time.Second,
		InitialInterval:     5 * time.Second,
		BackoffCoefficient:  2,
		MaximumInterval:     30 * time.Second,
		MaximumAttempts:     3,
	},
	StepMessageGeneration: {
		StartToCloseTimeout: 60 * time.Second,
		HeartbeatTimeout:    20 * time.Second,
		InitialInterval:     2 * time.Second,
		BackoffCoefficient:  2,
		MaximumInterval:     20 * time.Second,
		MaximumAttempts:     3,
	},
	StepNotificationDelivery: {
		StartToCloseTimeout: 45 * time.Second,
		HeartbeatTimeout:    15 * time.Second,
		InitialInterval:     3 * time.Second,
		BackoffCoefficient:  2,
		MaximumInterval:     60 * time.Second,
		MaximumAttempts:     5,
	},
}

// PolicyFor returns the policy of a step, falling back to the bookkeeping
// policy for steps the table does not list.
func PolicyFor(step Step) ActivityPolicy {
	if p, ok := Policies[step]; ok {
		return p
	}
	return Policies[StepBookkeeping]
}

// ActivityOptions converts the policy into Temporal activity options. A
// graceful cancel waits for the in-flight activity to finish or acknowledge.
func (p ActivityPolicy) ActivityOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		WaitForCancellation:    true,
		ScheduleToStartTimeout: ScheduleToStartTimeout,
		StartToCloseTimeout:    p.StartToCloseTimeout,
		HeartbeatTimeout:       p.HeartbeatTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        p.InitialInterval,
			BackoffCoefficient:     p.BackoffCoefficient,
			MaximumInterval:        p.MaximumInterval,
			MaximumAttempts:        p.MaximumAttempts,
			NonRetryableErrorTypes: []string{ErrTypeDeliveryNotFound, ErrTypeInvalidInput},
		},
	}
}

// IsLastAttempt reports whether attempt is the final one the policy allows.
func (p ActivityPolicy) IsLastAttempt(attempt int32) bool {
	return p.MaximumAttempts > 0 && attempt >= p.MaximumAttempts
}

func withPolicy(ctx workflow.Context, step Step) workflow.Context {
	return workflow.WithActivityOptions(ctx, PolicyFor(step).ActivityOptions())
}
