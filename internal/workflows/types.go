package workflows

import (
	"time"

	"delaynotify/internal/core/domain/model/delivery"
	"delaynotify/internal/core/domain/model/notification"
	"delaynotify/internal/core/domain/model/traffic"
	"delaynotify/internal/core/domain/services"
)

const (
	DelayNotificationWorkflowName = "DelayNotificationWorkflow"
	RecurringCheckWorkflowName    = "RecurringCheckWorkflow"

	// CurrentStateQuery returns the Progress of the run.
	CurrentStateQuery = "current-state"
	// StopRecurringChecksSignal ends a recurring loop after the current tick.
	StopRecurringChecksSignal = "stop-recurring-checks"
)

// Activity names, as registered from the Activities method set.
const (
	LoadDeliveryActivity           = "LoadDelivery"
	RecordExecutionStartActivity   = "RecordExecutionStart"
	CheckTrafficActivity           = "CheckTraffic"
	GenerateMessageActivity        = "GenerateMessage"
	SendNotificationActivity       = "SendNotification"
	RecordExecutionOutcomeActivity = "RecordExecutionOutcome"
)

// Application error types that stop retries.
const (
	ErrTypeDeliveryNotFound = "DeliveryNotFound"
	ErrTypeInvalidInput     = "InvalidInput"
)

type State string

const (
	StatePending              State = "pending"
	StateTrafficCheck         State = "traffic_check"
	StateDelayEvaluation      State = "delay_evaluation"
	StateMessageGeneration    State = "message_generation"
	StateNotificationDelivery State = "notification_delivery"
	StateWaiting              State = "waiting"
	StateCompleted            State = "completed"
	StateFailed               State = "failed"
	StateCancelled            State = "cancelled"
)

// Audit is the caller context carried explicitly into every run.
type Audit struct {
	Actor     string `json:"actor"`
	RequestID string `json:"requestId,omitempty"`
}

type DelayNotificationInput struct {
	DeliveryID string `json:"deliveryId"`
	Audit      Audit  `json:"audit"`
}

type RecurringCheckInput struct {
	DeliveryID string `json:"deliveryId"`
	Audit      Audit  `json:"audit"`
	// Tick counts the runs of this loop, starting at 1.
	Tick int `json:"tick"`
}

// DeliverySnapshot is the read-only view of a delivery a run works from.
type DeliverySnapshot struct {
	DeliveryID            string                          `json:"deliveryId"`
	CustomerID            string                          `json:"customerId"`
	CustomerName          string                          `json:"customerName"`
	Origin                string                          `json:"origin"`
	Destination           string                          `json:"destination"`
	Status                delivery.Status                 `json:"status"`
	ThresholdMinutes      int                             `json:"thresholdMinutes"`
	AutoCheckTraffic      bool                            `json:"autoCheckTraffic"`
	EnableRecurringChecks bool                            `json:"enableRecurringChecks"`
	CheckInterval         time.Duration                   `json:"checkInterval"`
	Channels              []notification.Channel          `json:"channels"`
	Recipients            map[notification.Channel]string `json:"recipients"`
}

// Monitored reports whether traffic checks should still run.
func (s DeliverySnapshot) Monitored() bool {
	return s.AutoCheckTraffic && !s.Status.IsTerminal()
}

// KeepsRecurring reports whether a recurring loop should schedule another tick.
func (s DeliverySnapshot) KeepsRecurring() bool {
	return s.Monitored() && s.EnableRecurringChecks
}

type LoadDeliveryInput struct {
	DeliveryID string `json:"deliveryId"`
}

type RecordExecutionStartInput struct {
	WorkflowID string    `json:"workflowId"`
	RunID      string    `json:"runId"`
	DeliveryID string    `json:"deliveryId"`
	StartedAt  time.Time `json:"startedAt"`
	Audit      Audit     `json:"audit"`
}

type RecordExecutionOutcomeInput struct {
	WorkflowID   string    `json:"workflowId"`
	RunID        string    `json:"runId"`
	DeliveryID   string    `json:"deliveryId"`
	StartedAt    time.Time `json:"startedAt"`
	Status       string    `json:"status"`
	CompletedAt  time.Time `json:"completedAt"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
}

type CheckTrafficInput struct {
	DeliveryID  string `json:"deliveryId"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

type SendNotificationInput struct {
	WorkflowID   string               `json:"workflowId"`
	RunID        string               `json:"runId"`
	DeliveryID   string               `json:"deliveryId"`
	CustomerID   string               `json:"customerId"`
	Channel      notification.Channel `json:"channel"`
	Recipient    string               `json:"recipient"`
	Subject      string               `json:"subject"`
	Message      string               `json:"message"`
	DelayMinutes int                  `json:"delayMinutes"`
}

// SendNotificationResult reports one channel's attempt. Duplicate is set when
// the attempt was already recorded for this run and the notifier was not
// called again.
type SendNotificationResult struct {
	NotificationID string               `json:"notificationId"`
	Channel        notification.Channel `json:"channel"`
	Status         notification.Status  `json:"status"`
	ExternalID     string               `json:"externalId,omitempty"`
	Error          string               `json:"error,omitempty"`
	Duplicate      bool                 `json:"duplicate,omitempty"`
}

// CheckResult is the outcome of one check.
type CheckResult struct {
	WorkflowID      string                   `json:"workflowId"`
	RunID           string                   `json:"runId"`
	DeliveryID      string                   `json:"deliveryId"`
	State           State                    `json:"state"`
	SkipReason      string                   `json:"skipReason,omitempty"`
	Traffic         *traffic.Report          `json:"traffic,omitempty"`
	Decision        *services.DelayDecision  `json:"decision,omitempty"`
	Message         string                   `json:"message,omitempty"`
	MessageFallback bool                     `json:"messageFallback,omitempty"`
	Notifications   []SendNotificationResult `json:"notifications,omitempty"`
}

// RecurringCheckResult is returned by the run that ends a recurring loop.
type RecurringCheckResult struct {
	Tick       int         `json:"tick"`
	StopReason string      `json:"stopReason"`
	LastCheck  CheckResult `json:"lastCheck"`
}

// Progress is the answer to CurrentStateQuery.
type Progress struct {
	WorkflowID   string `json:"workflowId"`
	RunID        string `json:"runId"`
	DeliveryID   string `json:"deliveryId"`
	State        State  `json:"state"`
	Tick         int    `json:"tick,omitempty"`
	DelayMinutes *int   `json:"delayMinutes,omitempty"`
	Notified     int    `json:"notified"`
}
