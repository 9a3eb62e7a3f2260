// Package metrics records operational counters for the delay-notification
// core. Callers depend on Sink; the process wires either the Prometheus
// implementation or NoopSink.
package metrics

// Sink defines the interface for recording metrics.
// All methods are fire-and-forget: implementations MUST NOT block or propagate errors.
type Sink interface {
	// Workflow control
	WorkflowStarted(mode string, alreadyRunning bool)
	WorkflowCancelled(forced bool)

	// Activities
	TrafficChecked(provider string, err error)
	NotificationOutcome(channel, status string)
	MessageFallback()

	// Reconciliation
	UnmappedEngineStatus(native string)
	RegistryLookupFailed()
	ExecutionRecordsSynced(count int)
}

// Notification outcome labels beyond the notification statuses themselves.
const (
	OutcomeDuplicate = "duplicate"
)
