package metrics

// NoopSink is a no-op implementation of Sink.
// Used when metrics are disabled and in tests to avoid nil checks.
type NoopSink struct{}

// NewNoopSink returns a no-op metrics sink.
func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

func (n *NoopSink) WorkflowStarted(mode string, alreadyRunning bool) {}
func (n *NoopSink) WorkflowCancelled(forced bool)                    {}
func (n *NoopSink) TrafficChecked(provider string, err error)        {}
func (n *NoopSink) NotificationOutcome(channel, status string)       {}
func (n *NoopSink) MessageFallback()                                 {}
func (n *NoopSink) UnmappedEngineStatus(native string)               {}
func (n *NoopSink) RegistryLookupFailed()                            {}
func (n *NoopSink) ExecutionRecordsSynced(count int)                 {}
