package metrics

import (
	"log/slog"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink implements Sink using the Prometheus client library.
// Registration errors are logged but never propagated.
type PrometheusSink struct {
	workflowsStartedTotal   *prometheus.CounterVec
	workflowsCancelledTotal *prometheus.CounterVec

	trafficChecksTotal    *prometheus.CounterVec
	notificationsTotal    *prometheus.CounterVec
	messageFallbacksTotal prometheus.Counter
	unmappedStatusesTotal *prometheus.CounterVec
	registryFailuresTotal prometheus.Counter
	executionsSyncedTotal prometheus.Counter

	logger *slog.Logger
}

// NewPrometheusSink creates a sink whose collectors are registered on reg.
func NewPrometheusSink(reg prometheus.Registerer, logger *slog.Logger) *PrometheusSink {
	s := &PrometheusSink{logger: logger.With("component", "metrics")}
	s.initWorkflowMetrics(reg)
	s.initActivityMetrics(reg)
	s.initReconcilerMetrics(reg)
	return s
}

func (s *PrometheusSink) initWorkflowMetrics(reg prometheus.Registerer) {
	s.workflowsStartedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delaynotify_workflows_started_total",
		Help: "Start/ensure requests per workflow mode, split by whether an execution was already open.",
	}, []string{"mode", "already_running"})
	s.workflowsCancelledTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delaynotify_workflows_cancelled_total",
		Help: "Cancel requests accepted by the engine.",
	}, []string{"forced"})

	s.register(reg, s.workflowsStartedTotal, "delaynotify_workflows_started_total")
	s.register(reg, s.workflowsCancelledTotal, "delaynotify_workflows_cancelled_total")
}

func (s *PrometheusSink) initActivityMetrics(reg prometheus.Registerer) {
	s.trafficChecksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delaynotify_traffic_checks_total",
		Help: "Traffic lookups per provider and result.",
	}, []string{"provider", "result"})
	s.notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delaynotify_notifications_total",
		Help: "Notification attempts per channel and final status.",
	}, []string{"channel", "status"})
	s.messageFallbacksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "delaynotify_message_fallbacks_total",
		Help: "Runs that fell back to the templated message after generation retries ran out.",
	})

	s.register(reg, s.trafficChecksTotal, "delaynotify_traffic_checks_total")
	s.register(reg, s.notificationsTotal, "delaynotify_notifications_total")
	s.register(reg, s.messageFallbacksTotal, "delaynotify_message_fallbacks_total")
}

func (s *PrometheusSink) initReconcilerMetrics(reg prometheus.Registerer) {
	s.unmappedStatusesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delaynotify_unmapped_engine_statuses_total",
		Help: "Engine status names excluded from statistics because no canonical status matches.",
	}, []string{"native"})
	s.registryFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "delaynotify_registry_lookup_failures_total",
		Help: "Registry lookups that failed and fell back to history.",
	})
	s.executionsSyncedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "delaynotify_execution_records_synced_total",
		Help: "Stale running execution records corrected from the engine.",
	})

	s.register(reg, s.unmappedStatusesTotal, "delaynotify_unmapped_engine_statuses_total")
	s.register(reg, s.registryFailuresTotal, "delaynotify_registry_lookup_failures_total")
	s.register(reg, s.executionsSyncedTotal, "delaynotify_execution_records_synced_total")
}

// register attempts to register a collector, logging any errors without propagating them.
func (s *PrometheusSink) register(reg prometheus.Registerer, c prometheus.Collector, name string) {
	if err := reg.Register(c); err != nil {
		s.logger.Warn("failed to register collector", "name", name, "error", err)
	}
}

func (s *PrometheusSink) WorkflowStarted(mode string, alreadyRunning bool) {
	s.workflowsStartedTotal.WithLabelValues(mode, strconv.FormatBool(alreadyRunning)).Inc()
}

func (s *PrometheusSink) WorkflowCancelled(forced bool) {
	s.workflowsCancelledTotal.WithLabelValues(strconv.FormatBool(forced)).Inc()
}

func (s *PrometheusSink) TrafficChecked(provider string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.trafficChecksTotal.WithLabelValues(provider, result).Inc()
}

func (s *PrometheusSink) NotificationOutcome(channel, status string) {
	s.notificationsTotal.WithLabelValues(channel, status).Inc()
}

func (s *PrometheusSink) MessageFallback() {
	s.messageFallbacksTotal.Inc()
}

func (s *PrometheusSink) UnmappedEngineStatus(native string) {
	s.unmappedStatusesTotal.WithLabelValues(native).Inc()
}

func (s *PrometheusSink) RegistryLookupFailed() {
	s.registryFailuresTotal.Inc()
}

func (s *PrometheusSink) ExecutionRecordsSynced(count int) {
	if count <= 0 {
		return
	}
	s.executionsSyncedTotal.Add(float64(count))
}
