// Package workflows holds the durable workflow definitions run by the
// Temporal worker: the one-shot delay-notification check and the recurring
// check loop that re-runs it on a per-delivery cadence.
//
// A check drives one delivery through
//
//	pending → traffic_check → delay_evaluation → message_generation → notification_delivery → completed
//
// with failed, cancelled and timed_out exits. Every side effect lives in an
// activity (see Activities) with its own retry and timeout policy from the
// policy table in policies.go; the decision whether to notify is made in
// workflow code by the pure services.EvaluateDelay so replaying a history
// reaches the same decision without calling anything.
//
// Each run writes its own Execution Record: RecordExecutionStart when the run
// begins and RecordExecutionOutcome when it ends. Cancellation and failure
// outcomes are written from a disconnected context so they land even when the
// workflow context is already cancelled. timed_out is never written by the
// run itself; the engine kills the run and the execution sync job recovers
// the status later.
//
// Example worker registration:
//
//	w := worker.New(c, taskQueue, worker.Options{})
//	workflows.Register(w, workflows.NewActivities(uowFactory, trafficProvider, generator, notifiers, sink))
package workflows
