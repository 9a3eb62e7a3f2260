// Package jobs provides scheduled background tasks for the delay
// notification service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// (six-field specs, seconds first) to keep the workflow engine and the
// execution history in step with the deliveries.
//
// # Available Jobs
//
// 1. MonitoringSweepJob - every five minutes, starts the workflow of each delivery with traffic checks enabled that has none open
// 2. ExecutionSyncJob - every two minutes, writes the engine's terminal status onto history rows still marked running past a grace period
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(sweepHandler, syncHandler, jobs.Config{}, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Both schedules are configurable. A tick that fires while the previous run
// of the same job is still working is skipped.
//
// # Error Handling
//
// - Per-delivery and per-record failures are logged and do not stop the run
// - Failed job starts will stop any already running jobs
// - StopAll cancels the context of a run in progress and waits for it
package jobs
