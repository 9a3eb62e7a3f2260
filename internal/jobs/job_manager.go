package jobs

import (
	"fmt"
	"log/slog"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	monitoringSweepJob *MonitoringSweepJob
	executionSyncJob   *ExecutionSyncJob
}

type Config struct {
	MonitoringSweepSpec string
	ExecutionSync       ExecutionSyncConfig
}

// NewJobManager creates a new job manager with all required jobs.
// Takes command handlers as dependencies to wire up the job execution.
func NewJobManager(
	sweeper MonitoringSweeper,
	syncer ExecutionSyncer,
	cfg Config,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		monitoringSweepJob: NewMonitoringSweepJob(sweeper, cfg.MonitoringSweepSpec, logger),
		executionSyncJob:   NewExecutionSyncJob(syncer, cfg.ExecutionSync, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.monitoringSweepJob.Start(); err != nil {
		return fmt.Errorf("failed to start monitoring sweep job: %w", err)
	}

	if err := jm.executionSyncJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.monitoringSweepJob.Stop()
		return fmt.Errorf("failed to start execution sync job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.executionSyncJob.Stop()
	jm.monitoringSweepJob.Stop()
}
