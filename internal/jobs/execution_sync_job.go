package jobs

import (
	"context"
	"log/slog"
	"time"

	"delaynotify/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

const (
	DefaultExecutionSyncSpec = "30 */2 * * * *"
	DefaultSyncGracePeriod   = 10 * time.Minute
	DefaultSyncBatchSize     = 100
)

type ExecutionSyncer interface {
	Handle(ctx context.Context, cmd commands.SyncExecutionsCommand) (commands.SyncExecutionsResult, error)
}

type ExecutionSyncConfig struct {
	Spec        string
	GracePeriod time.Duration
	BatchSize   int
}

// ExecutionSyncJob periodically closes history rows left running after the
// engine already finished their run.
type ExecutionSyncJob struct {
	handler ExecutionSyncer
	cfg     ExecutionSyncConfig
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	now     func() time.Time
	logger  *slog.Logger
}

func NewExecutionSyncJob(handler ExecutionSyncer, cfg ExecutionSyncConfig, logger *slog.Logger) *ExecutionSyncJob {
	if cfg.Spec == "" {
		cfg.Spec = DefaultExecutionSyncSpec
	}
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = DefaultSyncGracePeriod
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultSyncBatchSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ExecutionSyncJob{
		handler: handler,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		ctx:     ctx,
		cancel:  cancel,
		now:     time.Now,
		logger:  logger.With("component", "execution_sync_job"),
	}
}

func (j *ExecutionSyncJob) Start() error {
	if _, err := j.cron.AddFunc(j.cfg.Spec, func() { j.RunOnce(j.ctx) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(j.ctx, "Execution sync job started",
		"schedule", j.cfg.Spec, "grace_period", j.cfg.GracePeriod, "batch_size", j.cfg.BatchSize)
	return nil
}

func (j *ExecutionSyncJob) RunOnce(ctx context.Context) {
	cmd, err := commands.NewSyncExecutionsCommand(j.cfg.GracePeriod, j.cfg.BatchSize, j.now())
	if err != nil {
		j.logger.ErrorContext(ctx, "Invalid execution sync settings", "error", err)
		return
	}

	result, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Execution sync failed",
			"inspected", result.Inspected, "synced", result.Synced, "error", err)
	}
}

func (j *ExecutionSyncJob) Stop() {
	j.cancel()
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Execution sync job stopped")
}
