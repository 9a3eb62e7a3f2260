package jobs

import (
	"context"
	"log/slog"

	"delaynotify/internal/core/application/usecases/commands"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

const DefaultMonitoringSweepSpec = "0 */5 * * * *"

type MonitoringSweeper interface {
	Handle(ctx context.Context, cmd commands.MonitorDeliveriesCommand) (commands.MonitorDeliveriesResult, error)
}

// MonitoringSweepJob starts the workflow of every monitored delivery that
// has none open. A tick is skipped while the previous one is still running.
type MonitoringSweepJob struct {
	handler MonitoringSweeper
	spec    string
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *slog.Logger
}

func NewMonitoringSweepJob(handler MonitoringSweeper, spec string, logger *slog.Logger) *MonitoringSweepJob {
	if spec == "" {
		spec = DefaultMonitoringSweepSpec
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &MonitoringSweepJob{
		handler: handler,
		spec:    spec,
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger.With("component", "monitoring_sweep_job"),
	}
}

// Start schedules the sweep.
func (j *MonitoringSweepJob) Start() error {
	if _, err := j.cron.AddFunc(j.spec, func() { j.RunOnce(j.ctx) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(j.ctx, "Monitoring sweep job started", "schedule", j.spec)
	return nil
}

// RunOnce performs one sweep and logs its outcome.
func (j *MonitoringSweepJob) RunOnce(ctx context.Context) {
	requestID := uuid.NewString()
	result, err := j.handler.Handle(ctx, commands.NewMonitorDeliveriesCommand(requestID))
	if err != nil {
		j.logger.ErrorContext(ctx, "Monitoring sweep failed",
			"request_id", requestID, "checked", result.Checked, "started", result.Started, "error", err)
		return
	}
	if result.Started > 0 {
		j.logger.InfoContext(ctx, "Monitoring sweep started workflows",
			"request_id", requestID, "checked", result.Checked, "started", result.Started)
	}
}

// Stop cancels a sweep in progress and waits for it to return.
func (j *MonitoringSweepJob) Stop() {
	j.cancel()
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Monitoring sweep job stopped")
}
