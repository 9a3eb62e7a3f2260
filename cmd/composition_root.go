package cmd

import (
	"log/slog"

	"delaynotify/internal/adapters/in/http"
	"delaynotify/internal/adapters/out/messagegen"
	"delaynotify/internal/adapters/out/notifiers"
	"delaynotify/internal/adapters/out/postgres"
	"delaynotify/internal/adapters/out/temporal"
	"delaynotify/internal/adapters/out/trafficapi"
	"delaynotify/internal/core/application/usecases/commands"
	"delaynotify/internal/core/application/usecases/queries"
	"delaynotify/internal/core/domain/model/notification"
	"delaynotify/internal/core/ports"
	"delaynotify/internal/jobs"
	"delaynotify/internal/metrics"
	"delaynotify/internal/workflows"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	temporal   client.Client
	engine     *temporal.Engine
	metrics    metrics.Sink
	logger     *slog.Logger
}

func NewCompositionRoot(
	config Config,
	gormDB *gorm.DB,
	temporalClient client.Client,
	sink metrics.Sink,
	logger *slog.Logger,
) CompositionRoot {
	return CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		temporal:   temporalClient,
		engine:     temporal.NewEngine(temporalClient, config.TemporalTaskQueue),
		metrics:    sink,
		logger:     logger,
	}
}

func (c *CompositionRoot) temporalConfig() temporal.Config {
	return temporal.Config{
		HostPort:                   c.config.TemporalHostPort,
		Namespace:                  c.config.TemporalNamespace,
		TaskQueue:                  c.config.TemporalTaskQueue,
		MaxConcurrentActivities:    c.config.WorkerMaxConcurrentActivities,
		MaxConcurrentWorkflowTasks: c.config.WorkerMaxConcurrentWorkflowTasks,
	}
}

// Commands

func (c *CompositionRoot) CreateStartMonitoringCommandHandler() commands.StartMonitoringCommandHandler {
	return commands.NewStartMonitoringCommandHandler(c.deliveryReaders(), c.engine, c.metrics, c.logger)
}

func (c *CompositionRoot) CreateCancelWorkflowCommandHandler() commands.CancelWorkflowCommandHandler {
	return commands.NewCancelWorkflowCommandHandler(c.executionUoWs(), c.engine, c.metrics, c.logger)
}

func (c *CompositionRoot) CreateMonitorDeliveriesCommandHandler() commands.MonitorDeliveriesCommandHandler {
	return commands.NewMonitorDeliveriesCommandHandler(c.deliveryReaders(), c.engine, c.metrics, c.logger)
}

func (c *CompositionRoot) CreateSyncExecutionsCommandHandler() commands.SyncExecutionsCommandHandler {
	return commands.NewSyncExecutionsCommandHandler(c.executionUoWs(), c.engine, c.metrics, c.logger)
}

// Queries

func (c *CompositionRoot) CreateGetWorkflowStatsQueryHandler() queries.GetWorkflowStatsQueryHandler {
	uow := c.uowFactory.Create()
	return queries.NewGetWorkflowStatsQueryHandler(
		uow.DeliveryRepository(),
		uow.ExecutionRepository(),
		c.engine,
		c.metrics,
		c.logger,
	)
}

func (c *CompositionRoot) CreateGetExecutionQueryHandler() queries.GetExecutionQueryHandler {
	return queries.NewGetExecutionQueryHandler(c.gormDB, c.engine, c.logger)
}

// Inbound

func (c *CompositionRoot) CreateHTTPServer() *http.Server {
	return http.NewServer(
		c.CreateStartMonitoringCommandHandler(),
		c.CreateCancelWorkflowCommandHandler(),
		c.CreateGetWorkflowStatsQueryHandler(),
		c.CreateGetExecutionQueryHandler(),
		c.logger,
	)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateMonitorDeliveriesCommandHandler(),
		c.CreateSyncExecutionsCommandHandler(),
		jobs.Config{
			MonitoringSweepSpec: c.config.MonitoringSweepSpec,
			ExecutionSync: jobs.ExecutionSyncConfig{
				Spec:        c.config.ExecutionSyncSpec,
				GracePeriod: c.config.ExecutionSyncGracePeriod,
				BatchSize:   c.config.ExecutionSyncBatchSize,
			},
		},
		c.logger,
	)
}

// Workflow worker

func (c *CompositionRoot) CreateWorker() (worker.Worker, error) {
	generator, err := c.messageGenerator()
	if err != nil {
		return nil, err
	}
	channels, err := c.notifiers()
	if err != nil {
		return nil, err
	}

	activities := workflows.NewActivities(c.uowFactory, c.trafficProvider(), generator, channels, c.metrics)
	return temporal.NewWorker(c.temporal, c.temporalConfig(), activities), nil
}

func (c *CompositionRoot) trafficProvider() ports.TrafficProvider {
	if c.config.GoogleMapsAPIKey == "" {
		c.logger.Warn("GOOGLE_MAPS_API_KEY not set, using simulated traffic")
		return trafficapi.NewSimulated(0)
	}
	provider, err := trafficapi.NewGoogleMaps(trafficapi.GoogleMapsConfig{APIKey: c.config.GoogleMapsAPIKey})
	if err != nil {
		c.logger.Warn("Google Maps unavailable, using simulated traffic", "error", err)
		return trafficapi.NewSimulated(0)
	}
	return provider
}

func (c *CompositionRoot) messageGenerator() (ports.MessageGenerator, error) {
	if c.config.OpenAIAPIKey == "" {
		c.logger.Warn("OPENAI_API_KEY not set, delay messages use the template")
		return messagegen.NewTemplate(), nil
	}
	return messagegen.NewOpenAI(messagegen.OpenAIConfig{
		APIKey: c.config.OpenAIAPIKey,
		Model:  c.config.OpenAIModel,
	})
}

func (c *CompositionRoot) notifiers() ([]ports.Notifier, error) {
	var email ports.Notifier = notifiers.NewLog(notification.ChannelEmail, c.logger)
	if c.config.ResendAPIKey != "" {
		resend, err := notifiers.NewResend(notifiers.ResendConfig{
			APIKey: c.config.ResendAPIKey,
			From:   c.config.ResendFrom,
		})
		if err != nil {
			return nil, err
		}
		email = resend
	}

	var sms ports.Notifier = notifiers.NewLog(notification.ChannelSMS, c.logger)
	if c.config.TwilioAccountSID != "" {
		twilio, err := notifiers.NewTwilio(notifiers.TwilioConfig{
			AccountSID: c.config.TwilioAccountSID,
			AuthToken:  c.config.TwilioAuthToken,
			From:       c.config.TwilioFrom,
		})
		if err != nil {
			return nil, err
		}
		sms = twilio
	}

	return []ports.Notifier{email, sms}, nil
}

func (c *CompositionRoot) deliveryReaders() commands.DeliveryReaderFactory {
	return FuncDeliveryReaderFactory(func() commands.DeliveryReader {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) executionUoWs() commands.ExecutionUoWFactory {
	return FuncExecutionUoWFactory(func() commands.ExecutionUoW {
		return c.uowFactory.Create()
	})
}

type FuncDeliveryReaderFactory func() commands.DeliveryReader

func (f FuncDeliveryReaderFactory) Create() commands.DeliveryReader {
	return f()
}

type FuncExecutionUoWFactory func() commands.ExecutionUoW

func (f FuncExecutionUoWFactory) Create() commands.ExecutionUoW {
	return f()
}
