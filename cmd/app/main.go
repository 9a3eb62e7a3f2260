package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"delaynotify/cmd"
	httpin "delaynotify/internal/adapters/in/http"
	"delaynotify/internal/adapters/out/postgres"
	"delaynotify/internal/adapters/out/temporal"
	"delaynotify/internal/metrics"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configs := getConfigs()
	logger := newLogger(configs.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := gorm.Open(gormpostgres.Open(configs.PostgresDSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err = postgres.Migrate(ctx, gormDB); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	temporalClient, err := temporal.Dial(ctx, temporal.Config{
		HostPort:  configs.TemporalHostPort,
		Namespace: configs.TemporalNamespace,
		TaskQueue: configs.TemporalTaskQueue,
	}, logger)
	if err != nil {
		log.Fatalf("failed to connect to temporal: %v", err)
	}
	defer temporalClient.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	sink := metrics.NewPrometheusSink(registry, logger)

	app := cmd.NewCompositionRoot(configs, gormDB, temporalClient, sink, logger)

	if err = run(ctx, app, registry, configs.HTTPPort, logger); err != nil {
		log.Fatalf("delay notification service stopped: %v", err)
	}
}

// run starts the workflow worker, the cron jobs and the web server, and
// stops them all when ctx is cancelled or one of them fails.
func run(ctx context.Context, app cmd.CompositionRoot, gatherer prometheus.Gatherer, port string, logger *slog.Logger) error {
	w, err := app.CreateWorker()
	if err != nil {
		return fmt.Errorf("failed to build worker: %w", err)
	}

	jobManager := app.CreateJobManager()
	e := httpin.NewRouter(app.CreateHTTPServer(), gatherer, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := w.Start(); err != nil {
			return fmt.Errorf("failed to start worker: %w", err)
		}
		<-gctx.Done()
		w.Stop()
		return nil
	})

	g.Go(func() error {
		if err := jobManager.StartAll(); err != nil {
			return err
		}
		<-gctx.Done()
		jobManager.StopAll()
		return nil
	})

	g.Go(func() error {
		logger.Info("HTTP server listening", "port", port)
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func getConfigs() cmd.Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Warnf("no .env file loaded, reading the process environment: %v", err)
	}

	config := cmd.Config{
		HTTPPort: envOr("HTTP_PORT", "8082"),
		LogLevel: envOr("LOG_LEVEL", "info"),

		DBHost:     goDotEnvVariable("DB_HOST"),
		DBPort:     goDotEnvVariable("DB_PORT"),
		DBUser:     goDotEnvVariable("DB_USER"),
		DBPassword: goDotEnvVariable("DB_PASSWORD"),
		DBName:     goDotEnvVariable("DB_NAME"),
		DBSslMode:  envOr("DB_SSLMODE", "disable"),

		TemporalHostPort:                 envOr("TEMPORAL_HOST_PORT", "localhost:7233"),
		TemporalNamespace:                envOr("TEMPORAL_NAMESPACE", "default"),
		TemporalTaskQueue:                envOr("TEMPORAL_TASK_QUEUE", "delay-notifications"),
		WorkerMaxConcurrentActivities:    envInt("WORKER_MAX_CONCURRENT_ACTIVITIES", 10),
		WorkerMaxConcurrentWorkflowTasks: envInt("WORKER_MAX_CONCURRENT_WORKFLOW_TASKS", 5),

		MonitoringSweepSpec:      os.Getenv("MONITORING_SWEEP_CRON"),
		ExecutionSyncSpec:        os.Getenv("EXECUTION_SYNC_CRON"),
		ExecutionSyncGracePeriod: envDuration("EXECUTION_SYNC_GRACE_PERIOD", 10*time.Minute),
		ExecutionSyncBatchSize:   envInt("EXECUTION_SYNC_BATCH_SIZE", 100),

		GoogleMapsAPIKey: os.Getenv("GOOGLE_MAPS_API_KEY"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:      os.Getenv("OPENAI_MODEL"),
		ResendAPIKey:     os.Getenv("RESEND_API_KEY"),
		ResendFrom:       os.Getenv("RESEND_FROM"),
		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFrom:       os.Getenv("TWILIO_FROM"),
	}
	return config
}

// goDotEnvVariable reads a setting the service cannot run without.
func goDotEnvVariable(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("Environment variable %s is required", key)
	}
	return value
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Fatalf("Environment variable %s must be an integer: %v", key, err)
	}
	return value
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		log.Fatalf("Environment variable %s must be a duration: %v", key, err)
	}
	return value
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
