// Package temporal adapts a Temporal cluster to the core's WorkflowEngine
// port and hosts the worker that executes the delay notification workflows.
package temporal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"go.temporal.io/sdk/client"
	sdklog "go.temporal.io/sdk/log"
)

type Config struct {
	HostPort  string
	Namespace string
	TaskQueue string

	MaxConcurrentActivities    int
	MaxConcurrentWorkflowTasks int

	// DialAttempts bounds how many times Dial tries to reach the cluster.
	DialAttempts uint64
}

const (
	defaultMaxConcurrentActivities    = 10
	defaultMaxConcurrentWorkflowTasks = 5
	defaultDialAttempts               = 5
	dialBackoffBase                   = time.Second
)

func (c Config) withDefaults() Config {
	if c.MaxConcurrentActivities <= 0 {
		c.MaxConcurrentActivities = defaultMaxConcurrentActivities
	}
	if c.MaxConcurrentWorkflowTasks <= 0 {
		c.MaxConcurrentWorkflowTasks = defaultMaxConcurrentWorkflowTasks
	}
	if c.DialAttempts == 0 {
		c.DialAttempts = defaultDialAttempts
	}
	return c
}

// Dial connects to the cluster, retrying with exponential backoff while the
// frontend is unreachable. The SDK logs through the given slog logger.
func Dial(ctx context.Context, cfg Config, logger *slog.Logger) (client.Client, error) {
	cfg = cfg.withDefaults()
	logger = logger.With("component", "temporal-client")

	options := client.Options{
		HostPort:  cfg.HostPort,
		Namespace: cfg.Namespace,
		Logger:    sdklog.NewStructuredLogger(logger),
	}

	var c client.Client
	dialStart := time.Now()
	backoff := retry.WithMaxRetries(cfg.DialAttempts-1, retry.NewExponential(dialBackoffBase))
	err := retry.Do(ctx, backoff, func(_ context.Context) error {
		var dialErr error
		c, dialErr = client.Dial(options)
		if dialErr != nil {
			logger.Warn("Temporal dial failed", "host", cfg.HostPort, "error", dialErr)
			return retry.RetryableError(dialErr)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create temporal client: %w", err)
	}

	logger.Info("Temporal client connected",
		"host", cfg.HostPort, "namespace", cfg.Namespace, "duration", time.Since(dialStart))
	return c, nil
}
