package temporal

import (
	"delaynotify/internal/workflows"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

// NewWorker creates a worker on the configured task queue with both workflows
// and all activities registered. The caller starts and stops it.
func NewWorker(c client.Client, cfg Config, activities *workflows.Activities) worker.Worker {
	cfg = cfg.withDefaults()
	w := worker.New(c, cfg.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     cfg.MaxConcurrentActivities,
		MaxConcurrentWorkflowTaskExecutionSize: cfg.MaxConcurrentWorkflowTasks,
	})
	workflows.Register(w, activities)
	return w
}
