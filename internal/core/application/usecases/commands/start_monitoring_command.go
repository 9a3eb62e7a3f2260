package commands

import (
	"errors"

	"strings"

	"delaynotify/internal/core/domain/model/kernel"
	"delaynotify/internal/pkg/guard"
)

// SystemActor is recorded when a request names no operator.
const SystemActor = "system"

var ErrStartMonitoringCommandIsNotConstructed = errors.New(
	"StartMonitoringCommand must be created via NewStartMonitoringCommand constructor",
)

// StartMonitoringCommand ensures a delay-notification workflow is running for
// a delivery. The workflow mode follows the delivery's recurring flag.
//
// Example:
//
//	cmd, err := NewStartMonitoringCommand(deliveryID, "dispatcher@acme.test", requestID)
//	if err != nil {
//	    return err
//	}
//	result, err := handler.Handle(ctx, cmd)
type StartMonitoringCommand struct {
	deliveryID kernel.UUID
	actor      string
	requestID  string

	guard guard.ConstructorGuard
}

func NewStartMonitoringCommand(deliveryID kernel.UUID, actor, requestID string) (StartMonitoringCommand, error) {
	if err := deliveryID.Validate(); err != nil {
		return StartMonitoringCommand{}, err
	}

	return StartMonitoringCommand{
		deliveryID: deliveryID,
		actor:      actorOrSystem(actor),
		requestID:  requestID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c StartMonitoringCommand) DeliveryID() kernel.UUID { return c.deliveryID }
func (c StartMonitoringCommand) Actor() string           { return c.actor }
func (c StartMonitoringCommand) RequestID() string       { return c.requestID }

func (c StartMonitoringCommand) Validate() error {
	return c.guard.Validate(ErrStartMonitoringCommandIsNotConstructed)
}

// StartMonitoringResult names the run now addressed by the workflow id.
// AlreadyRunning is set when an open execution was found and left as is.
type StartMonitoringResult struct {
	WorkflowID     string `json:"workflow_id"`
	RunID          string `json:"run_id"`
	Mode           string `json:"mode"`
	AlreadyRunning bool   `json:"already_running"`
}

func actorOrSystem(actor string) string {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return SystemActor
	}
	return actor
}
