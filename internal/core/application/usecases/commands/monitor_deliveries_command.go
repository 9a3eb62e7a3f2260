package commands

import (
	"errors"

	"delaynotify/internal/pkg/guard"
)

var ErrMonitorDeliveriesCommandIsNotConstructed = errors.New(
	"MonitorDeliveriesCommand must be created via NewMonitorDeliveriesCommand constructor",
)

// SweepActor is the audit actor recorded on workflows the monitoring sweep starts.
const SweepActor = "system:monitoring-sweep"

// MonitorDeliveriesCommand ensures a workflow is open for every delivery
// under traffic monitoring.
type MonitorDeliveriesCommand struct {
	requestID string

	guard guard.ConstructorGuard
}

func NewMonitorDeliveriesCommand(requestID string) MonitorDeliveriesCommand {
	return MonitorDeliveriesCommand{
		requestID: requestID,
		guard:     guard.NewConstructorGuard(),
	}
}

func (c MonitorDeliveriesCommand) RequestID() string { return c.requestID }

func (c MonitorDeliveriesCommand) Validate() error {
	return c.guard.Validate(ErrMonitorDeliveriesCommandIsNotConstructed)
}

type MonitorDeliveriesResult struct {
	Checked int
	Started int
}
