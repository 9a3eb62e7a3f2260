package commands

import (
	"errors"
	"strings"

	"delaynotify/internal/core/domain/model/execution"
	"delaynotify/internal/pkg/errs"
	"delaynotify/internal/pkg/guard"
)

var ErrCancelWorkflowCommandIsNotConstructed = errors.New(
	"CancelWorkflowCommand must be created via NewCancelWorkflowCommand constructor",
)

// CancelWorkflowCommand stops a delivery's workflow. A graceful cancel lets
// the run record its own cancelled outcome; a forced one terminates the run
// at once. An id that does not name a delivery workflow is still accepted;
// Managed reports false for it and the handler treats it as nothing to cancel.
//
// Example:
//
//	cmd, err := NewCancelWorkflowCommand("recurring-check-<delivery id>", true, "ops@acme.test", "")
//	if err != nil {
//	    return err
//	}
//	result, err := handler.Handle(ctx, cmd)
//	fmt.Println(result.Message)
type CancelWorkflowCommand struct {
	workflowID execution.WorkflowID
	managed    bool
	force      bool
	actor      string
	requestID  string

	guard guard.ConstructorGuard
}

func NewCancelWorkflowCommand(workflowID string, force bool, actor, requestID string) (CancelWorkflowCommand, error) {
	workflowID = strings.TrimSpace(workflowID)
	if workflowID == "" {
		return CancelWorkflowCommand{}, errs.NewValueIsRequiredError("workflowId")
	}
	_, _, parseErr := execution.ParseWorkflowID(workflowID)

	return CancelWorkflowCommand{
		workflowID: execution.WorkflowID(workflowID),
		managed:    parseErr == nil,
		force:      force,
		actor:      actorOrSystem(actor),
		requestID:  requestID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c CancelWorkflowCommand) WorkflowID() execution.WorkflowID { return c.workflowID }
func (c CancelWorkflowCommand) Managed() bool                    { return c.managed }
func (c CancelWorkflowCommand) Force() bool                      { return c.force }
func (c CancelWorkflowCommand) Actor() string                    { return c.actor }
func (c CancelWorkflowCommand) RequestID() string                { return c.requestID }

func (c CancelWorkflowCommand) Validate() error {
	return c.guard.Validate(ErrCancelWorkflowCommandIsNotConstructed)
}

// CancelWorkflowResult is returned for every handled cancel, including the
// no-op case of a workflow that already finished.
type CancelWorkflowResult struct {
	Message    string `json:"message"`
	WorkflowID string `json:"workflow_id"`
	Forced     bool   `json:"forced"`
}
