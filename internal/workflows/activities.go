package workflows

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"delaynotify/internal/core/domain/model/delivery"
	"delaynotify/internal/core/domain/model/execution"
	"delaynotify/internal/core/domain/model/kernel"
	"delaynotify/internal/core/domain/model/notification"
	"delaynotify/internal/core/domain/model/traffic"
	"delaynotify/internal/core/domain/services"
	"delaynotify/internal/core/ports"
	"delaynotify/internal/metrics"
	"delaynotify/internal/pkg/errs"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"
)

// Activities implements every side-effecting step of a check. Register the
// whole value with the worker; each exported method is one activity.
type Activities struct {
	uowFactory ports.UnitOfWorkFactory
	traffic    ports.TrafficProvider
	messages   ports.MessageGenerator
	notifiers  map[notification.Channel]ports.Notifier
	metrics    metrics.Sink
	now        func() time.Time
}

func NewActivities(
	uowFactory ports.UnitOfWorkFactory,
	trafficProvider ports.TrafficProvider,
	messages ports.MessageGenerator,
	notifiers []ports.Notifier,
	sink metrics.Sink,
) *Activities {
	byChannel := make(map[notification.Channel]ports.Notifier, len(notifiers))
	for _, n := range notifiers {
		byChannel[n.Channel()] = n
	}
	return &Activities{
		uowFactory: uowFactory,
		traffic:    trafficProvider,
		messages:   messages,
		notifiers:  byChannel,
		metrics:    sink,
		now:        time.Now,
	}
}

// Register registers both workflows and all activities on a worker.
func Register(w worker.Worker, activities *Activities) {
	w.RegisterWorkflow(DelayNotificationWorkflow)
	w.RegisterWorkflow(RecurringCheckWorkflow)
	w.RegisterActivity(activities)
}

// LoadDelivery reads the delivery snapshot a run works from.
func (a *Activities) LoadDelivery(ctx context.Context, input LoadDeliveryInput) (DeliverySnapshot, error) {
	id, err := kernel.UUIDFromString(input.DeliveryID)
	if err != nil {
		return DeliverySnapshot{}, invalidInput(err)
	}

	d, err := a.uowFactory.Create().DeliveryRepository().Get(ctx, id)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return DeliverySnapshot{}, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeDeliveryNotFound, err)
	}
	if err != nil {
		return DeliverySnapshot{}, fmt.Errorf("load delivery %s: %w", id, err)
	}

	return snapshotOf(d), nil
}

// RecordExecutionStart writes the running Execution Record of a run. It is
// idempotent on (workflow_id, run_id).
func (a *Activities) RecordExecutionStart(ctx context.Context, input RecordExecutionStartInput) error {
	workflowID := execution.WorkflowID(input.WorkflowID)
	deliveryID, err := kernel.UUIDFromString(input.DeliveryID)
	if err != nil {
		return invalidInput(err)
	}
	record, err := execution.NewRecord(workflowID, input.RunID, deliveryID, input.StartedAt)
	if err != nil {
		return invalidInput(err)
	}

	uow := a.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.ExecutionRepository()
	_, err = repo.GetByRun(ctx, record.RunKey())
	if err == nil {
		return nil
	}
	if !errors.Is(err, errs.ErrObjectNotFound) {
		return err
	}

	if err = repo.Add(ctx, record); err != nil {
		if errors.Is(err, ports.ErrExecutionRecordExists) {
			return nil
		}
		return err
	}

	activity.GetLogger(ctx).Info("Execution started",
		"workflow_id", input.WorkflowID, "run_id", input.RunID, "actor", input.Audit.Actor)
	return uow.Commit(ctx)
}

// RecordExecutionOutcome moves the run's Execution Record to its terminal
// status. A missing record (the start write never landed) is created in its
// terminal state; an already terminal record is left as it is.
func (a *Activities) RecordExecutionOutcome(ctx context.Context, input RecordExecutionOutcomeInput) error {
	status, err := execution.ParseStatus(input.Status)
	if err != nil {
		return invalidInput(err)
	}
	key := execution.RunKey{WorkflowID: execution.WorkflowID(input.WorkflowID), RunID: input.RunID}

	uow := a.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.ExecutionRepository()
	record, err := repo.GetByRun(ctx, key)
	isNew := errors.Is(err, errs.ErrObjectNotFound)
	switch {
	case isNew:
		deliveryID, idErr := kernel.UUIDFromString(input.DeliveryID)
		if idErr != nil {
			return invalidInput(idErr)
		}
		record, err = execution.NewRecord(key.WorkflowID, key.RunID, deliveryID, input.StartedAt)
		if err != nil {
			return invalidInput(err)
		}
	case err != nil:
		return err
	case record.Status().IsTerminal():
		return nil
	}

	if err = record.Finish(status, input.CompletedAt, input.ErrorMessage); err != nil {
		return invalidInput(err)
	}

	if isNew {
		err = repo.Add(ctx, record)
	} else {
		err = repo.Update(ctx, record)
	}
	if err != nil {
		return err
	}

	activity.GetLogger(ctx).Info("Execution finished",
		"workflow_id", input.WorkflowID, "run_id", input.RunID, "status", status)
	return uow.Commit(ctx)
}

// CheckTraffic looks up live traffic for the delivery's route.
func (a *Activities) CheckTraffic(ctx context.Context, input CheckTrafficInput) (traffic.Report, error) {
	route, err := delivery.NewRoute(input.Origin, input.Destination)
	if err != nil {
		return traffic.Report{}, invalidInput(err)
	}

	activity.RecordHeartbeat(ctx, "looking up traffic for "+route.String())
	report, err := a.traffic.Lookup(ctx, route)
	a.metrics.TrafficChecked(a.traffic.Name(), err)
	if err != nil {
		return traffic.Report{}, fmt.Errorf("traffic lookup for %s: %w", route, err)
	}

	activity.GetLogger(ctx).Info("Traffic checked",
		"delivery_id", input.DeliveryID,
		"delay_minutes", report.DelayMinutes,
		"condition", report.Condition,
		"provider", report.Provider,
	)
	return report, nil
}

// GenerateMessage composes the delay message. The workflow falls back to the
// templated message once this activity runs out of attempts.
func (a *Activities) GenerateMessage(ctx context.Context, input services.MessageInput) (string, error) {
	activity.RecordHeartbeat(ctx, "generating message")

	message, err := a.messages.Generate(ctx, input)
	if err == nil && strings.TrimSpace(message) == "" {
		err = errors.New("generator returned an empty message")
	}
	if err != nil {
		if PolicyFor(StepMessageGeneration).IsLastAttempt(activity.GetInfo(ctx).Attempt) {
			a.metrics.MessageFallback()
		}
		return "", fmt.Errorf("generate message: %w", err)
	}

	return strings.TrimSpace(message), nil
}

// SendNotification delivers the message through one channel and records the
// attempt under the key {workflow_id}/{run_id}/{channel}. A retried
// invocation that finds a final record for the key returns it without
// calling the notifier again. Permanent provider rejections are recorded as
// failed and returned as a result, not an error.
func (a *Activities) SendNotification(ctx context.Context, input SendNotificationInput) (SendNotificationResult, error) {
	logger := activity.GetLogger(ctx)
	key := notification.IdempotencyKey(input.WorkflowID, input.RunID, input.Channel)
	repo := a.uowFactory.Create().NotificationRepository()

	record, err := repo.GetByIdempotencyKey(ctx, key)
	switch {
	case err == nil && record.Status().IsFinal():
		logger.Info("Notification already recorded for this run, not sending again",
			"idempotency_key", key, "status", record.Status())
		a.metrics.NotificationOutcome(input.Channel.String(), metrics.OutcomeDuplicate)
		return resultOf(record, true), nil
	case err != nil && !errors.Is(err, errs.ErrObjectNotFound):
		return SendNotificationResult{}, fmt.Errorf("look up notification %s: %w", key, err)
	case err != nil:
		if record, err = a.newNotification(input, key); err != nil {
			return SendNotificationResult{}, invalidInput(err)
		}
		if err = repo.Add(ctx, record); err != nil {
			return SendNotificationResult{}, fmt.Errorf("record notification %s: %w", key, err)
		}
	}

	notifier, configured := a.notifiers[input.Channel]
	switch {
	case record.Recipient() == "":
		return a.finish(ctx, repo, record, record.MarkSkipped("no recipient on file"))
	case !configured:
		return a.finish(ctx, repo, record, record.MarkSkipped("channel not configured"))
	}

	activity.RecordHeartbeat(ctx, "sending "+input.Channel.String())
	externalID, sendErr := notifier.Send(ctx, ports.OutgoingMessage{
		Recipient:      record.Recipient(),
		Subject:        input.Subject,
		Body:           record.Message(),
		IdempotencyKey: key,
	})

	switch {
	case sendErr == nil:
		return a.finish(ctx, repo, record, record.MarkSent(externalID, a.now()))
	case ports.IsPermanent(sendErr):
		logger.Warn("Notification rejected permanently", "idempotency_key", key, "error", sendErr)
		return a.finish(ctx, repo, record, record.MarkFailed(sendErr.Error()))
	case PolicyFor(StepNotificationDelivery).IsLastAttempt(activity.GetInfo(ctx).Attempt):
		if _, err = a.finish(ctx, repo, record, record.MarkFailed(sendErr.Error())); err != nil {
			logger.Error("Failed to record exhausted notification", "idempotency_key", key, "error", err)
		}
		return SendNotificationResult{}, fmt.Errorf("send %s notification: %w", input.Channel, sendErr)
	default:
		return SendNotificationResult{}, fmt.Errorf("send %s notification: %w", input.Channel, sendErr)
	}
}

func (a *Activities) newNotification(input SendNotificationInput, key string) (*notification.Notification, error) {
	deliveryID, err := kernel.UUIDFromString(input.DeliveryID)
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromString(input.CustomerID)
	if err != nil {
		return nil, err
	}
	return notification.NewNotification(
		deliveryID,
		customerID,
		input.Channel,
		input.Recipient,
		input.Message,
		input.DelayMinutes,
		key,
		a.now(),
	)
}

// finish persists a notification transition and reports it.
func (a *Activities) finish(
	ctx context.Context,
	repo ports.NotificationRepository,
	record *notification.Notification,
	transitionErr error,
) (SendNotificationResult, error) {
	if transitionErr != nil {
		return SendNotificationResult{}, transitionErr
	}
	if err := repo.Update(ctx, record); err != nil {
		return SendNotificationResult{}, fmt.Errorf("record notification %s: %w", record.IdempotencyKey(), err)
	}
	a.metrics.NotificationOutcome(record.Channel().String(), record.Status().String())
	return resultOf(record, false), nil
}

func resultOf(n *notification.Notification, duplicate bool) SendNotificationResult {
	return SendNotificationResult{
		NotificationID: n.ID().String(),
		Channel:        n.Channel(),
		Status:         n.Status(),
		ExternalID:     n.ExternalID(),
		Error:          n.ErrorMessage(),
		Duplicate:      duplicate,
	}
}

func snapshotOf(d *delivery.Delivery) DeliverySnapshot {
	channels := d.Channels()
	recipients := make(map[notification.Channel]string, len(channels))
	for _, c := range channels {
		recipients[c] = d.RecipientFor(c)
	}

	return DeliverySnapshot{
		DeliveryID:            d.ID().String(),
		CustomerID:            d.Customer().ID.String(),
		CustomerName:          d.Customer().Name,
		Origin:                d.Route().Origin,
		Destination:           d.Route().Destination,
		Status:                d.Status(),
		ThresholdMinutes:      d.Threshold().Minutes,
		AutoCheckTraffic:      d.Monitoring().AutoCheckTraffic,
		EnableRecurringChecks: d.Monitoring().EnableRecurringChecks,
		CheckInterval:         d.Monitoring().CheckInterval,
		Channels:              channels,
		Recipients:            recipients,
	}
}

func invalidInput(err error) error {
	return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidInput, err)
}
