package workflows_test

import (
	"errors"
	"testing"
	"time"

	"delaynotify/internal/core/domain/model/delivery"
	"delaynotify/internal/core/domain/model/notification"
	"delaynotify/internal/core/domain/model/traffic"
	"delaynotify/internal/core/domain/services"
	"delaynotify/internal/workflows"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"
)

const (
	d1             = "6f1c2d3e-4b5a-4c6d-8e7f-90a1b2c3d4e5"
	d1Customer     = "0b9a8c7d-6e5f-4a3b-9c2d-1e0f9a8b7c6d"
	oneShotID      = "delay-notification-" + d1
	recurringID    = "recurring-check-" + d1
	generatedText  = "Your Rotterdam → Duisburg delivery is running 45 minutes late."
	customerEmail  = "ops@acme.test"
	customerPhone  = "+15550100"
	thresholdLimit = 30
)

type WorkflowTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite
	env *testsuite.TestWorkflowEnvironment
}

func TestWorkflows(t *testing.T) {
	suite.Run(t, new(WorkflowTestSuite))
}

func (s *WorkflowTestSuite) SetupTest() {
	s.env = s.NewTestWorkflowEnvironment()
	s.env.RegisterWorkflow(workflows.DelayNotificationWorkflow)
	s.env.RegisterWorkflow(workflows.RecurringCheckWorkflow)
	s.env.RegisterActivity(&workflows.Activities{})
}

func (s *WorkflowTestSuite) AfterTest(_, _ string) {
	s.env.AssertExpectations(s.T())
}

func snapshot(channels ...notification.Channel) workflows.DeliverySnapshot {
	if len(channels) == 0 {
		channels = []notification.Channel{notification.ChannelEmail}
	}
	return workflows.DeliverySnapshot{
		DeliveryID:       d1,
		CustomerID:       d1Customer,
		CustomerName:     "Acme Logistics",
		Origin:           "Rotterdam",
		Destination:      "Duisburg",
		Status:           delivery.StatusInTransit,
		ThresholdMinutes: thresholdLimit,
		AutoCheckTraffic: true,
		Channels:         channels,
		Recipients: map[notification.Channel]string{
			notification.ChannelEmail: customerEmail,
			notification.ChannelSMS:   customerPhone,
		},
	}
}

func report(delay int) traffic.Report {
	return traffic.Report{
		DelayMinutes:     delay,
		Condition:        traffic.ClassifyDelay(delay),
		DurationEstimate: 2 * time.Hour,
		Provider:         "simulated",
	}
}

func outcome(status string) any {
	return mock.MatchedBy(func(in workflows.RecordExecutionOutcomeInput) bool {
		return in.Status == status
	})
}

func (s *WorkflowTestSuite) startOneShot() {
	s.env.SetStartWorkflowOptions(client.StartWorkflowOptions{ID: oneShotID})
	s.env.ExecuteWorkflow(workflows.DelayNotificationWorkflow, workflows.DelayNotificationInput{
		DeliveryID: d1,
		Audit:      workflows.Audit{Actor: "system"},
	})
}

func (s *WorkflowTestSuite) mockBegin(snap workflows.DeliverySnapshot) {
	s.env.OnActivity(workflows.RecordExecutionStartActivity, mock.Anything, mock.MatchedBy(
		func(in workflows.RecordExecutionStartInput) bool {
			return in.DeliveryID == d1 && in.RunID != "" && in.Audit.Actor == "system"
		})).Return(nil).Once()
	s.env.OnActivity(workflows.LoadDeliveryActivity, mock.Anything, workflows.LoadDeliveryInput{DeliveryID: d1}).
		Return(snap, nil).Once()
}

func (s *WorkflowTestSuite) TestDelayAboveThreshold_SendsExactlyOneNotification() {
	s.mockBegin(snapshot())
	s.env.OnActivity(workflows.CheckTrafficActivity, mock.Anything, mock.Anything).Return(report(45), nil).Once()
	s.env.OnActivity(workflows.GenerateMessageActivity, mock.Anything, mock.Anything).Return(generatedText, nil).Once()
	s.env.OnActivity(workflows.SendNotificationActivity, mock.Anything, mock.MatchedBy(
		func(in workflows.SendNotificationInput) bool {
			return in.WorkflowID == oneShotID &&
				in.Channel == notification.ChannelEmail &&
				in.Recipient == customerEmail &&
				in.Message == generatedText &&
				in.DelayMinutes == 45
		})).Return(workflows.SendNotificationResult{
		NotificationID: "n-1",
		Channel:        notification.ChannelEmail,
		Status:         notification.StatusSent,
		ExternalID:     "re_123",
	}, nil).Once()
	s.env.OnActivity(workflows.RecordExecutionOutcomeActivity, mock.Anything, outcome("completed")).Return(nil).Once()

	s.startOneShot()

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var result workflows.CheckResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.Equal(workflows.StateCompleted, result.State)
	s.True(result.Decision.ShouldNotify)
	s.False(result.MessageFallback)
	s.Len(result.Notifications, 1)
	s.Equal(notification.StatusSent, result.Notifications[0].Status)
	s.env.AssertActivityNumberOfCalls(s.T(), workflows.SendNotificationActivity, 1)

	value, err := s.env.QueryWorkflow(workflows.CurrentStateQuery)
	s.NoError(err)
	var progress workflows.Progress
	s.NoError(value.Get(&progress))
	s.Equal(workflows.StateCompleted, progress.State)
	s.Equal(1, progress.Notified)
	s.Equal(45, *progress.DelayMinutes)
}

func (s *WorkflowTestSuite) TestCancelDuringSend_KeepsSendThenRecordsCancelled() {
	s.mockBegin(snapshot(notification.ChannelEmail, notification.ChannelSMS))
	s.env.OnActivity(workflows.CheckTrafficActivity, mock.Anything, mock.Anything).Return(report(45), nil).Once()
	s.env.OnActivity(workflows.GenerateMessageActivity, mock.Anything, mock.Anything).Return(generatedText, nil).Once()
	s.env.OnActivity(workflows.SendNotificationActivity, mock.Anything, mock.MatchedBy(
		func(in workflows.SendNotificationInput) bool { return in.Channel == notification.ChannelEmail },
	)).After(20*time.Second).Return(workflows.SendNotificationResult{
		NotificationID: "n-1",
		Channel:        notification.ChannelEmail,
		Status:         notification.StatusSent,
	}, nil).Once()
	s.env.OnActivity(workflows.RecordExecutionOutcomeActivity, mock.Anything, outcome("cancelled")).Return(nil).Once()

	s.env.RegisterDelayedCallback(func() {
		s.env.CancelWorkflow()
	}, 5*time.Second)

	s.startOneShot()

	s.True(s.env.IsWorkflowCompleted())
	err := s.env.GetWorkflowError()
	s.Error(err)
	s.True(temporal.IsCanceledError(err), "expected cancellation, got %v", err)
	s.env.AssertActivityNumberOfCalls(s.T(), workflows.SendNotificationActivity, 1)

	value, err := s.env.QueryWorkflow(workflows.CurrentStateQuery)
	s.NoError(err)
	var progress workflows.Progress
	s.NoError(value.Get(&progress))
	s.Equal(workflows.StateCancelled, progress.State)
	s.Equal(1, progress.Notified)
}

func (s *WorkflowTestSuite) TestActivityPoliciesWaitForCancellation() {
	for _, step := range []workflows.Step{
		workflows.StepBookkeeping,
		workflows.StepTrafficCheck,
		workflows.StepMessageGeneration,
		workflows.StepNotificationDelivery,
	} {
		s.True(workflows.PolicyFor(step).ActivityOptions().WaitForCancellation, "step %s", step)
	}
}

func (s *WorkflowTestSuite) TestDelayBelowThreshold_CompletesWithoutNotification() {
	s.mockBegin(snapshot())
	s.env.OnActivity(workflows.CheckTrafficActivity, mock.Anything, mock.Anything).Return(report(10), nil).Once()
	s.env.OnActivity(workflows.RecordExecutionOutcomeActivity, mock.Anything, outcome("completed")).Return(nil).Once()

	s.startOneShot()

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var result workflows.CheckResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.Equal(workflows.StateCompleted, result.State)
	s.False(result.Decision.ShouldNotify)
	s.Empty(result.Notifications)
	s.env.AssertActivityNumberOfCalls(s.T(), workflows.GenerateMessageActivity, 0)
	s.env.AssertActivityNumberOfCalls(s.T(), workflows.SendNotificationActivity, 0)
}

func (s *WorkflowTestSuite) TestDelayEqualToThreshold_Notifies() {
	s.mockBegin(snapshot())
	s.env.OnActivity(workflows.CheckTrafficActivity, mock.Anything, mock.Anything).Return(report(thresholdLimit), nil).Once()
	s.env.OnActivity(workflows.GenerateMessageActivity, mock.Anything, mock.Anything).Return(generatedText, nil).Once()
	s.env.OnActivity(workflows.SendNotificationActivity, mock.Anything, mock.Anything).
		Return(workflows.SendNotificationResult{Channel: notification.ChannelEmail, Status: notification.StatusSent}, nil).Once()
	s.env.OnActivity(workflows.RecordExecutionOutcomeActivity, mock.Anything, outcome("completed")).Return(nil).Once()

	s.startOneShot()

	s.NoError(s.env.GetWorkflowError())
	s.env.AssertActivityNumberOfCalls(s.T(), workflows.SendNotificationActivity, 1)
}

func (s *WorkflowTestSuite) TestMessageGenerationExhausted_FallsBackToTemplate() {
	snap := snapshot()
	fallback := services.FallbackMessage(services.MessageInput{
		CustomerName: snap.CustomerName,
		Origin:       snap.Origin,
		Destination:  snap.Destination,
		DelayMinutes: 45,
		Condition:    traffic.ConditionHeavy,
	})

	s.mockBegin(snap)
	s.env.OnActivity(workflows.CheckTrafficActivity, mock.Anything, mock.Anything).Return(report(45), nil).Once()
	s.env.OnActivity(workflows.GenerateMessageActivity, mock.Anything, mock.Anything).
		Return("", errors.New("rate limited"))
	s.env.OnActivity(workflows.SendNotificationActivity, mock.Anything, mock.MatchedBy(
		func(in workflows.SendNotificationInput) bool { return in.Message == fallback })).
		Return(workflows.SendNotificationResult{Channel: notification.ChannelEmail, Status: notification.StatusSent}, nil).Once()
	s.env.OnActivity(workflows.RecordExecutionOutcomeActivity, mock.Anything, outcome("completed")).Return(nil).Once()

	s.startOneShot()

	s.NoError(s.env.GetWorkflowError())
	var result workflows.CheckResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.True(result.MessageFallback)
	s.NotEmpty(result.Message)
	s.env.AssertActivityNumberOfCalls(s.T(), workflows.GenerateMessageActivity,
		int(workflows.PolicyFor(workflows.StepMessageGeneration).MaximumAttempts))
}

func (s *WorkflowTestSuite) TestPermanentSendFailure_StillCompletes() {
	s.mockBegin(snapshot(notification.ChannelSMS, notification.ChannelEmail))
	s.env.OnActivity(workflows.CheckTrafficActivity, mock.Anything, mock.Anything).Return(report(75), nil).Once()
	s.env.OnActivity(workflows.GenerateMessageActivity, mock.Anything, mock.Anything).Return(generatedText, nil).Once()
	s.env.OnActivity(workflows.SendNotificationActivity, mock.Anything, mock.MatchedBy(
		func(in workflows.SendNotificationInput) bool { return in.Channel == notification.ChannelSMS })).
		Return(workflows.SendNotificationResult{
			Channel: notification.ChannelSMS,
			Status:  notification.StatusFailed,
			Error:   "sms delivery rejected: invalid recipient",
		}, nil).Once()
	s.env.OnActivity(workflows.SendNotificationActivity, mock.Anything, mock.MatchedBy(
		func(in workflows.SendNotificationInput) bool { return in.Channel == notification.ChannelEmail })).
		Return(workflows.SendNotificationResult{Channel: notification.ChannelEmail, Status: notification.StatusSent}, nil).Once()
	s.env.OnActivity(workflows.RecordExecutionOutcomeActivity, mock.Anything, outcome("completed")).Return(nil).Once()

	s.startOneShot()

	s.NoError(s.env.GetWorkflowError())
	var result workflows.CheckResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.Len(result.Notifications, 2)
	s.Equal(notification.StatusFailed, result.Notifications[0].Status)
	s.Equal(notification.StatusSent, result.Notifications[1].Status)
}

func (s *WorkflowTestSuite) TestTransientSendFailureExhausted_FailsWorkflow() {
	s.mockBegin(snapshot())
	s.env.OnActivity(workflows.CheckTrafficActivity, mock.Anything, mock.Anything).Return(report(45), nil).Once()
	s.env.OnActivity(workflows.GenerateMessageActivity, mock.Anything, mock.Anything).Return(generatedText, nil).Once()
	s.env.OnActivity(workflows.SendNotificationActivity, mock.Anything, mock.Anything).
		Return(workflows.SendNotificationResult{}, errors.New("503 service unavailable"))
	s.env.OnActivity(workflows.RecordExecutionOutcomeActivity, mock.Anything, mock.MatchedBy(
		func(in workflows.RecordExecutionOutcomeInput) bool {
			return in.Status == "failed" && in.ErrorMessage != ""
		})).Return(nil).Once()

	s.startOneShot()

	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
	s.env.AssertActivityNumberOfCalls(s.T(), workflows.SendNotificationActivity,
		int(workflows.PolicyFor(workflows.StepNotificationDelivery).MaximumAttempts))
}

func (s *WorkflowTestSuite) TestTrafficCheckExhausted_FailsWithoutNotifying() {
	s.mockBegin(snapshot())
	s.env.OnActivity(workflows.CheckTrafficActivity, mock.Anything, mock.Anything).
		Return(traffic.Report{}, errors.New("provider timeout"))
	s.env.OnActivity(workflows.RecordExecutionOutcomeActivity, mock.Anything, outcome("failed")).Return(nil).Once()

	s.startOneShot()

	s.Error(s.env.GetWorkflowError())
	s.env.AssertActivityNumberOfCalls(s.T(), workflows.CheckTrafficActivity,
		int(workflows.PolicyFor(workflows.StepTrafficCheck).MaximumAttempts))
	s.env.AssertActivityNumberOfCalls(s.T(), workflows.SendNotificationActivity, 0)
}

func (s *WorkflowTestSuite) TestDeliveryNotFound_FailsWithoutRetry() {
	s.env.OnActivity(workflows.RecordExecutionStartActivity, mock.Anything, mock.Anything).Return(nil).Once()
	s.env.OnActivity(workflows.LoadDeliveryActivity, mock.Anything, mock.Anything).
		Return(workflows.DeliverySnapshot{}, temporal.NewNonRetryableApplicationError(
			"object not found: delivery", workflows.ErrTypeDeliveryNotFound, nil)).Once()
	s.env.OnActivity(workflows.RecordExecutionOutcomeActivity, mock.Anything, outcome("failed")).Return(nil).Once()

	s.startOneShot()

	s.Error(s.env.GetWorkflowError())
	s.env.AssertActivityNumberOfCalls(s.T(), workflows.LoadDeliveryActivity, 1)
}

func (s *WorkflowTestSuite) TestTerminalDelivery_SkipsTrafficCheck() {
	snap := snapshot()
	snap.Status = delivery.StatusDelivered
	s.mockBegin(snap)
	s.env.OnActivity(workflows.RecordExecutionOutcomeActivity, mock.Anything, outcome("completed")).Return(nil).Once()
	s.env.OnUpsertMemo(mock.Anything).Never()

	s.startOneShot()

	s.NoError(s.env.GetWorkflowError())
	var result workflows.CheckResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.NotEmpty(result.SkipReason)
	s.env.AssertActivityNumberOfCalls(s.T(), workflows.CheckTrafficActivity, 0)
}

func recurringSnapshot() workflows.DeliverySnapshot {
	snap := snapshot()
	snap.EnableRecurringChecks = true
	snap.CheckInterval = 15 * time.Minute
	return snap
}

func (s *WorkflowTestSuite) startRecurring(tick int) {
	s.env.SetStartWorkflowOptions(client.StartWorkflowOptions{ID: recurringID})
	s.env.ExecuteWorkflow(workflows.RecurringCheckWorkflow, workflows.RecurringCheckInput{
		DeliveryID: d1,
		Audit:      workflows.Audit{Actor: "system"},
		Tick:       tick,
	})
}

func (s *WorkflowTestSuite) TestRecurring_ContinuesAsNewAfterInterval() {
	s.mockBegin(recurringSnapshot())
	s.env.OnActivity(workflows.CheckTrafficActivity, mock.Anything, mock.Anything).Return(report(5), nil).Once()
	s.env.OnActivity(workflows.RecordExecutionOutcomeActivity, mock.Anything, outcome("completed")).Return(nil).Once()

	s.startRecurring(2)

	s.True(s.env.IsWorkflowCompleted())
	err := s.env.GetWorkflowError()
	var continueAsNew *workflow.ContinueAsNewError
	s.True(errors.As(err, &continueAsNew), "expected continue-as-new, got %v", err)
	s.env.AssertActivityNumberOfCalls(s.T(), workflows.SendNotificationActivity, 0)
}

func (s *WorkflowTestSuite) TestRecurring_StopsWhenDeliveryIsTerminal() {
	snap := recurringSnapshot()
	snap.Status = delivery.StatusDelivered
	s.mockBegin(snap)
	s.env.OnActivity(workflows.RecordExecutionOutcomeActivity, mock.Anything, outcome("completed")).Return(nil).Once()
	s.env.OnUpsertMemo(mock.Anything).Never()

	s.startRecurring(3)

	s.NoError(s.env.GetWorkflowError())
	var result workflows.RecurringCheckResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.Equal(3, result.Tick)
	s.Equal("delivery delivered", result.StopReason)
}

func (s *WorkflowTestSuite) TestRecurring_StopSignalDuringWait() {
	s.mockBegin(recurringSnapshot())
	s.env.OnActivity(workflows.CheckTrafficActivity, mock.Anything, mock.Anything).Return(report(5), nil).Once()
	s.env.OnActivity(workflows.RecordExecutionOutcomeActivity, mock.Anything, outcome("completed")).Return(nil).Once()
	s.env.OnUpsertMemo(map[string]interface{}{workflows.StoppedByMemoKey: "ops@acme.test"}).Once()

	var waiting workflows.State
	s.env.RegisterDelayedCallback(func() {
		value, err := s.env.QueryWorkflow(workflows.CurrentStateQuery)
		s.NoError(err)
		var progress workflows.Progress
		s.NoError(value.Get(&progress))
		waiting = progress.State

		s.env.SignalWorkflow(workflows.StopRecurringChecksSignal, workflows.StopSignal{Actor: "ops@acme.test"})
	}, time.Minute)

	s.startRecurring(1)

	s.Equal(workflows.StateWaiting, waiting)
	s.NoError(s.env.GetWorkflowError())
	var result workflows.RecurringCheckResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.Equal("stop signal received", result.StopReason)
}

func (s *WorkflowTestSuite) TestRecurring_StopSignalWithoutActorIsRecordedAsSystem() {
	s.mockBegin(recurringSnapshot())
	s.env.OnActivity(workflows.CheckTrafficActivity, mock.Anything, mock.Anything).Return(report(5), nil).Once()
	s.env.OnActivity(workflows.RecordExecutionOutcomeActivity, mock.Anything, outcome("completed")).Return(nil).Once()
	s.env.OnUpsertMemo(map[string]interface{}{workflows.StoppedByMemoKey: "system"}).Once()

	s.env.RegisterDelayedCallback(func() {
		s.env.SignalWorkflow(workflows.StopRecurringChecksSignal, workflows.StopSignal{})
	}, time.Minute)

	s.startRecurring(1)

	s.NoError(s.env.GetWorkflowError())
}

func (s *WorkflowTestSuite) TestRecurring_CancelDuringWaitRecordsCancelled() {
	s.mockBegin(recurringSnapshot())
	s.env.OnActivity(workflows.CheckTrafficActivity, mock.Anything, mock.Anything).Return(report(5), nil).Once()
	s.env.OnActivity(workflows.RecordExecutionOutcomeActivity, mock.Anything, outcome("cancelled")).Return(nil).Once()

	s.env.RegisterDelayedCallback(func() {
		s.env.CancelWorkflow()
	}, 5*time.Minute)

	s.startRecurring(1)

	s.True(s.env.IsWorkflowCompleted())
	err := s.env.GetWorkflowError()
	s.Error(err)
	s.True(temporal.IsCanceledError(err), "expected cancellation, got %v", err)
}
