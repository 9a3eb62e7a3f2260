package workflows_test

import (
	"context"
	"errors"
	"sync"
	"testing"
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
	"delaynotify/internal/workflows"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
)

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error    { return m.Called(ctx).Error(0) }
func (m *MockUoW) Commit(ctx context.Context) error   { return m.Called(ctx).Error(0) }
func (m *MockUoW) Rollback(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *MockUoW) DeliveryRepository() ports.DeliveryRepository {
	return m.Called().Get(0).(ports.DeliveryRepository)
}

func (m *MockUoW) ExecutionRepository() ports.ExecutionRepository {
	return m.Called().Get(0).(ports.ExecutionRepository)
}

func (m *MockUoW) NotificationRepository() ports.NotificationRepository {
	return m.Called().Get(0).(ports.NotificationRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() ports.UnitOfWork {
	return m.Called().Get(0).(ports.UnitOfWork)
}

type MockDeliveryRepository struct{ mock.Mock }

func (m *MockDeliveryRepository) Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) ListMonitored(ctx context.Context, id *kernel.UUID) ([]*delivery.Delivery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*delivery.Delivery), args.Error(1)
}

type MockExecutionRepository struct{ mock.Mock }

func (m *MockExecutionRepository) Add(ctx context.Context, r *execution.Record) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockExecutionRepository) Update(ctx context.Context, r *execution.Record) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockExecutionRepository) Get(ctx context.Context, id kernel.UUID) (*execution.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*execution.Record), args.Error(1)
}

func (m *MockExecutionRepository) GetByRun(ctx context.Context, key execution.RunKey) (*execution.Record, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*execution.Record), args.Error(1)
}

func (m *MockExecutionRepository) GetLatestOpen(ctx context.Context, id execution.WorkflowID) (*execution.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*execution.Record), args.Error(1)
}

func (m *MockExecutionRepository) List(ctx context.Context, id *kernel.UUID) ([]*execution.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*execution.Record), args.Error(1)
}

func (m *MockExecutionRepository) ListRunningStartedBefore(ctx context.Context, before time.Time, limit int) ([]*execution.Record, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*execution.Record), args.Error(1)
}

// memoryNotifications keeps notifications by idempotency key so retried
// sends can be observed end to end.
type memoryNotifications struct {
	mu     sync.Mutex
	byKey  map[string]*notification.Notification
	writes int
}

func newMemoryNotifications() *memoryNotifications {
	return &memoryNotifications{byKey: map[string]*notification.Notification{}}
}

func (m *memoryNotifications) Add(_ context.Context, n *notification.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byKey[n.IdempotencyKey()] = n
	m.writes++
	return nil
}

func (m *memoryNotifications) Update(_ context.Context, n *notification.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byKey[n.IdempotencyKey()] = n
	m.writes++
	return nil
}

func (m *memoryNotifications) GetByIdempotencyKey(_ context.Context, key string) (*notification.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.byKey[key]; ok {
		return n, nil
	}
	return nil, errs.NewObjectNotFoundError("notification", key)
}

func (m *memoryNotifications) ListByDelivery(_ context.Context, _ kernel.UUID) ([]*notification.Notification, error) {
	return nil, nil
}

type MockNotifier struct {
	mock.Mock
	channel notification.Channel
}

func (m *MockNotifier) Channel() notification.Channel { return m.channel }

func (m *MockNotifier) Send(ctx context.Context, msg ports.OutgoingMessage) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

type MockTrafficProvider struct{ mock.Mock }

func (m *MockTrafficProvider) Name() string { return "mock" }

func (m *MockTrafficProvider) Lookup(ctx context.Context, route delivery.Route) (traffic.Report, error) {
	args := m.Called(ctx, route)
	return args.Get(0).(traffic.Report), args.Error(1)
}

type MockMessageGenerator struct{ mock.Mock }

func (m *MockMessageGenerator) Generate(ctx context.Context, in services.MessageInput) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

type ActivitiesTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite

	env           *testsuite.TestActivityEnvironment
	uow           *MockUoW
	factory       *MockUoWFactory
	deliveries    *MockDeliveryRepository
	executions    *MockExecutionRepository
	notifications *memoryNotifications
	email         *MockNotifier
	traffic       *MockTrafficProvider
	generator     *MockMessageGenerator
	activities    *workflows.Activities
}

func TestActivities(t *testing.T) {
	suite.Run(t, new(ActivitiesTestSuite))
}

func (s *ActivitiesTestSuite) SetupTest() {
	s.uow = &MockUoW{}
	s.factory = &MockUoWFactory{}
	s.deliveries = &MockDeliveryRepository{}
	s.executions = &MockExecutionRepository{}
	s.notifications = newMemoryNotifications()
	s.email = &MockNotifier{channel: notification.ChannelEmail}
	s.traffic = &MockTrafficProvider{}
	s.generator = &MockMessageGenerator{}

	s.factory.On("Create").Return(s.uow)
	s.uow.On("DeliveryRepository").Return(s.deliveries).Maybe()
	s.uow.On("ExecutionRepository").Return(s.executions).Maybe()
	s.uow.On("NotificationRepository").Return(s.notifications).Maybe()
	s.uow.On("Begin", mock.Anything).Return(nil).Maybe()
	s.uow.On("Commit", mock.Anything).Return(nil).Maybe()
	s.uow.On("Rollback", mock.Anything).Return(nil).Maybe()

	s.activities = workflows.NewActivities(
		s.factory,
		s.traffic,
		s.generator,
		[]ports.Notifier{s.email},
		metrics.NewNoopSink(),
	)
	s.env = s.NewTestActivityEnvironment()
	s.env.RegisterActivity(s.activities)
}

func (s *ActivitiesTestSuite) TearDownTest() {
	s.email.AssertExpectations(s.T())
	s.executions.AssertExpectations(s.T())
	s.deliveries.AssertExpectations(s.T())
}

func sendInput(channel notification.Channel, recipient string) workflows.SendNotificationInput {
	return workflows.SendNotificationInput{
		WorkflowID:   oneShotID,
		RunID:        "run-1",
		DeliveryID:   d1,
		CustomerID:   d1Customer,
		Channel:      channel,
		Recipient:    recipient,
		Subject:      "Delivery delay update",
		Message:      generatedText,
		DelayMinutes: 45,
	}
}

func (s *ActivitiesTestSuite) sendNotification(input workflows.SendNotificationInput) (workflows.SendNotificationResult, error) {
	var result workflows.SendNotificationResult
	value, err := s.env.ExecuteActivity(s.activities.SendNotification, input)
	if err != nil {
		return result, err
	}
	s.Require().NoError(value.Get(&result))
	return result, nil
}

func (s *ActivitiesTestSuite) TestSendNotification_SentOnceAcrossRetries() {
	key := oneShotID + "/run-1/email"
	s.email.On("Send", mock.Anything, mock.MatchedBy(func(msg ports.OutgoingMessage) bool {
		return msg.Recipient == customerEmail && msg.IdempotencyKey == key && msg.Body == generatedText
	})).Return("re_123", nil).Once()

	first, err := s.sendNotification(sendInput(notification.ChannelEmail, customerEmail))
	s.Require().NoError(err)
	s.Equal(notification.StatusSent, first.Status)
	s.Equal("re_123", first.ExternalID)
	s.False(first.Duplicate)

	// Re-executing the same activity for the same run, as after a worker
	// restart, must not reach the notifier again.
	second, err := s.sendNotification(sendInput(notification.ChannelEmail, customerEmail))
	s.Require().NoError(err)
	s.True(second.Duplicate)
	s.Equal(first.NotificationID, second.NotificationID)
	s.Equal(notification.StatusSent, second.Status)
	s.email.AssertNumberOfCalls(s.T(), "Send", 1)
}

func (s *ActivitiesTestSuite) TestSendNotification_PermanentRejectionIsAResult() {
	s.email.On("Send", mock.Anything, mock.Anything).
		Return("", ports.NewPermanentError(notification.ChannelEmail, "invalid recipient", nil)).Once()

	result, err := s.sendNotification(sendInput(notification.ChannelEmail, customerEmail))

	s.Require().NoError(err)
	s.Equal(notification.StatusFailed, result.Status)
	s.Contains(result.Error, "invalid recipient")
}

func (s *ActivitiesTestSuite) TestSendNotification_TransientErrorIsRetried() {
	s.email.On("Send", mock.Anything, mock.Anything).Return("", errors.New("connection reset")).Once()

	_, err := s.sendNotification(sendInput(notification.ChannelEmail, customerEmail))
	s.Require().Error(err)

	stored, getErr := s.notifications.GetByIdempotencyKey(context.Background(), oneShotID+"/run-1/email")
	s.Require().NoError(getErr)
	s.Equal(notification.StatusPending, stored.Status())
}

func (s *ActivitiesTestSuite) TestSendNotification_SkipsMissingRecipientAndUnconfiguredChannel() {
	result, err := s.sendNotification(sendInput(notification.ChannelEmail, ""))
	s.Require().NoError(err)
	s.Equal(notification.StatusSkipped, result.Status)

	result, err = s.sendNotification(sendInput(notification.ChannelSMS, customerPhone))
	s.Require().NoError(err)
	s.Equal(notification.StatusSkipped, result.Status)
	s.Equal("channel not configured", result.Error)
}

func (s *ActivitiesTestSuite) TestLoadDelivery_NotFoundIsNonRetryable() {
	s.deliveries.On("Get", mock.Anything, mock.Anything).
		Return(nil, errs.NewObjectNotFoundError("delivery", d1)).Once()

	_, err := s.env.ExecuteActivity(s.activities.LoadDelivery, workflows.LoadDeliveryInput{DeliveryID: d1})

	s.Require().Error(err)
	var appErr *temporal.ApplicationError
	s.Require().ErrorAs(err, &appErr)
	s.Equal(workflows.ErrTypeDeliveryNotFound, appErr.Type())
}

func (s *ActivitiesTestSuite) TestLoadDelivery_BuildsSnapshot() {
	id, _ := kernel.UUIDFromString(d1)
	customerID, _ := kernel.UUIDFromString(d1Customer)
	route, _ := delivery.NewRoute("Rotterdam", "Duisburg")
	d, err := delivery.NewDelivery(id,
		delivery.Customer{ID: customerID, Name: "Acme Logistics", Email: customerEmail},
		route, delivery.StatusInTransit,
		delivery.Threshold{ID: kernel.NewUUID(), Minutes: 30},
		delivery.Monitoring{AutoCheckTraffic: true, EnableRecurringChecks: true, CheckInterval: 15 * time.Minute},
		[]notification.Channel{notification.ChannelEmail, notification.ChannelSMS},
	)
	s.Require().NoError(err)
	s.deliveries.On("Get", mock.Anything, id).Return(d, nil).Once()

	value, err := s.env.ExecuteActivity(s.activities.LoadDelivery, workflows.LoadDeliveryInput{DeliveryID: d1})
	s.Require().NoError(err)

	var snap workflows.DeliverySnapshot
	s.Require().NoError(value.Get(&snap))
	s.Equal(30, snap.ThresholdMinutes)
	s.True(snap.KeepsRecurring())
	s.Equal(15*time.Minute, snap.CheckInterval)
	s.Equal(customerEmail, snap.Recipients[notification.ChannelEmail])
	s.Empty(snap.Recipients[notification.ChannelSMS])
}

func (s *ActivitiesTestSuite) TestRecordExecutionStart_IsIdempotent() {
	existing := s.runningRecord()
	s.executions.On("GetByRun", mock.Anything, existing.RunKey()).Return(existing, nil).Once()

	_, err := s.env.ExecuteActivity(s.activities.RecordExecutionStart, workflows.RecordExecutionStartInput{
		WorkflowID: oneShotID,
		RunID:      "run-1",
		DeliveryID: d1,
		StartedAt:  time.Now(),
	})

	s.Require().NoError(err)
	s.executions.AssertNotCalled(s.T(), "Add", mock.Anything, mock.Anything)
}

func (s *ActivitiesTestSuite) TestRecordExecutionStart_AddsRunningRecord() {
	s.executions.On("GetByRun", mock.Anything, mock.Anything).
		Return(nil, errs.NewObjectNotFoundError("execution", "run-1")).Once()
	s.executions.On("Add", mock.Anything, mock.MatchedBy(func(r *execution.Record) bool {
		return r.Status() == execution.StatusRunning && r.RunID() == "run-1"
	})).Return(nil).Once()

	_, err := s.env.ExecuteActivity(s.activities.RecordExecutionStart, workflows.RecordExecutionStartInput{
		WorkflowID: oneShotID,
		RunID:      "run-1",
		DeliveryID: d1,
		StartedAt:  time.Now(),
	})

	s.Require().NoError(err)
	s.uow.AssertCalled(s.T(), "Commit", mock.Anything)
}

func (s *ActivitiesTestSuite) TestRecordExecutionOutcome_FinishesRunningRecord() {
	record := s.runningRecord()
	s.executions.On("GetByRun", mock.Anything, record.RunKey()).Return(record, nil).Once()
	s.executions.On("Update", mock.Anything, mock.MatchedBy(func(r *execution.Record) bool {
		return r.Status() == execution.StatusFailed && r.ErrorMessage() == "traffic check: provider timeout"
	})).Return(nil).Once()

	_, err := s.env.ExecuteActivity(s.activities.RecordExecutionOutcome, workflows.RecordExecutionOutcomeInput{
		WorkflowID:   oneShotID,
		RunID:        "run-1",
		DeliveryID:   d1,
		Status:       "failed",
		CompletedAt:  time.Now(),
		ErrorMessage: "traffic check: provider timeout",
	})

	s.Require().NoError(err)
}

func (s *ActivitiesTestSuite) TestRecordExecutionOutcome_CreatesMissingRecord() {
	s.executions.On("GetByRun", mock.Anything, mock.Anything).
		Return(nil, errs.NewObjectNotFoundError("execution", "run-1")).Once()
	s.executions.On("Add", mock.Anything, mock.MatchedBy(func(r *execution.Record) bool {
		return r.Status() == execution.StatusCompleted && r.CompletedAt() != nil
	})).Return(nil).Once()

	_, err := s.env.ExecuteActivity(s.activities.RecordExecutionOutcome, workflows.RecordExecutionOutcomeInput{
		WorkflowID:  oneShotID,
		RunID:       "run-1",
		DeliveryID:  d1,
		StartedAt:   time.Now().Add(-time.Minute),
		Status:      "completed",
		CompletedAt: time.Now(),
	})

	s.Require().NoError(err)
}

func (s *ActivitiesTestSuite) TestRecordExecutionOutcome_LeavesTerminalRecord() {
	record := s.runningRecord()
	s.Require().NoError(record.Finish(execution.StatusCancelled, time.Now(), ""))
	s.executions.On("GetByRun", mock.Anything, record.RunKey()).Return(record, nil).Once()

	_, err := s.env.ExecuteActivity(s.activities.RecordExecutionOutcome, workflows.RecordExecutionOutcomeInput{
		WorkflowID:  oneShotID,
		RunID:       "run-1",
		DeliveryID:  d1,
		Status:      "completed",
		CompletedAt: time.Now(),
	})

	s.Require().NoError(err)
	s.executions.AssertNotCalled(s.T(), "Update", mock.Anything, mock.Anything)
}

func (s *ActivitiesTestSuite) TestCheckTraffic() {
	s.traffic.On("Lookup", mock.Anything, delivery.Route{Origin: "Rotterdam", Destination: "Duisburg"}).
		Return(report(45), nil).Once()

	value, err := s.env.ExecuteActivity(s.activities.CheckTraffic, workflows.CheckTrafficInput{
		DeliveryID: d1, Origin: "Rotterdam", Destination: "Duisburg",
	})
	s.Require().NoError(err)

	var got traffic.Report
	s.Require().NoError(value.Get(&got))
	s.Equal(45, got.DelayMinutes)
	s.Equal(traffic.ConditionHeavy, got.Condition)
}

func (s *ActivitiesTestSuite) TestGenerateMessage_RejectsEmptyText() {
	s.generator.On("Generate", mock.Anything, mock.Anything).Return("   ", nil).Once()

	_, err := s.env.ExecuteActivity(s.activities.GenerateMessage, services.MessageInput{DelayMinutes: 45})

	s.Require().Error(err)
}

func (s *ActivitiesTestSuite) runningRecord() *execution.Record {
	id, _ := kernel.UUIDFromString(d1)
	record, err := execution.NewRecord(execution.WorkflowID(oneShotID), "run-1", id, time.Now().Add(-time.Minute))
	s.Require().NoError(err)
	return record
}
