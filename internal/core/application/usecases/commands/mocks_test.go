package commands_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"delaynotify/internal/core/application/usecases/commands"
	"delaynotify/internal/core/domain/model/delivery"
	"delaynotify/internal/core/domain/model/execution"
	"delaynotify/internal/core/domain/model/kernel"
	"delaynotify/internal/core/domain/model/notification"
	"delaynotify/internal/core/ports"
	"delaynotify/internal/metrics"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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

type MockDeliveryReader struct{ mock.Mock }

func (m *MockDeliveryReader) DeliveryRepository() ports.DeliveryRepository {
	return m.Called().Get(0).(ports.DeliveryRepository)
}

type MockDeliveryReaderFactory struct{ mock.Mock }

func (m *MockDeliveryReaderFactory) Create() commands.DeliveryReader {
	return m.Called().Get(0).(commands.DeliveryReader)
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

func (m *MockExecutionRepository) ListRunningStartedBefore(
	ctx context.Context,
	before time.Time,
	limit int,
) ([]*execution.Record, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*execution.Record), args.Error(1)
}

type MockExecutionUoW struct{ mock.Mock }

func (m *MockExecutionUoW) Begin(ctx context.Context) error    { return m.Called(ctx).Error(0) }
func (m *MockExecutionUoW) Commit(ctx context.Context) error   { return m.Called(ctx).Error(0) }
func (m *MockExecutionUoW) Rollback(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *MockExecutionUoW) ExecutionRepository() ports.ExecutionRepository {
	return m.Called().Get(0).(ports.ExecutionRepository)
}

type MockExecutionUoWFactory struct{ mock.Mock }

func (m *MockExecutionUoWFactory) Create() commands.ExecutionUoW {
	return m.Called().Get(0).(commands.ExecutionUoW)
}

type MockWorkflowEngine struct{ mock.Mock }

func (m *MockWorkflowEngine) Start(ctx context.Context, req ports.StartRequest) (ports.StartResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ports.StartResult), args.Error(1)
}

func (m *MockWorkflowEngine) Describe(ctx context.Context, id execution.WorkflowID) (ports.LiveExecution, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(ports.LiveExecution), args.Error(1)
}

func (m *MockWorkflowEngine) DescribeRun(ctx context.Context, key execution.RunKey) (ports.LiveExecution, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(ports.LiveExecution), args.Error(1)
}

func (m *MockWorkflowEngine) Cancel(ctx context.Context, id execution.WorkflowID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockWorkflowEngine) Terminate(ctx context.Context, id execution.WorkflowID, reason string) error {
	return m.Called(ctx, id, reason).Error(0)
}

type recordingSink struct {
	metrics.NoopSink
	started   []string
	cancelled []bool
	synced    int
	unmapped  []string
}

func (s *recordingSink) WorkflowStarted(mode string, alreadyRunning bool) {
	if !alreadyRunning {
		s.started = append(s.started, mode)
	}
}
func (s *recordingSink) WorkflowCancelled(forced bool)      { s.cancelled = append(s.cancelled, forced) }
func (s *recordingSink) ExecutionRecordsSynced(count int)   { s.synced += count }
func (s *recordingSink) UnmappedEngineStatus(native string) { s.unmapped = append(s.unmapped, native) }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func readerOver(repo ports.DeliveryRepository) *MockDeliveryReaderFactory {
	reader := new(MockDeliveryReader)
	reader.On("DeliveryRepository").Return(repo)
	factory := new(MockDeliveryReaderFactory)
	factory.On("Create").Return(reader)
	return factory
}

func newDelivery(t *testing.T, status delivery.Status, autoCheck, recurring bool) *delivery.Delivery {
	t.Helper()
	d, err := delivery.NewDelivery(
		kernel.NewUUID(),
		delivery.Customer{ID: kernel.NewUUID(), Name: "Nordhaven Freight", Email: "dispatch@nordhaven.test"},
		delivery.Route{Origin: "Gdansk", Destination: "Poznan"},
		status,
		delivery.Threshold{ID: kernel.NewUUID(), Minutes: 20},
		delivery.Monitoring{AutoCheckTraffic: autoCheck, EnableRecurringChecks: recurring, CheckInterval: 30 * time.Minute},
		[]notification.Channel{notification.ChannelEmail},
	)
	require.NoError(t, err)
	return d
}

func workflowIDOf(t *testing.T, d *delivery.Delivery) execution.WorkflowID {
	t.Helper()
	id, err := execution.NewWorkflowID(execution.ModeFor(d.WantsRecurringChecks()), d.ID())
	require.NoError(t, err)
	return id
}

func runningRecord(t *testing.T, d *delivery.Delivery, runID string, startedAt time.Time) *execution.Record {
	t.Helper()
	r, err := execution.NewRecord(workflowIDOf(t, d), runID, d.ID(), startedAt)
	require.NoError(t, err)
	return r
}
