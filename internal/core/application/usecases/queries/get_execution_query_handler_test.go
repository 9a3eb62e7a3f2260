package queries_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"delaynotify/internal/adapters/out/postgres/executionrepo"
	"delaynotify/internal/core/application/usecases/queries"
	"delaynotify/internal/core/domain/model/execution"
	"delaynotify/internal/core/domain/model/kernel"
	"delaynotify/internal/core/ports"
	"delaynotify/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type noopTracker struct{}

func (noopTracker) TrackAggregate(kernel.UUID, any) {}

type GetExecutionQueryHandlerTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	repo      *executionrepo.GormExecutionRepository
	engine    *MockWorkflowEngine
	handler   queries.GetExecutionQueryHandler
}

func TestGetExecutionQueryHandlerTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(GetExecutionQueryHandlerTestSuite))
}

func (suite *GetExecutionQueryHandlerTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&executionrepo.ExecutionDTO{}))
	suite.repo = executionrepo.NewGormExecutionRepository(db, noopTracker{})
}

func (suite *GetExecutionQueryHandlerTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *GetExecutionQueryHandlerTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE workflow_executions").Error)
	suite.engine = &MockWorkflowEngine{}
	suite.handler = queries.NewGetExecutionQueryHandler(suite.db, suite.engine, discardLogger())
}

func (suite *GetExecutionQueryHandlerTestSuite) TestHandle_Missing_ReturnsObjectNotFound() {
	_, err := suite.handler.Handle(context.Background(), queries.NewGetExecutionQuery(kernel.NewUUID()))
	suite.True(errors.Is(err, errs.ErrObjectNotFound))
}

func (suite *GetExecutionQueryHandlerTestSuite) TestHandle_TerminalRow_ServedFromHistory() {
	r := suite.store(execution.StatusFailed, "traffic provider unavailable")

	got, err := suite.handler.Handle(context.Background(), queries.NewGetExecutionQuery(r.ID()))

	suite.Require().NoError(err)
	suite.Equal("failed", got.Status)
	suite.Equal(queries.SourceHistory, got.StatusSource)
	suite.Require().NotNil(got.ErrorMessage)
	suite.Equal("traffic provider unavailable", *got.ErrorMessage)
	suite.NotNil(got.CompletedAt)
	suite.Equal(r.DeliveryID(), got.DeliveryID)
	suite.engine.AssertNotCalled(suite.T(), "DescribeRun", mock.Anything, mock.Anything)
}

func (suite *GetExecutionQueryHandlerTestSuite) TestHandle_RunningRow_OverlaidWithFinishedRun() {
	r := suite.store(execution.StatusRunning, "")
	closed := time.Now().UTC()
	suite.engine.On("DescribeRun", mock.Anything, r.RunKey()).Return(ports.LiveExecution{
		Key:          r.RunKey(),
		NativeStatus: "WORKFLOW_EXECUTION_STATUS_TIMED_OUT",
		ClosedAt:     &closed,
	}, nil).Once()

	got, err := suite.handler.Handle(context.Background(), queries.NewGetExecutionQuery(r.ID()))

	suite.Require().NoError(err)
	suite.Equal("timed_out", got.Status)
	suite.Equal(queries.SourceRegistry, got.StatusSource)
	suite.Equal(&closed, got.CompletedAt)
	suite.Nil(got.ErrorMessage)
}

func (suite *GetExecutionQueryHandlerTestSuite) TestHandle_RunningRow_StillRunning() {
	r := suite.store(execution.StatusRunning, "")
	suite.engine.On("DescribeRun", mock.Anything, r.RunKey()).Return(ports.LiveExecution{
		Key:          r.RunKey(),
		NativeStatus: "WORKFLOW_EXECUTION_STATUS_RUNNING",
	}, nil).Once()

	got, err := suite.handler.Handle(context.Background(), queries.NewGetExecutionQuery(r.ID()))

	suite.Require().NoError(err)
	suite.Equal("running", got.Status)
	suite.Equal(queries.SourceHistory, got.StatusSource)
}

func (suite *GetExecutionQueryHandlerTestSuite) TestHandle_RegistryError_ServesHistory() {
	r := suite.store(execution.StatusRunning, "")
	suite.engine.On("DescribeRun", mock.Anything, r.RunKey()).
		Return(ports.LiveExecution{}, errors.New("unavailable")).Once()

	got, err := suite.handler.Handle(context.Background(), queries.NewGetExecutionQuery(r.ID()))

	suite.Require().NoError(err)
	suite.Equal("running", got.Status)
}

func (suite *GetExecutionQueryHandlerTestSuite) store(status execution.Status, message string) *execution.Record {
	deliveryID := kernel.NewUUID()
	workflowID, err := execution.NewWorkflowID(execution.ModeDelayNotification, deliveryID)
	suite.Require().NoError(err)
	r, err := execution.NewRecord(workflowID, "run-1", deliveryID, time.Now().Add(-time.Minute).UTC())
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repo.Add(context.Background(), r))
	if status != execution.StatusRunning {
		suite.Require().NoError(r.Finish(status, time.Now().UTC(), message))
		suite.Require().NoError(suite.repo.Update(context.Background(), r))
	}
	return r
}
