package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"delaynotify/internal/core/application/usecases/commands"
	"delaynotify/internal/core/application/usecases/queries"
	"delaynotify/internal/core/domain/model/kernel"
	"delaynotify/internal/generated/servers"
	"delaynotify/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Use case handlers the server delegates to.
type (
	StartMonitoringHandler interface {
		Handle(ctx context.Context, cmd commands.StartMonitoringCommand) (commands.StartMonitoringResult, error)
	}
	CancelWorkflowHandler interface {
		Handle(ctx context.Context, cmd commands.CancelWorkflowCommand) (commands.CancelWorkflowResult, error)
	}
	WorkflowStatsHandler interface {
		Handle(ctx context.Context, q queries.GetWorkflowStatsQuery) (queries.GetWorkflowStatsQueryResponse, error)
	}
	ExecutionHandler interface {
		Handle(ctx context.Context, q queries.GetExecutionQuery) (queries.GetExecutionQueryResponse, error)
	}
)

// Server implements the ServerInterface for handling HTTP requests.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	startMonitoringHandler StartMonitoringHandler
	cancelWorkflowHandler  CancelWorkflowHandler

	// Query handlers
	workflowStatsHandler WorkflowStatsHandler
	executionHandler     ExecutionHandler

	logger *slog.Logger
}

var _ servers.ServerInterface = (*Server)(nil)

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	startMonitoringHandler StartMonitoringHandler,
	cancelWorkflowHandler CancelWorkflowHandler,
	workflowStatsHandler WorkflowStatsHandler,
	executionHandler ExecutionHandler,
	logger *slog.Logger,
) *Server {
	return &Server{
		startMonitoringHandler: startMonitoringHandler,
		cancelWorkflowHandler:  cancelWorkflowHandler,
		workflowStatsHandler:   workflowStatsHandler,
		executionHandler:       executionHandler,
		logger:                 logger.With("component", "http"),
	}
}

// StartMonitoring handles POST /api/v1/deliveries/{deliveryId}/monitoring.
func (s *Server) StartMonitoring(
	ctx echo.Context,
	deliveryID openapi_types.UUID,
	params servers.StartMonitoringParams,
) error {
	var body servers.StartMonitoringJSONRequestBody
	if err := bindAndValidate(ctx, &body); err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "Invalid request body: "+err.Error())
	}

	id, err := kernel.UUIDFromBytes(deliveryID[:])
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "Invalid delivery id")
	}

	cmd, err := commands.NewStartMonitoringCommand(id, actor(body.Actor), requestID(ctx, params.XRequestID))
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "Invalid request: "+err.Error())
	}

	result, err := s.startMonitoringHandler.Handle(ctx.Request().Context(), cmd)
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return errorJSON(ctx, http.StatusNotFound, "Delivery not found")
	case errors.Is(err, commands.ErrDeliveryNotMonitored):
		return errorJSON(ctx, http.StatusConflict, err.Error())
	case err != nil:
		s.logger.ErrorContext(ctx.Request().Context(), "Failed to start monitoring",
			"delivery_id", id, "error", err)
		return errorJSON(ctx, http.StatusInternalServerError, "Failed to start monitoring")
	}

	status := http.StatusAccepted
	if result.AlreadyRunning {
		status = http.StatusOK
	}
	return ctx.JSON(status, servers.MonitoringStarted{
		WorkflowId:     result.WorkflowID,
		RunId:          result.RunID,
		Mode:           servers.MonitoringStartedMode(result.Mode),
		AlreadyRunning: result.AlreadyRunning,
	})
}

// GetWorkflowStats handles GET /api/v1/workflows/stats.
func (s *Server) GetWorkflowStats(ctx echo.Context, params servers.GetWorkflowStatsParams) error {
	var deliveryID *kernel.UUID
	if params.DeliveryId != nil {
		id, err := kernel.UUIDFromBytes(params.DeliveryId[:])
		if err != nil {
			return errorJSON(ctx, http.StatusBadRequest, "Invalid delivery id")
		}
		deliveryID = &id
	}

	stats, err := s.workflowStatsHandler.Handle(ctx.Request().Context(), queries.NewGetWorkflowStatsQuery(deliveryID))
	if err != nil {
		s.logger.ErrorContext(ctx.Request().Context(), "Failed to compute workflow stats", "error", err)
		return errorJSON(ctx, http.StatusInternalServerError, "Failed to compute workflow stats")
	}

	return ctx.JSON(http.StatusOK, servers.WorkflowStats{
		Total:     stats.Total,
		Running:   stats.Running,
		Completed: stats.Completed,
		Failed:    stats.Failed,
		Cancelled: stats.Cancelled,
		TimedOut:  stats.TimedOut,
	})
}

// GetExecution handles GET /api/v1/workflows/executions/{executionId}.
func (s *Server) GetExecution(ctx echo.Context, executionID openapi_types.UUID) error {
	id, err := kernel.UUIDFromBytes(executionID[:])
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "Invalid execution id")
	}

	record, err := s.executionHandler.Handle(ctx.Request().Context(), queries.NewGetExecutionQuery(id))
	if errors.Is(err, errs.ErrObjectNotFound) {
		return errorJSON(ctx, http.StatusNotFound, "Execution not found")
	}
	if err != nil {
		s.logger.ErrorContext(ctx.Request().Context(), "Failed to load execution", "execution_id", id, "error", err)
		return errorJSON(ctx, http.StatusInternalServerError, "Failed to load execution")
	}

	return ctx.JSON(http.StatusOK, servers.Execution{
		Id:           record.ID.Bytes(),
		WorkflowId:   record.WorkflowID,
		RunId:        record.RunID,
		DeliveryId:   record.DeliveryID.Bytes(),
		Status:       servers.ExecutionStatus(record.Status),
		StartedAt:    record.StartedAt,
		CompletedAt:  record.CompletedAt,
		ErrorMessage: record.ErrorMessage,
		StatusSource: servers.ExecutionStatusSource(record.StatusSource),
	})
}

// CancelWorkflow handles POST /api/v1/workflows/{workflowId}/cancel.
func (s *Server) CancelWorkflow(ctx echo.Context, workflowID string, params servers.CancelWorkflowParams) error {
	var body servers.CancelWorkflowJSONRequestBody
	if err := bindAndValidate(ctx, &body); err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "Invalid request body: "+err.Error())
	}

	force := body.Force != nil && *body.Force
	cmd, err := commands.NewCancelWorkflowCommand(workflowID, force, actor(body.Actor), requestID(ctx, params.XRequestID))
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "Invalid request: "+err.Error())
	}

	result, err := s.cancelWorkflowHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		s.logger.ErrorContext(ctx.Request().Context(), "Failed to cancel workflow",
			"workflow_id", workflowID, "forced", force, "error", err)
		return errorJSON(ctx, http.StatusInternalServerError, "Failed to cancel workflow")
	}

	return ctx.JSON(http.StatusOK, servers.CancelWorkflowResult{
		Message:    result.Message,
		WorkflowId: result.WorkflowID,
		Forced:     result.Forced,
	})
}

func actor(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func errorJSON(ctx echo.Context, code int, message string) error {
	return ctx.JSON(code, servers.Error{
		Code:    int32(code),
		Message: message,
	})
}

func bindAndValidate(ctx echo.Context, body any) error {
	if err := ctx.Bind(body); err != nil {
		return errors.New("malformed JSON")
	}
	return ctx.Validate(body)
}

// requestID prefers the client's X-Request-ID and falls back to the one the
// request id middleware put on the response.
func requestID(ctx echo.Context, header *string) string {
	if header != nil && *header != "" {
		return *header
	}
	return ctx.Response().Header().Get(echo.HeaderXRequestID)
}
