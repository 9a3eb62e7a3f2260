package queries

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"delaynotify/internal/core/domain/model/execution"
	"delaynotify/internal/core/domain/model/kernel"
	"delaynotify/internal/core/ports"
	"delaynotify/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetExecutionQueryHandler reads one Execution Record. A row still marked
// running is overlaid with the engine's status for the same run when the
// engine already reports it finished, so callers see a run that crashed or
// timed out before the history caught up.
//
// Example:
//
//	handler := NewGetExecutionQueryHandler(db, engine, logger)
//	record, err := handler.Handle(ctx, NewGetExecutionQuery(id))
//	if errors.Is(err, errs.ErrObjectNotFound) {
//	    return echo.NewHTTPError(http.StatusNotFound)
//	}
type GetExecutionQueryHandler struct {
	db     *gorm.DB
	engine ports.WorkflowEngine
	logger *slog.Logger
}

func NewGetExecutionQueryHandler(db *gorm.DB, engine ports.WorkflowEngine, logger *slog.Logger) GetExecutionQueryHandler {
	return GetExecutionQueryHandler{
		db:     db,
		engine: engine,
		logger: logger.With("component", "get_execution_query"),
	}
}

func (h GetExecutionQueryHandler) Handle(ctx context.Context, query GetExecutionQuery) (GetExecutionQueryResponse, error) {
	var response GetExecutionQueryResponse
	if err := query.Validate(); err != nil {
		return response, err
	}

	var (
		id, deliveryID uuid.UUID
		completedAt    sql.NullTime
		errorMessage   sql.NullString
	)
	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			workflow_id,
			run_id,
			delivery_id,
			status,
			started_at,
			completed_at,
			error_message
		FROM workflow_executions
		WHERE id = ?
	`, query.ExecutionID().Bytes()).Row()
	err := row.Scan(
		&id,
		&response.WorkflowID,
		&response.RunID,
		&deliveryID,
		&response.Status,
		&response.StartedAt,
		&completedAt,
		&errorMessage,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return response, errs.NewObjectNotFoundError("execution", query.ExecutionID().String())
	}
	if err != nil {
		return response, err
	}

	if response.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return response, err
	}
	if response.DeliveryID, err = kernel.UUIDFromBytes(deliveryID[:]); err != nil {
		return response, err
	}
	if completedAt.Valid {
		response.CompletedAt = &completedAt.Time
	}
	if errorMessage.Valid && errorMessage.String != "" {
		response.ErrorMessage = &errorMessage.String
	}
	response.StatusSource = SourceHistory

	if response.Status == execution.StatusRunning.String() {
		h.overlay(ctx, &response)
	}
	return response, nil
}

func (h GetExecutionQueryHandler) overlay(ctx context.Context, response *GetExecutionQueryResponse) {
	key := execution.RunKey{WorkflowID: execution.WorkflowID(response.WorkflowID), RunID: response.RunID}
	live, err := h.engine.DescribeRun(ctx, key)
	switch {
	case errors.Is(err, ports.ErrExecutionNotFound):
		return
	case err != nil:
		h.logger.WarnContext(ctx, "Execution registry lookup failed, serving history",
			"workflow_id", key.WorkflowID, "run_id", key.RunID, "error", err)
		return
	}

	status, ok := execution.ParseEngineStatus(live.NativeStatus)
	if !ok {
		h.logger.WarnContext(ctx, "Unmapped engine status, serving history",
			"workflow_id", key.WorkflowID, "run_id", key.RunID, "native_status", live.NativeStatus)
		return
	}
	if !status.IsTerminal() {
		return
	}

	response.Status = status.String()
	response.StatusSource = SourceRegistry
	if live.ClosedAt != nil {
		response.CompletedAt = live.ClosedAt
	}
}
