// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries return read models for specific use cases.
package queries

import (
	"errors"

	"delaynotify/internal/core/domain/model/execution"
	"delaynotify/internal/core/domain/model/kernel"
	"delaynotify/internal/pkg/guard"
)

var ErrGetWorkflowStatsQueryIsNotConstructed = errors.New(
	"GetWorkflowStatsQuery must be created via NewGetWorkflowStatsQuery constructor",
)

// GetWorkflowStatsQuery asks for the aggregate status of workflow runs,
// across all monitored deliveries or for one delivery.
//
// Example:
//
//	query := NewGetWorkflowStatsQuery(nil)
//	stats, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%d running of %d\n", stats.Running, stats.Total)
type GetWorkflowStatsQuery struct {
	deliveryID *kernel.UUID
	guard      guard.ConstructorGuard
}

// NewGetWorkflowStatsQuery creates the query. A nil deliveryID covers every
// monitored delivery.
func NewGetWorkflowStatsQuery(deliveryID *kernel.UUID) GetWorkflowStatsQuery {
	return GetWorkflowStatsQuery{
		deliveryID: deliveryID,
		guard:      guard.NewConstructorGuard(),
	}
}

func (q GetWorkflowStatsQuery) DeliveryID() *kernel.UUID {
	return q.deliveryID
}

func (q GetWorkflowStatsQuery) Validate() error {
	if err := q.guard.Validate(ErrGetWorkflowStatsQueryIsNotConstructed); err != nil {
		return err
	}
	if q.deliveryID != nil {
		return q.deliveryID.Validate()
	}
	return nil
}

// GetWorkflowStatsQueryResponse is the Aggregate Status View. It is computed
// on every request and never stored. Total is the sum of the other counters.
type GetWorkflowStatsQueryResponse struct {
	Total     int `json:"total"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
	TimedOut  int `json:"timed_out"`
}

func (r *GetWorkflowStatsQueryResponse) count(status execution.Status) {
	switch status {
	case execution.StatusRunning:
		r.Running++
	case execution.StatusCompleted:
		r.Completed++
	case execution.StatusFailed:
		r.Failed++
	case execution.StatusCancelled:
		r.Cancelled++
	case execution.StatusTimedOut:
		r.TimedOut++
	default:
		return
	}
	r.Total++
}
