package dto

import (
	"time"

	"shopfloor-tracker/internal/domain"
	"shopfloor-tracker/internal/timing"
)

type AssignTaskRequest struct {
	WorkOrderID string `json:"work_order_id"`
	MachineID   string `json:"machine_id"`
	Quantity    int    `json:"quantity"`
}

type RecordEventRequest struct {
	Type              string `json:"type"`
	PauseReason       string `json:"pause_reason,omitempty"`
	QuantityCompleted int    `json:"quantity_completed,omitempty"`
	Notes             string `json:"notes,omitempty"`
}

type TaskResponse struct {
	ID                string     `json:"id"`
	WorkOrderID       string     `json:"work_order_id"`
	MachineID         string     `json:"machine_id"`
	ParentTaskID      string     `json:"parent_task_id,omitempty"`
	QuantityAssigned  int        `json:"quantity_assigned"`
	QuantityCompleted int        `json:"quantity_completed"`
	Status            string     `json:"status"`
	CurrentWorkerID   string     `json:"current_worker_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	CancelledAt       *time.Time `json:"cancelled_at,omitempty"`
}

type EventResponse struct {
	ID                string    `json:"id"`
	TaskID            string    `json:"task_id"`
	WorkerID          string    `json:"worker_id"`
	MachineID         string    `json:"machine_id"`
	Type              string    `json:"type"`
	Timestamp         time.Time `json:"timestamp"`
	PauseReason       string    `json:"pause_reason,omitempty"`
	QuantityCompleted int       `json:"quantity_completed,omitempty"`
	Notes             string    `json:"notes,omitempty"`
}

type ClockResponse struct {
	Phase                string     `json:"phase"`
	ActiveElapsedSeconds int64      `json:"active_elapsed_seconds"`
	PauseElapsedSeconds  int64      `json:"pause_elapsed_seconds"`
	Since                *time.Time `json:"since,omitempty"`
}

type TaskDetailResponse struct {
	TaskResponse
	Clock  ClockResponse   `json:"clock"`
	Events []EventResponse `json:"events"`
}

func FromTask(t domain.Task) TaskResponse {
	return TaskResponse{
		ID:                t.ID,
		WorkOrderID:       t.WorkOrderID,
		MachineID:         t.MachineID,
		ParentTaskID:      t.ParentTaskID,
		QuantityAssigned:  t.QuantityAssigned,
		QuantityCompleted: t.QuantityCompleted,
		Status:            string(t.Status),
		CurrentWorkerID:   t.CurrentWorkerID,
		CreatedAt:         t.CreatedAt,
		CancelledAt:       t.CancelledAt,
	}
}

func FromTasks(tasks []domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, FromTask(t))
	}
	return out
}

func FromEvent(e domain.WorkEvent) EventResponse {
	return EventResponse{
		ID:                e.ID,
		TaskID:            e.TaskID,
		WorkerID:          e.WorkerID,
		MachineID:         e.MachineID,
		Type:              string(e.Type),
		Timestamp:         e.Timestamp,
		PauseReason:       string(e.PauseReason),
		QuantityCompleted: e.QuantityCompleted,
		Notes:             e.Notes,
	}
}

func FromEvents(events []domain.WorkEvent) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, FromEvent(e))
	}
	return out
}

func FromClock(c timing.Clock) ClockResponse {
	out := ClockResponse{
		Phase:                string(c.Phase),
		ActiveElapsedSeconds: c.ActiveElapsedSeconds,
		PauseElapsedSeconds:  c.PauseElapsedSeconds,
	}
	if !c.Since.IsZero() {
		since := c.Since
		out.Since = &since
	}
	return out
}
