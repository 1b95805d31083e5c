package domain

import "time"

type TaskStatus string

const (
	StatusAssigned    TaskStatus = "assigned"
	StatusPreparation TaskStatus = "preparation"
	StatusInProgress  TaskStatus = "in_progress"
	StatusPaused      TaskStatus = "paused"
	StatusCompleted   TaskStatus = "completed"
	StatusCancelled   TaskStatus = "cancelled"
)

// IsTerminal reports whether no further events or claims are accepted.
func (s TaskStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusAssigned, StatusPreparation, StatusInProgress, StatusPaused, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// Task is one slice of a work order's quantity bound to one machine.
//
// Status is a cache of the event fold; stores recompute it on every append.
type Task struct {
	ID                string
	WorkOrderID       string
	MachineID         string
	ParentTaskID      string // set on remainder tasks
	AssignedBy        string
	QuantityAssigned  int
	QuantityCompleted int

	Status          TaskStatus
	CurrentWorkerID string

	CreatedAt   time.Time
	CancelledAt *time.Time
}

// Claimed reports whether a worker currently holds the task.
func (t Task) Claimed() bool {
	return t.CurrentWorkerID != ""
}
