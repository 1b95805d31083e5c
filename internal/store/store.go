package store

import (
	"context"
	"errors"
	"slices"
	"time"

	"shopfloor-tracker/internal/domain"
)

var ErrNotFound = errors.New("record not found")

// TaskFilter narrows ListTasks. Zero fields match everything.
type TaskFilter struct {
	MachineID   string
	WorkerID    string
	WorkOrderID string
	ParentID    string
	Statuses    []domain.TaskStatus
}

func (f TaskFilter) Match(t domain.Task) bool {
	if f.MachineID != "" && t.MachineID != f.MachineID {
		return false
	}
	if f.WorkerID != "" && t.CurrentWorkerID != f.WorkerID {
		return false
	}
	if f.WorkOrderID != "" && t.WorkOrderID != f.WorkOrderID {
		return false
	}
	if f.ParentID != "" && t.ParentTaskID != f.ParentID {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, t.Status) {
		return false
	}
	return true
}

// OpenStatuses are the non-terminal task statuses.
var OpenStatuses = []domain.TaskStatus{
	domain.StatusAssigned,
	domain.StatusPreparation,
	domain.StatusInProgress,
	domain.StatusPaused,
}

type Catalog interface {
	CreateMachine(ctx context.Context, m domain.Machine) (domain.Machine, error)
	GetMachine(ctx context.Context, id string) (domain.Machine, error)
	ListMachines(ctx context.Context) ([]domain.Machine, error)
	SetMachineStopped(ctx context.Context, id string, stopped bool) (domain.Machine, error)

	CreateWorkOrder(ctx context.Context, wo domain.WorkOrder) (domain.WorkOrder, error)
	GetWorkOrder(ctx context.Context, id string) (domain.WorkOrder, error)
	ListWorkOrders(ctx context.Context) ([]domain.WorkOrder, error)
	SetWorkOrderStatus(ctx context.Context, id string, status domain.WorkOrderStatus) (domain.WorkOrder, error)

	CreateWorker(ctx context.Context, w domain.Worker) (domain.Worker, error)
	GetWorker(ctx context.Context, id string) (domain.Worker, error)
	ListWorkers(ctx context.Context) ([]domain.Worker, error)
}

// TaskLog owns tasks and their append-only event history. Claim, AppendEvent
// and Withdraw each commit atomically or not at all.
type TaskLog interface {
	CreateTask(ctx context.Context, t domain.Task) (domain.Task, error)
	GetTask(ctx context.Context, id string) (domain.Task, error)
	ListTasks(ctx context.Context, f TaskFilter) ([]domain.Task, error)

	Claim(ctx context.Context, taskID, workerID string) (domain.Task, error)
	AppendEvent(ctx context.Context, ev domain.WorkEvent) (domain.Task, error)
	Withdraw(ctx context.Context, taskID string, at time.Time) (domain.Task, error)

	ListEvents(ctx context.Context, taskID string) ([]domain.WorkEvent, error)
	ListEventsBetween(ctx context.Context, start, end time.Time) ([]domain.WorkEvent, error)
}

type Store interface {
	Catalog
	TaskLog
}
