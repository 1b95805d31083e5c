package service

import (
	"context"
	"errors"
	"log"
	"sync"

	"shopfloor-tracker/internal/domain"
	"shopfloor-tracker/internal/store"
	"shopfloor-tracker/internal/workerpool"
)

// FollowUps runs the work that trails a committed task change: creating the
// remainder task after a partial completion and rolling the work order status
// up from its tasks. Handle is idempotent.
type FollowUps struct {
	store  store.Store
	logger *log.Logger

	// serializes handlers so two of them never both create a remainder
	mu sync.Mutex
}

var _ workerpool.Handler = (*FollowUps)(nil)

func NewFollowUps(st store.Store, logger *log.Logger) (*FollowUps, error) {
	if st == nil {
		return nil, ErrStoreNil
	}
	if logger == nil {
		logger = log.Default()
	}
	return &FollowUps{store: st, logger: logger}, nil
}

func (f *FollowUps) Handle(ctx context.Context, taskID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	task, err := f.store.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if err := f.ensureRemainder(ctx, task); err != nil {
		return err
	}
	return f.rollUp(ctx, task.WorkOrderID)
}

func (f *FollowUps) ensureRemainder(ctx context.Context, task domain.Task) error {
	if task.Status != domain.StatusCompleted {
		return nil
	}
	left := task.QuantityAssigned - task.QuantityCompleted
	if left <= 0 {
		return nil
	}

	existing, err := f.store.ListTasks(ctx, store.TaskFilter{ParentID: task.ID})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	created, err := f.store.CreateTask(ctx, domain.Task{
		WorkOrderID:      task.WorkOrderID,
		MachineID:        task.MachineID,
		ParentTaskID:     task.ID,
		AssignedBy:       task.AssignedBy,
		QuantityAssigned: left,
	})
	if err != nil {
		return err
	}
	f.logger.Printf("[followup] task=%s remainder=%s quantity=%d", task.ID, created.ID, left)
	return nil
}

func (f *FollowUps) rollUp(ctx context.Context, workOrderID string) error {
	wo, err := f.store.GetWorkOrder(ctx, workOrderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if wo.Status == domain.WorkOrderCancelled {
		return nil
	}

	tasks, err := f.store.ListTasks(ctx, store.TaskFilter{WorkOrderID: workOrderID})
	if err != nil {
		return err
	}
	next := WorkOrderStatus(tasks)
	if next == wo.Status {
		return nil
	}
	if _, err := f.store.SetWorkOrderStatus(ctx, workOrderID, next); err != nil {
		return err
	}
	f.logger.Printf("[followup] work_order=%s status %s -> %s", workOrderID, wo.Status, next)
	return nil
}

// WorkOrderStatus derives a work order's status from its tasks. Cancelled
// tasks are ignored.
func WorkOrderStatus(tasks []domain.Task) domain.WorkOrderStatus {
	var live, completed, started int
	for _, t := range tasks {
		switch t.Status {
		case domain.StatusCancelled:
			continue
		case domain.StatusCompleted:
			completed++
			started++
		case domain.StatusPreparation, domain.StatusInProgress, domain.StatusPaused:
			started++
		}
		live++
	}

	switch {
	case live == 0:
		return domain.WorkOrderPending
	case completed == live:
		return domain.WorkOrderCompleted
	case started > 0:
		return domain.WorkOrderInProgress
	default:
		return domain.WorkOrderAssigned
	}
}
