package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"shopfloor-tracker/internal/domain"
	"shopfloor-tracker/internal/lifecycle"
	"shopfloor-tracker/internal/store"
	"shopfloor-tracker/internal/timing"
	"shopfloor-tracker/internal/workerpool"
)

type TaskService struct {
	store     store.Store
	pool      workerpool.TaskPool
	followUps workerpool.Handler
	logger    *log.Logger
	now       func() time.Time
}

// New wires the task operations. followUps runs inline whenever the pool
// refuses a job, so it must be the same handler the pool was built with.
func New(st store.Store, pool workerpool.TaskPool, followUps workerpool.Handler, logger *log.Logger) (*TaskService, error) {
	if st == nil {
		return nil, ErrStoreNil
	}
	if pool == nil || followUps == nil {
		return nil, ErrPoolNil
	}
	if logger == nil {
		logger = log.Default()
	}

	return &TaskService{
		store:     st,
		pool:      pool,
		followUps: followUps,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

type AssignInput struct {
	WorkOrderID string
	MachineID   string
	Quantity    int
}

func (s *TaskService) AssignTask(ctx context.Context, id domain.Identity, in AssignInput) (domain.Task, error) {
	if err := authorize(id, capManageTasks); err != nil {
		return domain.Task{}, err
	}
	if err := parseID("work order", in.WorkOrderID); err != nil {
		return domain.Task{}, err
	}
	if err := parseID("machine", in.MachineID); err != nil {
		return domain.Task{}, err
	}
	if in.Quantity <= 0 {
		return domain.Task{}, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}

	if _, err := s.store.GetWorkOrder(ctx, in.WorkOrderID); err != nil {
		return domain.Task{}, err
	}
	if _, err := s.store.GetMachine(ctx, in.MachineID); err != nil {
		return domain.Task{}, err
	}

	created, err := s.store.CreateTask(ctx, domain.Task{
		WorkOrderID:      in.WorkOrderID,
		MachineID:        in.MachineID,
		AssignedBy:       id.WorkerID,
		QuantityAssigned: in.Quantity,
		CreatedAt:        s.now(),
	})
	if err != nil {
		return domain.Task{}, err
	}

	s.followUp(ctx, created.ID)
	return created, nil
}

func (s *TaskService) ClaimTask(ctx context.Context, id domain.Identity, taskID string) (domain.Task, error) {
	if err := authorize(id, capRecordWork); err != nil {
		return domain.Task{}, err
	}
	if err := parseID("task", taskID); err != nil {
		return domain.Task{}, err
	}
	if err := parseID("worker", id.WorkerID); err != nil {
		return domain.Task{}, err
	}
	return s.store.Claim(ctx, taskID, id.WorkerID)
}

type EventInput struct {
	TaskID            string
	Type              domain.EventType
	PauseReason       domain.PauseReason
	QuantityCompleted int
	Notes             string
}

// RecordEvent appends one event stamped with the server clock and the
// caller's identity. Clients never supply timestamps.
func (s *TaskService) RecordEvent(ctx context.Context, id domain.Identity, in EventInput) (domain.Task, error) {
	if err := authorize(id, capRecordWork); err != nil {
		return domain.Task{}, err
	}
	if err := parseID("task", in.TaskID); err != nil {
		return domain.Task{}, err
	}
	if err := parseID("worker", id.WorkerID); err != nil {
		return domain.Task{}, err
	}
	if !in.Type.Valid() {
		return domain.Task{}, fmt.Errorf("%w: unknown event type %q", ErrInvalidInput, in.Type)
	}

	task, err := s.store.AppendEvent(ctx, domain.WorkEvent{
		TaskID:            in.TaskID,
		WorkerID:          id.WorkerID,
		Type:              in.Type,
		Timestamp:         s.now(),
		PauseReason:       in.PauseReason,
		QuantityCompleted: in.QuantityCompleted,
		Notes:             strings.TrimSpace(in.Notes),
	})
	if err != nil {
		return domain.Task{}, err
	}

	switch in.Type {
	case domain.EventPrepStart, domain.EventWorkStart, domain.EventWorkComplete:
		s.followUp(ctx, task.ID)
	}
	return task, nil
}

func (s *TaskService) WithdrawTask(ctx context.Context, id domain.Identity, taskID string) (domain.Task, error) {
	if err := authorize(id, capManageTasks); err != nil {
		return domain.Task{}, err
	}
	if err := parseID("task", taskID); err != nil {
		return domain.Task{}, err
	}

	task, err := s.store.Withdraw(ctx, taskID, s.now())
	if err != nil {
		return domain.Task{}, err
	}
	s.followUp(ctx, task.ID)
	return task, nil
}

// TaskView is a task with its status folded from history and its running clock.
type TaskView struct {
	Task   domain.Task
	Events []domain.WorkEvent
	Clock  timing.Clock
}

func (s *TaskService) GetTask(ctx context.Context, id domain.Identity, taskID string) (TaskView, error) {
	if err := authorize(id, capView); err != nil {
		return TaskView{}, err
	}
	if err := parseID("task", taskID); err != nil {
		return TaskView{}, err
	}

	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return TaskView{}, err
	}
	events, err := s.store.ListEvents(ctx, taskID)
	if err != nil {
		return TaskView{}, err
	}
	if task.Status, err = lifecycle.Status(task, events); err != nil {
		return TaskView{}, fmt.Errorf("replay task %s: %w", taskID, err)
	}

	return TaskView{Task: task, Events: events, Clock: timing.Derive(events, task.Status, s.now())}, nil
}

func (s *TaskService) TaskEvents(ctx context.Context, id domain.Identity, taskID string) ([]domain.WorkEvent, error) {
	if err := authorize(id, capView); err != nil {
		return nil, err
	}
	if err := parseID("task", taskID); err != nil {
		return nil, err
	}
	return s.store.ListEvents(ctx, taskID)
}

func (s *TaskService) ListTasks(ctx context.Context, id domain.Identity, f store.TaskFilter) ([]domain.Task, error) {
	if err := authorize(id, capView); err != nil {
		return nil, err
	}
	for _, st := range f.Statuses {
		if !st.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, st)
		}
	}
	if id.Role == domain.RoleWorker && f.WorkerID != "" && f.WorkerID != id.WorkerID {
		return nil, fmt.Errorf("%w: workers may only list their own tasks", ErrForbidden)
	}
	return s.store.ListTasks(ctx, f)
}

// WorkerTasks lists the open tasks bound to workerID, oldest first.
func (s *TaskService) WorkerTasks(ctx context.Context, id domain.Identity, workerID string) ([]domain.Task, error) {
	if err := parseID("worker", workerID); err != nil {
		return nil, err
	}
	if err := authorizeWorkerView(id, workerID); err != nil {
		return nil, err
	}
	return s.store.ListTasks(ctx, store.TaskFilter{WorkerID: workerID, Statuses: store.OpenStatuses})
}

// followUp hands taskID to the pool. The task change is already committed, so
// a refused job runs inline instead of being dropped.
func (s *TaskService) followUp(ctx context.Context, taskID string) {
	err := s.pool.Enqueue(taskID)
	if err == nil {
		return
	}
	if !errors.Is(err, workerpool.ErrPoolFull) && !errors.Is(err, workerpool.ErrPoolClosed) {
		s.logger.Printf("[followup] task=%s enqueue: %v", taskID, err)
	}
	if err := s.followUps.Handle(ctx, taskID); err != nil {
		s.logger.Printf("[followup] task=%s inline: %v", taskID, err)
	}
}
