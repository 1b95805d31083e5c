package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"shopfloor-tracker/internal/claims"
	"shopfloor-tracker/internal/domain"
	"shopfloor-tracker/internal/lifecycle"
	"shopfloor-tracker/internal/store"
)

var (
	ErrNotFound       = store.ErrNotFound
	ErrNotInitialized = errors.New("store not initialized")
)

// Store keeps everything in maps behind one RWMutex. Every mutation holds the
// write lock for its whole check-then-commit, which serializes appends.
type Store struct {
	mu sync.RWMutex

	tasks  map[string]domain.Task
	events map[string][]domain.WorkEvent
	log    []domain.WorkEvent // global append order

	machines   map[string]domain.Machine
	workOrders map[string]domain.WorkOrder
	workers    map[string]domain.Worker
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		tasks:      make(map[string]domain.Task),
		events:     make(map[string][]domain.WorkEvent),
		machines:   make(map[string]domain.Machine),
		workOrders: make(map[string]domain.WorkOrder),
		workers:    make(map[string]domain.Worker),
	}
}

func (s *Store) CreateTask(_ context.Context, task domain.Task) (domain.Task, error) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}

	// status and holder are not definable by callers
	task.Status = domain.StatusAssigned
	task.CurrentWorkerID = ""
	task.QuantityCompleted = 0
	task.CancelledAt = nil

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.ID]; exists {
		return domain.Task{}, fmt.Errorf("task %s already exists", task.ID)
	}
	s.tasks[task.ID] = task
	return task, nil
}

func (s *Store) GetTask(_ context.Context, id string) (domain.Task, error) {
	s.mu.RLock()
	task, ok := s.tasks[id]
	s.mu.RUnlock()

	if !ok {
		return domain.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return task, nil
}

func (s *Store) ListTasks(_ context.Context, f store.TaskFilter) ([]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.tasks == nil {
		return nil, ErrNotInitialized
	}

	tasks := make([]domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if f.Match(t) {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks, nil
}

func (s *Store) Claim(_ context.Context, taskID, workerID string) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.foldedLocked(taskID)
	if err != nil {
		return domain.Task{}, err
	}
	claimed, err := claims.Claim(task, workerID, s.heldLocked(workerID))
	if err != nil {
		return domain.Task{}, err
	}
	s.tasks[taskID] = claimed
	return claimed, nil
}

func (s *Store) AppendEvent(_ context.Context, ev domain.WorkEvent) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[ev.TaskID]
	if !ok {
		return domain.Task{}, fmt.Errorf("task %s: %w", ev.TaskID, ErrNotFound)
	}
	history := s.events[ev.TaskID]

	next, err := lifecycle.Append(task, history, ev, s.heldLocked(ev.WorkerID))
	if err != nil {
		return domain.Task{}, err
	}

	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	ev.MachineID = task.MachineID

	s.events[ev.TaskID] = append(history, ev)
	s.log = append(s.log, ev)
	s.tasks[ev.TaskID] = next
	return next, nil
}

func (s *Store) Withdraw(_ context.Context, taskID string, at time.Time) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok {
		return domain.Task{}, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	cancelled, err := lifecycle.Withdraw(task, s.events[taskID], at)
	if err != nil {
		return domain.Task{}, err
	}
	s.tasks[taskID] = cancelled
	return cancelled, nil
}

func (s *Store) ListEvents(_ context.Context, taskID string) ([]domain.WorkEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.tasks[taskID]; !ok {
		return nil, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	return append([]domain.WorkEvent(nil), s.events[taskID]...), nil
}

func (s *Store) ListEventsBetween(_ context.Context, start, end time.Time) ([]domain.WorkEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.WorkEvent, 0)
	for _, ev := range s.log {
		if ev.Timestamp.Before(start) || ev.Timestamp.After(end) {
			continue
		}
		out = append(out, ev)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// foldedLocked returns the task with its status re-derived from the log.
func (s *Store) foldedLocked(taskID string) (domain.Task, error) {
	task, ok := s.tasks[taskID]
	if !ok {
		return domain.Task{}, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	status, err := lifecycle.Status(task, s.events[taskID])
	if err != nil {
		return domain.Task{}, fmt.Errorf("replay task %s: %w", taskID, err)
	}
	task.Status = status
	return task, nil
}

func (s *Store) heldLocked(workerID string) []domain.Task {
	if workerID == "" {
		return nil
	}
	var held []domain.Task
	for _, t := range s.tasks {
		if t.CurrentWorkerID == workerID && !t.Status.IsTerminal() {
			held = append(held, t)
		}
	}
	return held
}
