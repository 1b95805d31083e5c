package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"shopfloor-tracker/internal/domain"
)

func (s *Store) CreateMachine(_ context.Context, m domain.Machine) (domain.Machine, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.machines {
		if existing.Code == m.Code {
			return domain.Machine{}, fmt.Errorf("machine code %q already exists", m.Code)
		}
	}
	s.machines[m.ID] = m
	return m, nil
}

func (s *Store) GetMachine(_ context.Context, id string) (domain.Machine, error) {
	s.mu.RLock()
	m, ok := s.machines[id]
	s.mu.RUnlock()

	if !ok {
		return domain.Machine{}, fmt.Errorf("machine %s: %w", id, ErrNotFound)
	}
	return m, nil
}

func (s *Store) ListMachines(_ context.Context) ([]domain.Machine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Machine, 0, len(s.machines))
	for _, m := range s.machines {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *Store) SetMachineStopped(_ context.Context, id string, stopped bool) (domain.Machine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.machines[id]
	if !ok {
		return domain.Machine{}, fmt.Errorf("machine %s: %w", id, ErrNotFound)
	}
	m.Stopped = stopped
	s.machines[id] = m
	return m, nil
}

func (s *Store) CreateWorkOrder(_ context.Context, wo domain.WorkOrder) (domain.WorkOrder, error) {
	if wo.ID == "" {
		wo.ID = uuid.NewString()
	}
	if wo.CreatedAt.IsZero() {
		wo.CreatedAt = time.Now().UTC()
	}
	if wo.Status == "" {
		wo.Status = domain.WorkOrderPending
	}

	s.mu.Lock()
	s.workOrders[wo.ID] = wo
	s.mu.Unlock()

	return wo, nil
}

func (s *Store) GetWorkOrder(_ context.Context, id string) (domain.WorkOrder, error) {
	s.mu.RLock()
	wo, ok := s.workOrders[id]
	s.mu.RUnlock()

	if !ok {
		return domain.WorkOrder{}, fmt.Errorf("work order %s: %w", id, ErrNotFound)
	}
	return wo, nil
}

func (s *Store) ListWorkOrders(_ context.Context) ([]domain.WorkOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.WorkOrder, 0, len(s.workOrders))
	for _, wo := range s.workOrders {
		out = append(out, wo)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNo < out[j].OrderNo })
	return out, nil
}

func (s *Store) SetWorkOrderStatus(_ context.Context, id string, status domain.WorkOrderStatus) (domain.WorkOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wo, ok := s.workOrders[id]
	if !ok {
		return domain.WorkOrder{}, fmt.Errorf("work order %s: %w", id, ErrNotFound)
	}
	wo.Status = status
	s.workOrders[id] = wo
	return wo, nil
}

func (s *Store) CreateWorker(_ context.Context, w domain.Worker) (domain.Worker, error) {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.workers {
		if existing.Username == w.Username {
			return domain.Worker{}, fmt.Errorf("username %q already exists", w.Username)
		}
	}
	s.workers[w.ID] = w
	return w, nil
}

func (s *Store) GetWorker(_ context.Context, id string) (domain.Worker, error) {
	s.mu.RLock()
	w, ok := s.workers[id]
	s.mu.RUnlock()

	if !ok {
		return domain.Worker{}, fmt.Errorf("worker %s: %w", id, ErrNotFound)
	}
	return w, nil
}

func (s *Store) ListWorkers(_ context.Context) ([]domain.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Worker, 0, len(s.workers))
	for _, w := range s.workers {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}
