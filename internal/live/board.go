// Package live joins machines with their bound task, worker, work order and
// running clock into a fleet-wide snapshot. Build is side-effect free and safe
// to call on every poll.
package live

import (
	"sort"
	"time"

	"shopfloor-tracker/internal/domain"
	"shopfloor-tracker/internal/lifecycle"
	"shopfloor-tracker/internal/timing"
)

// Snapshot is everything Build reads, gathered by the caller from one store.
type Snapshot struct {
	Machines   []domain.Machine
	Tasks      []domain.Task
	Workers    map[string]domain.Worker
	WorkOrders map[string]domain.WorkOrder
	Events     map[string][]domain.WorkEvent // keyed by task ID, ordered
}

type Entry struct {
	Machine   domain.Machine
	Status    domain.MachineStatus
	Task      *domain.Task
	Worker    *domain.Worker
	WorkOrder *domain.WorkOrder
	Clock     timing.Clock
}

// Build returns one entry per machine ordered by machine code.
func Build(s Snapshot, now time.Time) []Entry {
	open := openTasksByMachine(s)

	entries := make([]Entry, 0, len(s.Machines))
	for _, m := range s.Machines {
		entry := Entry{Machine: m}

		if task, ok := CurrentTask(open[m.ID]); ok {
			entry.Task = &task
			if w, ok := s.Workers[task.CurrentWorkerID]; ok {
				entry.Worker = &w
			}
			if wo, ok := s.WorkOrders[task.WorkOrderID]; ok {
				entry.WorkOrder = &wo
			}
			entry.Clock = timing.Derive(s.Events[task.ID], task.Status, now)
		}
		entry.Status = StatusOf(m, entry.Task)
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Machine.Code != entries[j].Machine.Code {
			return entries[i].Machine.Code < entries[j].Machine.Code
		}
		return entries[i].Machine.ID < entries[j].Machine.ID
	})
	return entries
}

// openTasksByMachine re-folds each task's status from its events so a stale
// cached status never reaches a viewer.
func openTasksByMachine(s Snapshot) map[string][]domain.Task {
	out := make(map[string][]domain.Task)
	for _, t := range s.Tasks {
		if status, err := lifecycle.Status(t, s.Events[t.ID]); err == nil {
			t.Status = status
		}
		if t.Status.IsTerminal() {
			continue
		}
		out[t.MachineID] = append(out[t.MachineID], t)
	}
	return out
}

// CurrentTask picks the most recently created open task. Ties on CreatedAt
// break on ID so the choice is stable.
func CurrentTask(tasks []domain.Task) (domain.Task, bool) {
	var (
		best  domain.Task
		found bool
	)
	for _, t := range tasks {
		if t.Status.IsTerminal() {
			continue
		}
		if !found || t.CreatedAt.After(best.CreatedAt) || (t.CreatedAt.Equal(best.CreatedAt) && t.ID > best.ID) {
			best, found = t, true
		}
	}
	return best, found
}

// StatusOf projects a machine status. The stop signal wins over task state.
func StatusOf(m domain.Machine, task *domain.Task) domain.MachineStatus {
	if m.Stopped {
		return domain.MachineStopped
	}
	if task == nil {
		return domain.MachineIdle
	}
	switch task.Status {
	case domain.StatusInProgress:
		return domain.MachineRunning
	case domain.StatusPaused:
		return domain.MachinePaused
	default:
		return domain.MachineIdle
	}
}
