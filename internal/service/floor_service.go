package service

import (
	"context"
	"fmt"
	"time"

	"shopfloor-tracker/internal/domain"
	"shopfloor-tracker/internal/live"
	"shopfloor-tracker/internal/report"
	"shopfloor-tracker/internal/store"
)

// FloorService serves the live board, machine signals and reports.
type FloorService struct {
	store store.Store
	now   func() time.Time
}

func NewFloor(st store.Store) (*FloorService, error) {
	if st == nil {
		return nil, ErrStoreNil
	}
	return &FloorService{store: st, now: func() time.Time { return time.Now().UTC() }}, nil
}

// LiveStatus reads one snapshot and projects every machine as of now.
func (s *FloorService) LiveStatus(ctx context.Context, id domain.Identity) ([]live.Entry, error) {
	if err := authorize(id, capView); err != nil {
		return nil, err
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return live.Build(snap, s.now()), nil
}

func (s *FloorService) snapshot(ctx context.Context) (live.Snapshot, error) {
	machines, err := s.store.ListMachines(ctx)
	if err != nil {
		return live.Snapshot{}, err
	}
	tasks, err := s.store.ListTasks(ctx, store.TaskFilter{Statuses: store.OpenStatuses})
	if err != nil {
		return live.Snapshot{}, err
	}
	workers, err := s.store.ListWorkers(ctx)
	if err != nil {
		return live.Snapshot{}, err
	}
	orders, err := s.store.ListWorkOrders(ctx)
	if err != nil {
		return live.Snapshot{}, err
	}

	snap := live.Snapshot{
		Machines:   machines,
		Tasks:      tasks,
		Workers:    make(map[string]domain.Worker, len(workers)),
		WorkOrders: make(map[string]domain.WorkOrder, len(orders)),
		Events:     make(map[string][]domain.WorkEvent, len(tasks)),
	}
	for _, w := range workers {
		snap.Workers[w.ID] = w
	}
	for _, wo := range orders {
		snap.WorkOrders[wo.ID] = wo
	}
	for _, t := range tasks {
		events, err := s.store.ListEvents(ctx, t.ID)
		if err != nil {
			return live.Snapshot{}, err
		}
		snap.Events[t.ID] = events
	}
	return snap, nil
}

func (s *FloorService) SetMachineStopped(ctx context.Context, id domain.Identity, machineID string, stopped bool) (domain.Machine, error) {
	if err := authorize(id, capManageTasks); err != nil {
		return domain.Machine{}, err
	}
	if err := parseID("machine", machineID); err != nil {
		return domain.Machine{}, err
	}
	return s.store.SetMachineStopped(ctx, machineID, stopped)
}

// Report folds every event with a timestamp in [start, end].
func (s *FloorService) Report(ctx context.Context, id domain.Identity, start, end time.Time) (report.Summary, error) {
	if err := authorize(id, capReports); err != nil {
		return report.Summary{}, err
	}
	if end.Before(start) {
		return report.Summary{}, fmt.Errorf("%w: end %s before start %s", ErrInvalidInput, end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	events, err := s.store.ListEventsBetween(ctx, start, end)
	if err != nil {
		return report.Summary{}, err
	}
	return report.Summarize(events, start, end), nil
}

func (s *FloorService) DailyReport(ctx context.Context, id domain.Identity, day time.Time) (report.Summary, error) {
	start, end := report.DayRange(day)
	return s.Report(ctx, id, start, end)
}

// WeeklyReport covers whole days from the first to the last date.
func (s *FloorService) WeeklyReport(ctx context.Context, id domain.Identity, from, to time.Time) (report.Summary, error) {
	start, end := report.DaysRange(from, to)
	return s.Report(ctx, id, start, end)
}

func (s *FloorService) WorkerPerformance(ctx context.Context, id domain.Identity, workerID string, from, to time.Time) (report.Performance, error) {
	if err := authorize(id, capReports); err != nil {
		return report.Performance{}, err
	}
	if err := parseID("worker", workerID); err != nil {
		return report.Performance{}, err
	}
	start, end := report.DaysRange(from, to)
	if end.Before(start) {
		return report.Performance{}, fmt.Errorf("%w: end date before start date", ErrInvalidInput)
	}
	if _, err := s.store.GetWorker(ctx, workerID); err != nil {
		return report.Performance{}, err
	}

	events, err := s.store.ListEventsBetween(ctx, start, end)
	if err != nil {
		return report.Performance{}, err
	}
	return report.WorkerPerformance(workerID, events, start, end), nil
}
