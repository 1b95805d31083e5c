package gormstore

import (
	"context"
	"errors"
	"io"
	"log"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"shopfloor-tracker/internal/domain"
	"shopfloor-tracker/internal/store"
)

var t0 = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func openStore(t *testing.T) *Store {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "floor.db")
	s, err := OpenSQLite(dsn, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("OpenSQLite() err = %v, want nil", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTask(t *testing.T, s *Store, machineID string, qty int) domain.Task {
	t.Helper()

	task, err := s.CreateTask(context.Background(), domain.Task{MachineID: machineID, WorkOrderID: "wo1", QuantityAssigned: qty})
	if err != nil {
		t.Fatalf("CreateTask() err = %v, want nil", err)
	}
	return task
}

func event(taskID, worker string, typ domain.EventType, sec int) domain.WorkEvent {
	return domain.WorkEvent{TaskID: taskID, WorkerID: worker, Type: typ, Timestamp: t0.Add(time.Duration(sec) * time.Second)}
}

func TestStore_CreateAndGet(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	created, err := s.CreateTask(ctx, domain.Task{MachineID: "m1", WorkOrderID: "wo1", QuantityAssigned: 7, CurrentWorkerID: "w9"})
	if err != nil {
		t.Fatalf("CreateTask() err = %v, want nil", err)
	}
	if created.Status != domain.StatusAssigned || created.Claimed() {
		t.Fatalf("CreateTask() = %+v, want assigned and unclaimed", created)
	}

	got, err := s.GetTask(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetTask() err = %v, want nil", err)
	}
	if got.QuantityAssigned != 7 || got.MachineID != "m1" {
		t.Fatalf("GetTask() = %+v", got)
	}

	if _, err := s.GetTask(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("GetTask(missing) err = %v, want %v", err, store.ErrNotFound)
	}
}

func TestStore_AppendEvent_Lifecycle(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	task := newTask(t, s, "m1", 100)

	pause := event(task.ID, "w1", domain.EventWorkPause, 90)
	pause.PauseReason = domain.PauseBreak
	done := event(task.ID, "w1", domain.EventWorkComplete, 300)
	done.QuantityCompleted = 100

	steps := []struct {
		ev   domain.WorkEvent
		want domain.TaskStatus
	}{
		{event(task.ID, "w1", domain.EventPrepStart, 0), domain.StatusPreparation},
		{event(task.ID, "w1", domain.EventWorkStart, 60), domain.StatusInProgress},
		{pause, domain.StatusPaused},
		{event(task.ID, "w1", domain.EventWorkResume, 150), domain.StatusInProgress},
		{done, domain.StatusCompleted},
	}
	for i, step := range steps {
		got, err := s.AppendEvent(ctx, step.ev)
		if err != nil {
			t.Fatalf("step %d AppendEvent(%s) err = %v, want nil", i, step.ev.Type, err)
		}
		if got.Status != step.want {
			t.Fatalf("step %d status = %s, want %s", i, got.Status, step.want)
		}
	}

	final, _ := s.GetTask(ctx, task.ID)
	if final.Claimed() || final.QuantityCompleted != 100 {
		t.Fatalf("final task = %+v, want released with 100 completed", final)
	}

	events, err := s.ListEvents(ctx, task.ID)
	if err != nil {
		t.Fatalf("ListEvents() err = %v", err)
	}
	if len(events) != len(steps) {
		t.Fatalf("ListEvents() len = %d, want %d", len(events), len(steps))
	}
	for i, ev := range events {
		if ev.Type != steps[i].ev.Type || ev.MachineID != "m1" || ev.ID == "" {
			t.Fatalf("event %d = %+v", i, ev)
		}
	}
	if events[2].PauseReason != domain.PauseBreak {
		t.Fatalf("pause reason = %q, want %q", events[2].PauseReason, domain.PauseBreak)
	}
}

func TestStore_AppendEvent_RejectedLeavesLogUnchanged(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	task := newTask(t, s, "m1", 10)

	_, err := s.AppendEvent(ctx, event(task.ID, "w1", domain.EventWorkStart, 0))
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("AppendEvent(work_start) err = %v, want %v", err, domain.ErrInvalidTransition)
	}

	events, _ := s.ListEvents(ctx, task.ID)
	if len(events) != 0 {
		t.Fatalf("ListEvents() len = %d, want 0", len(events))
	}
	got, _ := s.GetTask(ctx, task.ID)
	if got.Status != domain.StatusAssigned {
		t.Fatalf("status = %s, want assigned", got.Status)
	}
}

func TestStore_Claim_WorkerBusy(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	a := newTask(t, s, "m1", 10)
	b := newTask(t, s, "m2", 10)

	if _, err := s.Claim(ctx, a.ID, "w1"); err != nil {
		t.Fatalf("Claim(a) err = %v, want nil", err)
	}
	if _, err := s.Claim(ctx, b.ID, "w1"); !errors.Is(err, domain.ErrWorkerBusy) {
		t.Fatalf("Claim(b) err = %v, want %v", err, domain.ErrWorkerBusy)
	}
	if _, err := s.Claim(ctx, a.ID, "w2"); !errors.Is(err, domain.ErrAlreadyClaimed) {
		t.Fatalf("Claim(a, w2) err = %v, want %v", err, domain.ErrAlreadyClaimed)
	}
}

func TestStore_Claim_Concurrent(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	task := newTask(t, s, "m1", 10)

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(worker string) {
			defer wg.Done()
			if _, err := s.Claim(ctx, task.ID, worker); err == nil {
				wins.Add(1)
			}
		}(string(rune('a' + i)))
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Fatalf("claims won = %d, want 1", wins.Load())
	}
}

func TestStore_Withdraw(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	task := newTask(t, s, "m1", 10)

	if _, err := s.AppendEvent(ctx, event(task.ID, "w1", domain.EventPrepStart, 0)); err != nil {
		t.Fatalf("AppendEvent() err = %v", err)
	}
	got, err := s.Withdraw(ctx, task.ID, t0.Add(time.Minute))
	if err != nil {
		t.Fatalf("Withdraw() err = %v, want nil", err)
	}
	if got.Status != domain.StatusCancelled || got.Claimed() || got.CancelledAt == nil {
		t.Fatalf("Withdraw() = %+v", got)
	}

	// holder is free again
	other := newTask(t, s, "m2", 5)
	if _, err := s.Claim(ctx, other.ID, "w1"); err != nil {
		t.Fatalf("Claim() after withdraw err = %v, want nil", err)
	}
	if _, err := s.Withdraw(ctx, task.ID, t0.Add(2*time.Minute)); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("second Withdraw() err = %v, want %v", err, domain.ErrInvalidTransition)
	}
}

func TestStore_ListEventsBetween(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	a := newTask(t, s, "m1", 10)

	for _, ev := range []domain.WorkEvent{
		event(a.ID, "w1", domain.EventPrepStart, 0),
		event(a.ID, "w1", domain.EventWorkStart, 3600),
	} {
		if _, err := s.AppendEvent(ctx, ev); err != nil {
			t.Fatalf("AppendEvent() err = %v", err)
		}
	}

	got, err := s.ListEventsBetween(ctx, t0, t0.Add(time.Hour))
	if err != nil {
		t.Fatalf("ListEventsBetween() err = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListEventsBetween() len = %d, want 2 (bounds inclusive)", len(got))
	}

	got, _ = s.ListEventsBetween(ctx, t0.Add(time.Second), t0.Add(time.Hour-time.Second))
	if len(got) != 0 {
		t.Fatalf("ListEventsBetween(inner) len = %d, want 0", len(got))
	}
}

func TestStore_Catalog(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	m, err := s.CreateMachine(ctx, domain.Machine{Code: "CNC-01", Name: "Lathe"})
	if err != nil {
		t.Fatalf("CreateMachine() err = %v", err)
	}
	if _, err := s.CreateMachine(ctx, domain.Machine{Code: "CNC-01", Name: "dup"}); err == nil {
		t.Fatal("CreateMachine(duplicate code) err = nil, want error")
	}
	stopped, err := s.SetMachineStopped(ctx, m.ID, true)
	if err != nil || !stopped.Stopped {
		t.Fatalf("SetMachineStopped() = %+v, %v", stopped, err)
	}

	wo, err := s.CreateWorkOrder(ctx, domain.WorkOrder{OrderNo: "WO-1", PartName: "shaft", Quantity: 50})
	if err != nil || wo.Status != domain.WorkOrderPending {
		t.Fatalf("CreateWorkOrder() = %+v, %v", wo, err)
	}
	wo, err = s.SetWorkOrderStatus(ctx, wo.ID, domain.WorkOrderInProgress)
	if err != nil || wo.Status != domain.WorkOrderInProgress {
		t.Fatalf("SetWorkOrderStatus() = %+v, %v", wo, err)
	}

	w, err := s.CreateWorker(ctx, domain.Worker{Username: "ali", Role: domain.RoleWorker})
	if err != nil {
		t.Fatalf("CreateWorker() err = %v", err)
	}
	got, err := s.GetWorker(ctx, w.ID)
	if err != nil || got.Username != "ali" {
		t.Fatalf("GetWorker() = %+v, %v", got, err)
	}
	if _, err := s.GetMachine(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("GetMachine(missing) err = %v, want %v", err, store.ErrNotFound)
	}
}
