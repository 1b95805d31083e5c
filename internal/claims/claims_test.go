package claims

import (
	"errors"
	"testing"

	"shopfloor-tracker/internal/domain"
)

func TestClaim_Unclaimed(t *testing.T) {
	task := domain.Task{ID: "t1", Status: domain.StatusAssigned}

	got, err := Claim(task, "w1", nil)
	if err != nil {
		t.Fatalf("Claim() err=%v, want nil", err)
	}
	if got.CurrentWorkerID != "w1" {
		t.Fatalf("CurrentWorkerID=%q, want w1", got.CurrentWorkerID)
	}
}

func TestClaim_AlreadyClaimed(t *testing.T) {
	cases := map[string]domain.Task{
		"held by other": {ID: "t1", Status: domain.StatusAssigned, CurrentWorkerID: "w2"},
		"held by self":  {ID: "t1", Status: domain.StatusAssigned, CurrentWorkerID: "w1"},
		"not assigned":  {ID: "t1", Status: domain.StatusPreparation},
		"completed":     {ID: "t1", Status: domain.StatusCompleted},
	}
	for name, task := range cases {
		if _, err := Claim(task, "w1", nil); !errors.Is(err, domain.ErrAlreadyClaimed) {
			t.Fatalf("%s: Claim() err=%v, want %v", name, err, domain.ErrAlreadyClaimed)
		}
	}
}

func TestClaim_WorkerBusy(t *testing.T) {
	task := domain.Task{ID: "t1", Status: domain.StatusAssigned}
	held := []domain.Task{{ID: "t2", Status: domain.StatusPaused, CurrentWorkerID: "w1"}}

	if _, err := Claim(task, "w1", held); !errors.Is(err, domain.ErrWorkerBusy) {
		t.Fatalf("Claim() err=%v, want %v", err, domain.ErrWorkerBusy)
	}
}

func TestClaim_IgnoresTerminalAndForeignTasks(t *testing.T) {
	task := domain.Task{ID: "t1", Status: domain.StatusAssigned}
	held := []domain.Task{
		{ID: "t2", Status: domain.StatusCompleted, CurrentWorkerID: "w1"},
		{ID: "t3", Status: domain.StatusInProgress, CurrentWorkerID: "w9"},
	}

	if _, err := Claim(task, "w1", held); err != nil {
		t.Fatalf("Claim() err=%v, want nil", err)
	}
}

func TestCheckHolder(t *testing.T) {
	task := domain.Task{ID: "t1", Status: domain.StatusInProgress, CurrentWorkerID: "w1"}

	if err := CheckHolder(task, "w1"); err != nil {
		t.Fatalf("CheckHolder(holder) err=%v, want nil", err)
	}
	if err := CheckHolder(task, "w2"); !errors.Is(err, domain.ErrAlreadyClaimed) {
		t.Fatalf("CheckHolder(other) err=%v, want %v", err, domain.ErrAlreadyClaimed)
	}
	if err := CheckHolder(Release(task), "w2"); err != nil {
		t.Fatalf("CheckHolder(released) err=%v, want nil", err)
	}
}
