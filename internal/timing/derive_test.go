package timing

import (
	"testing"
	"time"

	"shopfloor-tracker/internal/domain"
)

var t0 = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func at(typ domain.EventType, sec int) domain.WorkEvent {
	return domain.WorkEvent{TaskID: "t1", Type: typ, Timestamp: t0.Add(time.Duration(sec) * time.Second)}
}

func TestDerive_Scenario(t *testing.T) {
	events := []domain.WorkEvent{at(domain.EventPrepStart, 0)}

	c := Derive(events, domain.StatusPreparation, t0.Add(45*time.Second))
	if c.Phase != PhasePreparation || c.ActiveElapsedSeconds != 45 {
		t.Fatalf("Derive(prep)=%+v, want preparation/45", c)
	}

	events = append(events, at(domain.EventWorkStart, 60))
	c = Derive(events, domain.StatusInProgress, t0.Add(90*time.Second))
	if c.Phase != PhaseProduction || c.ActiveElapsedSeconds != 30 || c.PauseElapsedSeconds != 0 {
		t.Fatalf("Derive(in_progress)=%+v, want production/30/0", c)
	}

	pause := at(domain.EventWorkPause, 90)
	pause.PauseReason = domain.PauseBreak
	events = append(events, pause)
	c = Derive(events, domain.StatusPaused, t0.Add(150*time.Second))
	if c.Phase != PhasePause || c.PauseElapsedSeconds != 60 || c.ActiveElapsedSeconds != 0 {
		t.Fatalf("Derive(paused)=%+v, want pause/0/60", c)
	}

	events = append(events, at(domain.EventWorkResume, 150))
	c = Derive(events, domain.StatusInProgress, t0.Add(150*time.Second))
	if c.ActiveElapsedSeconds != 0 {
		t.Fatalf("Derive(resumed)=%+v, want active reset to 0", c)
	}
	c = Derive(events, domain.StatusInProgress, t0.Add(165*time.Second))
	if c.ActiveElapsedSeconds != 15 {
		t.Fatalf("Derive(resumed+15s).Active=%d, want 15", c.ActiveElapsedSeconds)
	}
	if !c.Since.Equal(t0.Add(150 * time.Second)) {
		t.Fatalf("Derive().Since=%s, want resume timestamp", c.Since)
	}
}

func TestDerive_PrepEndDoesNotRestartClock(t *testing.T) {
	events := []domain.WorkEvent{at(domain.EventPrepStart, 0), at(domain.EventPrepEnd, 100)}

	c := Derive(events, domain.StatusPreparation, t0.Add(120*time.Second))
	if c.ActiveElapsedSeconds != 120 {
		t.Fatalf("Derive().Active=%d, want 120", c.ActiveElapsedSeconds)
	}
}

func TestDerive_NoClockForIdleStates(t *testing.T) {
	events := []domain.WorkEvent{at(domain.EventPrepStart, 0), at(domain.EventWorkStart, 10)}

	for _, status := range []domain.TaskStatus{domain.StatusAssigned, domain.StatusCompleted, domain.StatusCancelled} {
		c := Derive(events, status, t0.Add(time.Hour))
		if c != (Clock{}) {
			t.Fatalf("Derive(%s)=%+v, want zero clock", status, c)
		}
	}
}

func TestDerive_FloorsAndClamps(t *testing.T) {
	events := []domain.WorkEvent{at(domain.EventPrepStart, 0), at(domain.EventWorkStart, 10)}

	c := Derive(events, domain.StatusInProgress, t0.Add(10*time.Second+999*time.Millisecond))
	if c.ActiveElapsedSeconds != 0 {
		t.Fatalf("Derive().Active=%d, want 0 (floored)", c.ActiveElapsedSeconds)
	}

	c = Derive(events, domain.StatusInProgress, t0)
	if c.ActiveElapsedSeconds != 0 {
		t.Fatalf("Derive(now before start).Active=%d, want 0", c.ActiveElapsedSeconds)
	}
}

func TestDerive_Deterministic(t *testing.T) {
	pause := at(domain.EventWorkPause, 30)
	pause.PauseReason = domain.PauseMeal
	events := []domain.WorkEvent{at(domain.EventPrepStart, 0), at(domain.EventWorkStart, 10), pause}
	now := t0.Add(5 * time.Minute)

	first := Derive(events, domain.StatusPaused, now)
	for i := 0; i < 100; i++ {
		if got := Derive(events, domain.StatusPaused, now); got != first {
			t.Fatalf("Derive() run %d=%+v, want %+v", i, got, first)
		}
	}
}

func TestIntervals(t *testing.T) {
	pause := at(domain.EventWorkPause, 200)
	pause.PauseReason = domain.PauseEquipmentFailure
	events := []domain.WorkEvent{
		at(domain.EventPrepStart, 0),
		at(domain.EventPrepEnd, 50),
		at(domain.EventWorkStart, 60),
		pause,
		at(domain.EventWorkResume, 260),
		at(domain.EventWorkComplete, 400),
	}

	got := Intervals(events)
	want := []struct {
		kind   IntervalKind
		reason domain.PauseReason
		secs   int
	}{
		{IntervalPrep, "", 50},
		{IntervalWork, "", 140},
		{IntervalPause, domain.PauseEquipmentFailure, 60},
		{IntervalWork, "", 140},
	}
	if len(got) != len(want) {
		t.Fatalf("Intervals() len=%d, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].Kind != w.kind || got[i].Reason != w.reason || got[i].Duration() != time.Duration(w.secs)*time.Second {
			t.Fatalf("Intervals()[%d]=%+v, want %s/%q/%ds", i, got[i], w.kind, w.reason, w.secs)
		}
	}
}

func TestIntervals_PrepClosedByWorkStartAndOpenSpanDropped(t *testing.T) {
	events := []domain.WorkEvent{at(domain.EventPrepStart, 0), at(domain.EventWorkStart, 30)}

	got := Intervals(events)
	if len(got) != 1 || got[0].Kind != IntervalPrep || got[0].Duration() != 30*time.Second {
		t.Fatalf("Intervals()=%+v, want one 30s prep span", got)
	}
}
