package report

import (
	"testing"
	"time"

	"shopfloor-tracker/internal/domain"
)

var t0 = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func mk(task string, typ domain.EventType, min int) domain.WorkEvent {
	return domain.WorkEvent{TaskID: task, WorkerID: "w1", Type: typ, Timestamp: t0.Add(time.Duration(min) * time.Minute)}
}

func pause(task string, reason domain.PauseReason, min int) domain.WorkEvent {
	e := mk(task, domain.EventWorkPause, min)
	e.PauseReason = reason
	return e
}

func complete(task string, qty, min int) domain.WorkEvent {
	e := mk(task, domain.EventWorkComplete, min)
	e.QuantityCompleted = qty
	return e
}

func TestSummarize_HistogramAndProduction(t *testing.T) {
	events := []domain.WorkEvent{
		pause("a", domain.PauseBreak, 1),
		pause("a", domain.PauseBreak, 2),
		pause("b", domain.PauseEquipmentFailure, 3),
		complete("a", 40, 4),
		complete("b", 60, 5),
	}

	s := Summarize(events, t0, t0.Add(time.Hour))
	if s.TotalEvents != 5 {
		t.Fatalf("TotalEvents=%d, want 5", s.TotalEvents)
	}
	if s.TotalProduction != 100 {
		t.Fatalf("TotalProduction=%d, want 100", s.TotalProduction)
	}
	if len(s.PauseReasons) != 2 || s.PauseReasons[domain.PauseBreak] != 2 || s.PauseReasons[domain.PauseEquipmentFailure] != 1 {
		t.Fatalf("PauseReasons=%v, want {break:2 equipment_failure:1}", s.PauseReasons)
	}
	if len(s.Events) != 5 {
		t.Fatalf("Events len=%d, want 5", len(s.Events))
	}
}

func TestSummarize_EmptyRange(t *testing.T) {
	s := Summarize(nil, t0, t0.Add(time.Hour))
	if s.TotalEvents != 0 || s.TotalProduction != 0 || len(s.PauseReasons) != 0 {
		t.Fatalf("Summarize(nil)=%+v, want zeros", s)
	}
	if s.PauseReasons == nil || s.Events == nil {
		t.Fatalf("Summarize(nil) returned nil collections")
	}
}

func TestSummarize_BoundsInclusive(t *testing.T) {
	events := []domain.WorkEvent{
		complete("a", 1, 0),
		complete("b", 2, 30),
		complete("c", 4, 60),
		complete("d", 8, 61),
	}

	s := Summarize(events, t0, t0.Add(time.Hour))
	if s.TotalEvents != 3 || s.TotalProduction != 7 {
		t.Fatalf("Summarize()=%d events/%d produced, want 3/7", s.TotalEvents, s.TotalProduction)
	}
}

func TestWorkerPerformance(t *testing.T) {
	events := []domain.WorkEvent{
		mk("a", domain.EventPrepStart, 0),
		mk("a", domain.EventPrepEnd, 10),
		mk("a", domain.EventWorkStart, 12),
		pause("a", domain.PauseMeal, 42),
		mk("a", domain.EventWorkResume, 72),
		complete("a", 50, 102),
		// other worker
		{TaskID: "z", WorkerID: "w2", Type: domain.EventPrepStart, Timestamp: t0},
	}

	p := WorkerPerformance("w1", events, t0, t0.Add(4*time.Hour))
	if p.TotalProduction != 50 {
		t.Fatalf("TotalProduction=%d, want 50", p.TotalProduction)
	}
	if p.PrepTime != 10*time.Minute {
		t.Fatalf("PrepTime=%s, want 10m", p.PrepTime)
	}
	if p.WorkTime != 60*time.Minute {
		t.Fatalf("WorkTime=%s, want 60m", p.WorkTime)
	}
	if p.PauseTime != 30*time.Minute || p.PauseByReason[domain.PauseMeal] != 30*time.Minute {
		t.Fatalf("PauseTime=%s meal=%s, want 30m/30m", p.PauseTime, p.PauseByReason[domain.PauseMeal])
	}
	if _, ok := p.PauseByReason[domain.PausePrayer]; !ok {
		t.Fatalf("PauseByReason missing zero entry for prayer")
	}
	if len(p.Events) != 6 {
		t.Fatalf("Events len=%d, want 6", len(p.Events))
	}
}

func TestDayRange(t *testing.T) {
	start, end := DayRange(time.Date(2025, 3, 10, 15, 4, 5, 0, time.UTC))
	if !start.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start=%s", start)
	}
	if !end.Equal(time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)) {
		t.Fatalf("end=%s", end)
	}

	start, end = DaysRange(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), time.Date(2025, 3, 16, 9, 0, 0, 0, time.UTC))
	if end.Sub(start) != 7*24*time.Hour-time.Nanosecond {
		t.Fatalf("DaysRange span=%s, want 7 days", end.Sub(start))
	}
}
