// Package report folds historical work events into production summaries.
package report

import (
	"sort"
	"time"

	"shopfloor-tracker/internal/domain"
	"shopfloor-tracker/internal/timing"
)

type Summary struct {
	Start           time.Time
	End             time.Time
	TotalEvents     int
	TotalProduction int
	PauseReasons    map[domain.PauseReason]int
	Events          []domain.WorkEvent
}

// Summarize folds the events whose timestamp lies in [start, end]. Events
// outside the range are ignored, so callers may pass a superset.
func Summarize(events []domain.WorkEvent, start, end time.Time) Summary {
	s := Summary{
		Start:        start,
		End:          end,
		PauseReasons: make(map[domain.PauseReason]int),
		Events:       make([]domain.WorkEvent, 0, len(events)),
	}
	for _, ev := range inRange(events, start, end) {
		s.TotalEvents++
		s.Events = append(s.Events, ev)
		switch ev.Type {
		case domain.EventWorkComplete:
			s.TotalProduction += ev.QuantityCompleted
		case domain.EventWorkPause:
			s.PauseReasons[ev.PauseReason]++
		}
	}
	return s
}

// Performance is one worker's time split over a range.
type Performance struct {
	WorkerID        string
	Start           time.Time
	End             time.Time
	TotalProduction int
	PrepTime        time.Duration
	WorkTime        time.Duration
	PauseTime       time.Duration
	PauseByReason   map[domain.PauseReason]time.Duration
	Events          []domain.WorkEvent
}

// WorkerPerformance pairs the worker's in-range events per task into prep,
// work and pause spans. Spans whose closing event falls outside the range are
// not counted.
func WorkerPerformance(workerID string, events []domain.WorkEvent, start, end time.Time) Performance {
	p := Performance{
		WorkerID:      workerID,
		Start:         start,
		End:           end,
		PauseByReason: make(map[domain.PauseReason]time.Duration, len(domain.PauseReasons)),
		Events:        make([]domain.WorkEvent, 0),
	}
	for _, r := range domain.PauseReasons {
		p.PauseByReason[r] = 0
	}

	byTask := make(map[string][]domain.WorkEvent)
	var order []string
	for _, ev := range inRange(events, start, end) {
		if ev.WorkerID != workerID {
			continue
		}
		p.Events = append(p.Events, ev)
		if ev.Type == domain.EventWorkComplete {
			p.TotalProduction += ev.QuantityCompleted
		}
		if _, seen := byTask[ev.TaskID]; !seen {
			order = append(order, ev.TaskID)
		}
		byTask[ev.TaskID] = append(byTask[ev.TaskID], ev)
	}

	for _, id := range order {
		for _, iv := range timing.Intervals(byTask[id]) {
			switch iv.Kind {
			case timing.IntervalPrep:
				p.PrepTime += iv.Duration()
			case timing.IntervalWork:
				p.WorkTime += iv.Duration()
			case timing.IntervalPause:
				p.PauseTime += iv.Duration()
				p.PauseByReason[iv.Reason] += iv.Duration()
			}
		}
	}
	return p
}

func inRange(events []domain.WorkEvent, start, end time.Time) []domain.WorkEvent {
	out := make([]domain.WorkEvent, 0, len(events))
	for _, ev := range events {
		if ev.Timestamp.Before(start) || ev.Timestamp.After(end) {
			continue
		}
		out = append(out, ev)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

// DayRange covers one calendar day in day's location.
func DayRange(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// DaysRange covers whole days from the first to the last date inclusive.
func DaysRange(from, to time.Time) (time.Time, time.Time) {
	start, _ := DayRange(from)
	_, end := DayRange(to)
	return start, end
}
