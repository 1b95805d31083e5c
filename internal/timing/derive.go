// Package timing derives running clocks from a task's event history.
//
// Every function here is pure: the same events, status and now always give
// the same answer, so any number of viewers can recompute it independently.
package timing

import (
	"time"

	"shopfloor-tracker/internal/domain"
)

type Phase string

const (
	PhaseNone        Phase = ""
	PhasePreparation Phase = "preparation"
	PhaseProduction  Phase = "production"
	PhasePause       Phase = "pause"
)

// PhaseOf maps a task status to its human-facing phase label.
func PhaseOf(status domain.TaskStatus) Phase {
	switch status {
	case domain.StatusPreparation:
		return PhasePreparation
	case domain.StatusInProgress:
		return PhaseProduction
	case domain.StatusPaused:
		return PhasePause
	default:
		return PhaseNone
	}
}

type Clock struct {
	Phase                Phase
	ActiveElapsedSeconds int64
	PauseElapsedSeconds  int64
	// Since is the timestamp the running clock counts from; zero when no clock runs.
	Since time.Time
}

// Derive computes the running clock for a task as of now. Active time is the
// current interval only: every prep_start, work_start or work_resume restarts
// it from zero.
func Derive(events []domain.WorkEvent, status domain.TaskStatus, now time.Time) Clock {
	clock := Clock{Phase: PhaseOf(status)}

	switch status {
	case domain.StatusPreparation, domain.StatusInProgress:
		if start, ok := lastMatching(events, func(t domain.EventType) bool { return t.StartsClock() }); ok {
			clock.Since = start.Timestamp
			clock.ActiveElapsedSeconds = elapsedSeconds(start.Timestamp, now)
		}
	case domain.StatusPaused:
		if pause, ok := lastMatching(events, func(t domain.EventType) bool { return t == domain.EventWorkPause }); ok {
			clock.Since = pause.Timestamp
			clock.PauseElapsedSeconds = elapsedSeconds(pause.Timestamp, now)
		}
	}
	return clock
}

func lastMatching(events []domain.WorkEvent, match func(domain.EventType) bool) (domain.WorkEvent, bool) {
	for i := len(events) - 1; i >= 0; i-- {
		if match(events[i].Type) {
			return events[i], true
		}
	}
	return domain.WorkEvent{}, false
}

// elapsedSeconds floors now-since to whole seconds; clock skew never yields a
// negative value.
func elapsedSeconds(since, now time.Time) int64 {
	d := now.Sub(since)
	if d <= 0 {
		return 0
	}
	return int64(d / time.Second)
}
