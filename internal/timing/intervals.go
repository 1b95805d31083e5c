package timing

import (
	"time"

	"shopfloor-tracker/internal/domain"
)

type IntervalKind string

const (
	IntervalPrep  IntervalKind = "prep"
	IntervalWork  IntervalKind = "work"
	IntervalPause IntervalKind = "pause"
)

// Interval is a closed span between two consecutive events of one task.
type Interval struct {
	TaskID string
	Kind   IntervalKind
	Reason domain.PauseReason // pause intervals only
	Start  time.Time
	End    time.Time
}

func (i Interval) Duration() time.Duration {
	if i.End.Before(i.Start) {
		return 0
	}
	return i.End.Sub(i.Start)
}

// Intervals pairs the ordered history of a single task into prep, work and
// pause spans. Spans still open at the end of the history are dropped.
//
// prep runs from prep_start to prep_end (or work_start when prep_end was
// skipped), work from work_start/work_resume to work_pause/work_complete,
// pause from work_pause to work_resume.
func Intervals(events []domain.WorkEvent) []Interval {
	var (
		out  []Interval
		open *Interval
	)

	closeKind := func(kind IntervalKind, at time.Time) {
		if open == nil || open.Kind != kind {
			return
		}
		open.End = at
		out = append(out, *open)
		open = nil
	}
	start := func(ev domain.WorkEvent, kind IntervalKind) {
		open = &Interval{TaskID: ev.TaskID, Kind: kind, Start: ev.Timestamp}
		if kind == IntervalPause {
			open.Reason = ev.PauseReason
		}
	}

	for _, ev := range events {
		switch ev.Type {
		case domain.EventPrepStart:
			start(ev, IntervalPrep)
		case domain.EventPrepEnd:
			closeKind(IntervalPrep, ev.Timestamp)
		case domain.EventWorkStart:
			closeKind(IntervalPrep, ev.Timestamp)
			start(ev, IntervalWork)
		case domain.EventWorkPause:
			closeKind(IntervalWork, ev.Timestamp)
			start(ev, IntervalPause)
		case domain.EventWorkResume:
			closeKind(IntervalPause, ev.Timestamp)
			start(ev, IntervalWork)
		case domain.EventWorkComplete:
			closeKind(IntervalWork, ev.Timestamp)
		}
	}
	return out
}
