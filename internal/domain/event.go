package domain

import "time"

type EventType string

const (
	EventPrepStart    EventType = "prep_start"
	EventPrepEnd      EventType = "prep_end"
	EventWorkStart    EventType = "work_start"
	EventWorkPause    EventType = "work_pause"
	EventWorkResume   EventType = "work_resume"
	EventWorkComplete EventType = "work_complete"
)

func (e EventType) Valid() bool {
	switch e {
	case EventPrepStart, EventPrepEnd, EventWorkStart, EventWorkPause, EventWorkResume, EventWorkComplete:
		return true
	default:
		return false
	}
}

// StartsClock reports whether the event opens a new active-time interval.
func (e EventType) StartsClock() bool {
	return e == EventPrepStart || e == EventWorkStart || e == EventWorkResume
}

type PauseReason string

const (
	PauseBreak            PauseReason = "break"
	PauseEquipmentFailure PauseReason = "equipment_failure"
	PauseMaterialShortage PauseReason = "material_shortage"
	PauseRestroom         PauseReason = "restroom"
	PausePrayer           PauseReason = "prayer"
	PauseMeal             PauseReason = "meal"
)

// PauseReasons lists the fixed vocabulary in display order.
var PauseReasons = []PauseReason{
	PauseBreak,
	PauseEquipmentFailure,
	PauseMaterialShortage,
	PauseRestroom,
	PausePrayer,
	PauseMeal,
}

func (r PauseReason) Valid() bool {
	for _, known := range PauseReasons {
		if r == known {
			return true
		}
	}
	return false
}

// WorkEvent is an immutable fact in a task's history.
type WorkEvent struct {
	ID                string
	TaskID            string
	WorkerID          string
	MachineID         string
	Type              EventType
	Timestamp         time.Time
	PauseReason       PauseReason // work_pause only
	QuantityCompleted int         // work_complete only
	Notes             string
}
