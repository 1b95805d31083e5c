package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrAlreadyClaimed     = errors.New("task already claimed")
	ErrWorkerBusy         = errors.New("worker already holds an open task")
	ErrInvalidPauseReason = errors.New("invalid pause reason")
	ErrInvalidQuantity    = errors.New("invalid completion quantity")
)

// TransitionError carries the task state a rejected operation was checked against.
type TransitionError struct {
	Kind  error
	From  TaskStatus
	Event EventType
	Msg   string
}

func (e *TransitionError) Error() string {
	if e == nil {
		return ""
	}
	s := e.Kind.Error()
	if e.Event != "" {
		s = fmt.Sprintf("%s: %s from %s", s, e.Event, e.From)
	} else if e.From != "" {
		s = fmt.Sprintf("%s: task is %s", s, e.From)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

func (e *TransitionError) Unwrap() error { return e.Kind }
