// Package lifecycle is the task state machine. A task's status is always the
// fold of its ordered event history; nothing else may advance it.
package lifecycle

import (
	"fmt"
	"time"

	"shopfloor-tracker/internal/claims"
	"shopfloor-tracker/internal/domain"
)

// Next returns the status reached by applying ev in status from.
func Next(from domain.TaskStatus, ev domain.EventType) (domain.TaskStatus, error) {
	if to, ok := nextStatus(from, ev); ok {
		return to, nil
	}
	return "", &domain.TransitionError{Kind: domain.ErrInvalidTransition, From: from, Event: ev}
}

func nextStatus(from domain.TaskStatus, ev domain.EventType) (domain.TaskStatus, bool) {
	switch from {
	case domain.StatusAssigned:
		if ev == domain.EventPrepStart {
			return domain.StatusPreparation, true
		}
	case domain.StatusPreparation:
		switch ev {
		case domain.EventPrepEnd:
			return domain.StatusPreparation, true
		case domain.EventWorkStart:
			return domain.StatusInProgress, true
		}
	case domain.StatusInProgress:
		switch ev {
		case domain.EventWorkPause:
			return domain.StatusPaused, true
		case domain.EventWorkComplete:
			return domain.StatusCompleted, true
		}
	case domain.StatusPaused:
		if ev == domain.EventWorkResume {
			return domain.StatusInProgress, true
		}
	}
	return "", false
}

// Fold replays events from the assigned state.
func Fold(events []domain.WorkEvent) (domain.TaskStatus, error) {
	status := domain.StatusAssigned
	for i, ev := range events {
		if i > 0 && ev.Timestamp.Before(events[i-1].Timestamp) {
			return "", &domain.TransitionError{Kind: domain.ErrInvalidTransition, From: status, Event: ev.Type, Msg: fmt.Sprintf("event %d is out of order", i)}
		}
		next, err := Next(status, ev.Type)
		if err != nil {
			return "", err
		}
		status = next
	}
	return status, nil
}

// Status is the authoritative current status of task. Withdrawal is not an
// event, so a cancelled task overrides the fold.
func Status(task domain.Task, history []domain.WorkEvent) (domain.TaskStatus, error) {
	if task.CancelledAt != nil {
		return domain.StatusCancelled, nil
	}
	return Fold(history)
}

// Append validates ev as the next entry of history and returns task as it
// stands once ev is committed. held lists open tasks bound to ev.WorkerID and
// is only consulted when ev claims the task.
func Append(task domain.Task, history []domain.WorkEvent, ev domain.WorkEvent, held []domain.Task) (domain.Task, error) {
	current, err := Status(task, history)
	if err != nil {
		return domain.Task{}, fmt.Errorf("replay task %s: %w", task.ID, err)
	}
	task.Status = current

	next, err := Next(current, ev.Type)
	if err != nil {
		return domain.Task{}, err
	}
	if n := len(history); n > 0 && ev.Timestamp.Before(history[n-1].Timestamp) {
		return domain.Task{}, &domain.TransitionError{Kind: domain.ErrInvalidTransition, From: current, Event: ev.Type, Msg: "timestamp precedes last event"}
	}
	if err := ValidatePayload(task, ev); err != nil {
		return domain.Task{}, err
	}

	if err := claims.CheckHolder(task, ev.WorkerID); err != nil {
		return domain.Task{}, err
	}
	if ev.Type == domain.EventPrepStart && !task.Claimed() {
		if task, err = claims.Claim(task, ev.WorkerID, held); err != nil {
			return domain.Task{}, err
		}
	}

	task.Status = next
	if ev.Type == domain.EventWorkComplete {
		task.QuantityCompleted = ev.QuantityCompleted
		task = claims.Release(task)
	}
	return task, nil
}

// ValidatePayload checks the fields that only some event types may carry.
func ValidatePayload(task domain.Task, ev domain.WorkEvent) error {
	if ev.Type == domain.EventWorkPause {
		if !ev.PauseReason.Valid() {
			return fmt.Errorf("%w: %q", domain.ErrInvalidPauseReason, ev.PauseReason)
		}
	} else if ev.PauseReason != "" {
		return fmt.Errorf("%w: %s carries no pause reason", domain.ErrInvalidPauseReason, ev.Type)
	}

	if ev.Type == domain.EventWorkComplete {
		if ev.QuantityCompleted < 1 || ev.QuantityCompleted > task.QuantityAssigned {
			return fmt.Errorf("%w: %d not in [1, %d]", domain.ErrInvalidQuantity, ev.QuantityCompleted, task.QuantityAssigned)
		}
	} else if ev.QuantityCompleted != 0 {
		return fmt.Errorf("%w: %s carries no quantity", domain.ErrInvalidQuantity, ev.Type)
	}
	return nil
}

// Withdraw cancels an open task at the given time and releases its holder.
func Withdraw(task domain.Task, history []domain.WorkEvent, at time.Time) (domain.Task, error) {
	current, err := Status(task, history)
	if err != nil {
		return domain.Task{}, fmt.Errorf("replay task %s: %w", task.ID, err)
	}
	if current.IsTerminal() {
		return domain.Task{}, &domain.TransitionError{Kind: domain.ErrInvalidTransition, From: current, Msg: "cannot withdraw"}
	}
	task.Status = domain.StatusCancelled
	task.CancelledAt = &at
	return claims.Release(task), nil
}
