// Package claims enforces exclusive worker occupancy of tasks.
//
// The functions are pure; stores call them inside the same critical section
// (mutex or transaction) that commits the result.
package claims

import (
	"fmt"

	"shopfloor-tracker/internal/domain"
)

// Claim binds workerID to task. held must contain every open task the store
// currently has bound to workerID.
func Claim(task domain.Task, workerID string, held []domain.Task) (domain.Task, error) {
	if task.Status != domain.StatusAssigned || task.Claimed() {
		msg := ""
		if task.Claimed() {
			msg = "held by " + task.CurrentWorkerID
		}
		return domain.Task{}, &domain.TransitionError{Kind: domain.ErrAlreadyClaimed, From: task.Status, Msg: msg}
	}
	for _, h := range held {
		if h.ID == task.ID || h.Status.IsTerminal() || h.CurrentWorkerID != workerID {
			continue
		}
		return domain.Task{}, fmt.Errorf("%w: worker %s holds task %s", domain.ErrWorkerBusy, workerID, h.ID)
	}

	task.CurrentWorkerID = workerID
	return task, nil
}

// CheckHolder rejects actions on a claimed task by anyone but its holder.
func CheckHolder(task domain.Task, workerID string) error {
	if task.Claimed() && task.CurrentWorkerID != workerID {
		return &domain.TransitionError{Kind: domain.ErrAlreadyClaimed, From: task.Status, Msg: "held by " + task.CurrentWorkerID}
	}
	return nil
}

// Release clears the holder. Called on completion and withdrawal.
func Release(task domain.Task) domain.Task {
	task.CurrentWorkerID = ""
	return task
}
