package service

import (
	"fmt"

	"github.com/google/uuid"

	"shopfloor-tracker/internal/domain"
)

type capability int

const (
	capRecordWork capability = iota
	capManageTasks
	capView
	capReports
)

var capabilityNames = map[capability]string{
	capRecordWork:  "record work",
	capManageTasks: "manage tasks",
	capView:        "view floor",
	capReports:     "read reports",
}

var grants = map[domain.Role][]capability{
	domain.RoleAdmin:      {capManageTasks, capView, capReports},
	domain.RoleSupervisor: {capManageTasks, capView},
	domain.RoleWorker:     {capRecordWork, capView},
}

// authorize is the single gate every operation passes through.
func authorize(id domain.Identity, c capability) error {
	if !id.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrForbidden, id.Role)
	}
	for _, g := range grants[id.Role] {
		if g == c {
			return nil
		}
	}
	return fmt.Errorf("%w: %s cannot %s", ErrForbidden, id.Role, capabilityNames[c])
}

// authorizeWorkerView lets workers look only at their own tasks.
func authorizeWorkerView(id domain.Identity, workerID string) error {
	if err := authorize(id, capView); err != nil {
		return err
	}
	if id.Role == domain.RoleWorker && id.WorkerID != workerID {
		return fmt.Errorf("%w: workers may only list their own tasks", ErrForbidden)
	}
	return nil
}

func parseID(kind, raw string) error {
	if _, err := uuid.Parse(raw); err != nil {
		return fmt.Errorf("%w: %s %q", ErrInvalidID, kind, raw)
	}
	return nil
}
