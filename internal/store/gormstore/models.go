package gormstore

import (
	"time"

	"shopfloor-tracker/internal/domain"
)

type taskRow struct {
	ID                string  `gorm:"primaryKey;size:36"`
	WorkOrderID       string  `gorm:"size:36;not null;index"`
	MachineID         string  `gorm:"size:36;not null;index"`
	ParentTaskID      string  `gorm:"size:36;index"`
	AssignedBy        string  `gorm:"size:36"`
	QuantityAssigned  int     `gorm:"not null"`
	QuantityCompleted int     `gorm:"not null;default:0"`
	Status            string  `gorm:"size:20;not null;index"`
	CurrentWorkerID   *string `gorm:"size:36;uniqueIndex:idx_tasks_holder"` // NULL unless held; one open task per worker
	Version           int64   `gorm:"not null;default:0"`
	CreatedAt         time.Time
	CancelledAt       *time.Time
}

func (taskRow) TableName() string { return "tasks" }

func (r taskRow) toDomain() domain.Task {
	t := domain.Task{
		ID:                r.ID,
		WorkOrderID:       r.WorkOrderID,
		MachineID:         r.MachineID,
		ParentTaskID:      r.ParentTaskID,
		AssignedBy:        r.AssignedBy,
		QuantityAssigned:  r.QuantityAssigned,
		QuantityCompleted: r.QuantityCompleted,
		Status:            domain.TaskStatus(r.Status),
		CreatedAt:         r.CreatedAt.UTC(),
	}
	if r.CurrentWorkerID != nil {
		t.CurrentWorkerID = *r.CurrentWorkerID
	}
	if r.CancelledAt != nil {
		at := r.CancelledAt.UTC()
		t.CancelledAt = &at
	}
	return t
}

func taskRowFrom(t domain.Task) taskRow {
	return taskRow{
		ID:                t.ID,
		WorkOrderID:       t.WorkOrderID,
		MachineID:         t.MachineID,
		ParentTaskID:      t.ParentTaskID,
		AssignedBy:        t.AssignedBy,
		QuantityAssigned:  t.QuantityAssigned,
		QuantityCompleted: t.QuantityCompleted,
		Status:            string(t.Status),
		CurrentWorkerID:   holderColumn(t.CurrentWorkerID),
		CreatedAt:         t.CreatedAt.UTC(),
		CancelledAt:       t.CancelledAt,
	}
}

func holderColumn(workerID string) *string {
	if workerID == "" {
		return nil
	}
	return &workerID
}

// eventRow is append-only; Seq orders events that share a timestamp.
type eventRow struct {
	Seq               int64     `gorm:"primaryKey;autoIncrement"`
	EventID           string    `gorm:"size:36;not null;uniqueIndex"`
	TaskID            string    `gorm:"size:36;not null;index:idx_events_task_seq,priority:1"`
	WorkerID          string    `gorm:"size:36;index"`
	MachineID         string    `gorm:"size:36"`
	Type              string    `gorm:"size:20;not null"`
	Timestamp         time.Time `gorm:"not null;index"`
	PauseReason       string    `gorm:"size:32"`
	QuantityCompleted int
	Notes             string `gorm:"type:text"`
}

func (eventRow) TableName() string { return "work_events" }

func (r eventRow) toDomain() domain.WorkEvent {
	return domain.WorkEvent{
		ID:                r.EventID,
		TaskID:            r.TaskID,
		WorkerID:          r.WorkerID,
		MachineID:         r.MachineID,
		Type:              domain.EventType(r.Type),
		Timestamp:         r.Timestamp.UTC(),
		PauseReason:       domain.PauseReason(r.PauseReason),
		QuantityCompleted: r.QuantityCompleted,
		Notes:             r.Notes,
	}
}

func eventRowFrom(e domain.WorkEvent) eventRow {
	return eventRow{
		EventID:           e.ID,
		TaskID:            e.TaskID,
		WorkerID:          e.WorkerID,
		MachineID:         e.MachineID,
		Type:              string(e.Type),
		Timestamp:         e.Timestamp.UTC(),
		PauseReason:       string(e.PauseReason),
		QuantityCompleted: e.QuantityCompleted,
		Notes:             e.Notes,
	}
}

type machineRow struct {
	ID        string `gorm:"primaryKey;size:36"`
	Code      string `gorm:"size:64;not null;uniqueIndex"`
	Name      string `gorm:"size:256;not null"`
	Stopped   bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
}

func (machineRow) TableName() string { return "machines" }

func (r machineRow) toDomain() domain.Machine {
	return domain.Machine{ID: r.ID, Code: r.Code, Name: r.Name, Stopped: r.Stopped, CreatedAt: r.CreatedAt.UTC()}
}

type workOrderRow struct {
	ID          string `gorm:"primaryKey;size:36"`
	OrderNo     string `gorm:"size:64;not null;index"`
	PartName    string `gorm:"size:256;not null"`
	Quantity    int    `gorm:"not null"`
	Description string `gorm:"type:text"`
	Status      string `gorm:"size:20;not null"`
	CreatedBy   string `gorm:"size:36"`
	CreatedAt   time.Time
}

func (workOrderRow) TableName() string { return "work_orders" }

func (r workOrderRow) toDomain() domain.WorkOrder {
	return domain.WorkOrder{
		ID:          r.ID,
		OrderNo:     r.OrderNo,
		PartName:    r.PartName,
		Quantity:    r.Quantity,
		Description: r.Description,
		Status:      domain.WorkOrderStatus(r.Status),
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

type workerRow struct {
	ID        string `gorm:"primaryKey;size:36"`
	Username  string `gorm:"size:64;not null;uniqueIndex"`
	FullName  string `gorm:"size:256"`
	Role      string `gorm:"size:20;not null"`
	CreatedAt time.Time
}

func (workerRow) TableName() string { return "workers" }

func (r workerRow) toDomain() domain.Worker {
	return domain.Worker{ID: r.ID, Username: r.Username, FullName: r.FullName, Role: domain.Role(r.Role), CreatedAt: r.CreatedAt.UTC()}
}
