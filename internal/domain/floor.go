package domain

import "time"

type MachineStatus string

const (
	MachineIdle    MachineStatus = "idle"
	MachineRunning MachineStatus = "running"
	MachinePaused  MachineStatus = "paused"
	MachineStopped MachineStatus = "stopped"
)

// Machine never stores a status; Stopped is the external maintenance signal.
type Machine struct {
	ID        string
	Code      string
	Name      string
	Stopped   bool
	CreatedAt time.Time
}

type WorkOrderStatus string

const (
	WorkOrderPending    WorkOrderStatus = "pending"
	WorkOrderAssigned   WorkOrderStatus = "assigned"
	WorkOrderInProgress WorkOrderStatus = "in_progress"
	WorkOrderCompleted  WorkOrderStatus = "completed"
	WorkOrderCancelled  WorkOrderStatus = "cancelled"
)

type WorkOrder struct {
	ID          string
	OrderNo     string
	PartName    string
	Quantity    int
	Description string
	Status      WorkOrderStatus
	CreatedBy   string
	CreatedAt   time.Time
}

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleWorker     Role = "worker"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSupervisor || r == RoleWorker
}

type Worker struct {
	ID        string
	Username  string
	FullName  string
	Role      Role
	CreatedAt time.Time
}

// Identity is what the auth collaborator hands the core for each call.
type Identity struct {
	WorkerID string
	Role     Role
}
