package dto

import (
	"time"

	"shopfloor-tracker/internal/domain"
	"shopfloor-tracker/internal/live"
	"shopfloor-tracker/internal/report"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type MachineResponse struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	Stopped bool   `json:"stopped"`
}

type WorkerResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type WorkOrderResponse struct {
	ID       string `json:"id"`
	OrderNo  string `json:"order_no"`
	PartName string `json:"part_name"`
	Quantity int    `json:"quantity"`
	Status   string `json:"status"`
}

// LiveEntryResponse is one machine row of GET /live.
type LiveEntryResponse struct {
	Machine              MachineResponse    `json:"machine"`
	Status               string             `json:"status"`
	Task                 *TaskResponse      `json:"task,omitempty"`
	Worker               *WorkerResponse    `json:"worker,omitempty"`
	WorkOrder            *WorkOrderResponse `json:"work_order,omitempty"`
	Phase                string             `json:"phase"`
	ActiveElapsedSeconds int64              `json:"active_elapsed_seconds"`
	PauseElapsedSeconds  int64              `json:"pause_elapsed_seconds"`
}

type LiveResponse struct {
	GeneratedAt time.Time           `json:"generated_at"`
	Machines    []LiveEntryResponse `json:"machines"`
}

type ReportResponse struct {
	Start                time.Time       `json:"start"`
	End                  time.Time       `json:"end"`
	TotalEvents          int             `json:"total_events"`
	TotalProduction      int             `json:"total_production"`
	PauseReasonHistogram map[string]int  `json:"pause_reason_histogram"`
	Events               []EventResponse `json:"events"`
}

type PerformanceResponse struct {
	WorkerID             string           `json:"worker_id"`
	Start                time.Time        `json:"start"`
	End                  time.Time        `json:"end"`
	TotalProduction      int              `json:"total_production"`
	PrepSeconds          int64            `json:"prep_seconds"`
	WorkSeconds          int64            `json:"work_seconds"`
	PauseSeconds         int64            `json:"pause_seconds"`
	PauseSecondsByReason map[string]int64 `json:"pause_seconds_by_reason"`
	Events               []EventResponse  `json:"events"`
}

func FromMachine(m domain.Machine) MachineResponse {
	return MachineResponse{ID: m.ID, Code: m.Code, Name: m.Name, Stopped: m.Stopped}
}

func FromLive(entries []live.Entry, at time.Time) LiveResponse {
	out := LiveResponse{GeneratedAt: at, Machines: make([]LiveEntryResponse, 0, len(entries))}
	for _, e := range entries {
		row := LiveEntryResponse{
			Machine:              FromMachine(e.Machine),
			Status:               string(e.Status),
			Phase:                string(e.Clock.Phase),
			ActiveElapsedSeconds: e.Clock.ActiveElapsedSeconds,
			PauseElapsedSeconds:  e.Clock.PauseElapsedSeconds,
		}
		if e.Task != nil {
			t := FromTask(*e.Task)
			row.Task = &t
		}
		if e.Worker != nil {
			row.Worker = &WorkerResponse{ID: e.Worker.ID, Username: e.Worker.Username, FullName: e.Worker.FullName, Role: string(e.Worker.Role)}
		}
		if e.WorkOrder != nil {
			row.WorkOrder = &WorkOrderResponse{
				ID:       e.WorkOrder.ID,
				OrderNo:  e.WorkOrder.OrderNo,
				PartName: e.WorkOrder.PartName,
				Quantity: e.WorkOrder.Quantity,
				Status:   string(e.WorkOrder.Status),
			}
		}
		out.Machines = append(out.Machines, row)
	}
	return out
}

func FromSummary(s report.Summary) ReportResponse {
	hist := make(map[string]int, len(s.PauseReasons))
	for reason, n := range s.PauseReasons {
		hist[string(reason)] = n
	}
	return ReportResponse{
		Start:                s.Start,
		End:                  s.End,
		TotalEvents:          s.TotalEvents,
		TotalProduction:      s.TotalProduction,
		PauseReasonHistogram: hist,
		Events:               FromEvents(s.Events),
	}
}

func FromPerformance(p report.Performance) PerformanceResponse {
	byReason := make(map[string]int64, len(p.PauseByReason))
	for reason, d := range p.PauseByReason {
		byReason[string(reason)] = int64(d / time.Second)
	}
	return PerformanceResponse{
		WorkerID:             p.WorkerID,
		Start:                p.Start,
		End:                  p.End,
		TotalProduction:      p.TotalProduction,
		PrepSeconds:          int64(p.PrepTime / time.Second),
		WorkSeconds:          int64(p.WorkTime / time.Second),
		PauseSeconds:         int64(p.PauseTime / time.Second),
		PauseSecondsByReason: byReason,
		Events:               FromEvents(p.Events),
	}
}
