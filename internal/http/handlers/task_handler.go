package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"shopfloor-tracker/internal/domain"
	"shopfloor-tracker/internal/http/dto"
	"shopfloor-tracker/internal/service"
	"shopfloor-tracker/internal/store"
)

type TaskService interface {
	AssignTask(ctx context.Context, id domain.Identity, in service.AssignInput) (domain.Task, error)
	ClaimTask(ctx context.Context, id domain.Identity, taskID string) (domain.Task, error)
	RecordEvent(ctx context.Context, id domain.Identity, in service.EventInput) (domain.Task, error)
	WithdrawTask(ctx context.Context, id domain.Identity, taskID string) (domain.Task, error)
	GetTask(ctx context.Context, id domain.Identity, taskID string) (service.TaskView, error)
	TaskEvents(ctx context.Context, id domain.Identity, taskID string) ([]domain.WorkEvent, error)
	ListTasks(ctx context.Context, id domain.Identity, f store.TaskFilter) ([]domain.Task, error)
	WorkerTasks(ctx context.Context, id domain.Identity, workerID string) ([]domain.Task, error)
}

type TaskHandler struct {
	taskService TaskService
	logger      *log.Logger
}

func New(taskService TaskService, logger *log.Logger) *TaskHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &TaskHandler{taskService: taskService, logger: logger}
}

// POST /tasks
func (h *TaskHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req dto.AssignTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())

		return
	}

	task, err := h.taskService.AssignTask(r.Context(), identity(r), service.AssignInput{
		WorkOrderID: req.WorkOrderID,
		MachineID:   req.MachineID,
		Quantity:    req.Quantity,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.FromTask(task))
}

// GET /tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.TaskFilter{
		MachineID:   q.Get("machine_id"),
		WorkerID:    q.Get("worker_id"),
		WorkOrderID: q.Get("work_order_id"),
	}
	for _, raw := range q["status"] {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				f.Statuses = append(f.Statuses, domain.TaskStatus(s))
			}
		}
	}

	tasks, err := h.taskService.ListTasks(r.Context(), identity(r), f)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FromTasks(tasks))
}

// GET /tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.taskService.GetTask(r.Context(), identity(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TaskDetailResponse{
		TaskResponse: dto.FromTask(view.Task),
		Clock:        dto.FromClock(view.Clock),
		Events:       dto.FromEvents(view.Events),
	})
}

// POST /tasks/{id}/claim
func (h *TaskHandler) Claim(w http.ResponseWriter, r *http.Request) {
	task, err := h.taskService.ClaimTask(r.Context(), identity(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FromTask(task))
}

// POST /tasks/{id}/events
func (h *TaskHandler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())

		return
	}

	task, err := h.taskService.RecordEvent(r.Context(), identity(r), service.EventInput{
		TaskID:            r.PathValue("id"),
		Type:              domain.EventType(req.Type),
		PauseReason:       domain.PauseReason(req.PauseReason),
		QuantityCompleted: req.QuantityCompleted,
		Notes:             req.Notes,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.FromTask(task))
}

// GET /tasks/{id}/events
func (h *TaskHandler) Events(w http.ResponseWriter, r *http.Request) {
	events, err := h.taskService.TaskEvents(r.Context(), identity(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FromEvents(events))
}

// POST /tasks/{id}/withdraw
func (h *TaskHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	task, err := h.taskService.WithdrawTask(r.Context(), identity(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FromTask(task))
}

// GET /workers/{id}/tasks
func (h *TaskHandler) WorkerTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskService.WorkerTasks(r.Context(), identity(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FromTasks(tasks))
}
