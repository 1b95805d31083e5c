package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"shopfloor-tracker/internal/domain"
	"shopfloor-tracker/internal/http/dto"
	"shopfloor-tracker/internal/live"
	"shopfloor-tracker/internal/report"
	"shopfloor-tracker/internal/service"
)

const dateLayout = "2006-01-02"

type FloorService interface {
	LiveStatus(ctx context.Context, id domain.Identity) ([]live.Entry, error)
	SetMachineStopped(ctx context.Context, id domain.Identity, machineID string, stopped bool) (domain.Machine, error)
	Report(ctx context.Context, id domain.Identity, start, end time.Time) (report.Summary, error)
	DailyReport(ctx context.Context, id domain.Identity, day time.Time) (report.Summary, error)
	WeeklyReport(ctx context.Context, id domain.Identity, from, to time.Time) (report.Summary, error)
	WorkerPerformance(ctx context.Context, id domain.Identity, workerID string, from, to time.Time) (report.Performance, error)
}

type FloorHandler struct {
	floorService FloorService
	logger       *log.Logger
	now          func() time.Time
}

func NewFloor(floorService FloorService, logger *log.Logger) *FloorHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &FloorHandler{floorService: floorService, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// GET /live
func (h *FloorHandler) Live(w http.ResponseWriter, r *http.Request) {
	at := h.now()
	entries, err := h.floorService.LiveStatus(r.Context(), identity(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FromLive(entries, at))
}

// POST /machines/{id}/stop
func (h *FloorHandler) Stop(w http.ResponseWriter, r *http.Request) {
	h.setStopped(w, r, true)
}

// POST /machines/{id}/start
func (h *FloorHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.setStopped(w, r, false)
}

func (h *FloorHandler) setStopped(w http.ResponseWriter, r *http.Request, stopped bool) {
	m, err := h.floorService.SetMachineStopped(r.Context(), identity(r), r.PathValue("id"), stopped)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FromMachine(m))
}

// GET /reports?start=&end=
func (h *FloorHandler) Report(w http.ResponseWriter, r *http.Request) {
	start, err := parseQueryTime(r, "start", time.RFC3339)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	end, err := parseQueryTime(r, "end", time.RFC3339)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	summary, err := h.floorService.Report(r.Context(), identity(r), start, end)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FromSummary(summary))
}

// GET /reports/daily?date=
func (h *FloorHandler) Daily(w http.ResponseWriter, r *http.Request) {
	day, err := parseQueryTime(r, "date", dateLayout)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	summary, err := h.floorService.DailyReport(r.Context(), identity(r), day)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FromSummary(summary))
}

// GET /reports/weekly?start_date=&end_date=
func (h *FloorHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	summary, err := h.floorService.WeeklyReport(r.Context(), identity(r), from, to)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FromSummary(summary))
}

// GET /reports/workers/{id}?start_date=&end_date=
func (h *FloorHandler) WorkerPerformance(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	perf, err := h.floorService.WorkerPerformance(r.Context(), identity(r), r.PathValue("id"), from, to)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FromPerformance(perf))
}

func parseQueryTime(r *http.Request, key, layout string) (time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: missing %s", service.ErrInvalidInput, key)
	}
	t, err := time.Parse(layout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", service.ErrInvalidInput, key, err)
	}
	return t, nil
}

func parseDateRange(r *http.Request) (time.Time, time.Time, error) {
	from, err := parseQueryTime(r, "start_date", dateLayout)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseQueryTime(r, "end_date", dateLayout)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}
