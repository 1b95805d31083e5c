package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"shopfloor-tracker/internal/domain"
	"shopfloor-tracker/internal/http/dto"
	"shopfloor-tracker/internal/service"
)

const (
	HeaderWorkerID = "X-Worker-ID"
	HeaderRole     = "X-Role"
)

// identity trusts the headers set by the auth proxy in front of the server.
func identity(r *http.Request) domain.Identity {
	return domain.Identity{
		WorkerID: r.Header.Get(HeaderWorkerID),
		Role:     domain.Role(r.Header.Get(HeaderRole)),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, dto.ErrorResponse{Error: msg})
}

var errorCodes = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{domain.ErrAlreadyClaimed, http.StatusConflict, "already_claimed"},
	{domain.ErrWorkerBusy, http.StatusConflict, "worker_busy"},
	{domain.ErrInvalidPauseReason, http.StatusBadRequest, "invalid_pause_reason"},
	{domain.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
	{service.ErrInvalidID, http.StatusBadRequest, "invalid_id"},
	{service.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{service.ErrNotFound, http.StatusNotFound, "not_found"},
	{service.ErrForbidden, http.StatusForbidden, "forbidden"},
}

// writeServiceError maps a service error onto a status code. Unknown errors
// are logged and hidden from the caller.
func writeServiceError(w http.ResponseWriter, logger *log.Logger, err error) {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			writeJSON(w, ec.status, dto.ErrorResponse{Error: err.Error(), Code: ec.code})
			return
		}
	}
	logger.Printf("[http] internal error: %v", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
