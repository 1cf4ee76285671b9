package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hearthd/hearth-core/internal/schedule"
)

// handleListSchedules returns all schedules.
func (s *Server) handleListSchedules(w http.ResponseWriter, _ *http.Request) {
	schedules := s.controller.ListSchedules()
	writeJSON(w, http.StatusOK, map[string]any{
		"schedules": schedules,
		"count":     len(schedules),
	})
}

// handleGetSchedule returns a single schedule by ID.
func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sched, err := s.controller.GetSchedule(id)
	if err != nil {
		if errors.Is(err, schedule.ErrNotFound) {
			writeNotFound(w, "schedule not found")
			return
		}
		writeInternalError(w, "failed to get schedule")
		return
	}

	writeJSON(w, http.StatusOK, sched)
}

// handleCreateSchedule stores a new schedule.
//
// The body is a full schedule definition (name, trigger, actions, enabled,
// one_shot). Device references in actions are not checked here; resolution
// happens when the schedule fires.
func (s *Server) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	var sched schedule.Schedule
	if err := json.NewDecoder(r.Body).Decode(&sched); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if sched.ID == "" {
		sched.ID = uuid.New().String()
	}

	if err := s.controller.AddSchedule(r.Context(), &sched); err != nil {
		switch {
		case errors.Is(err, schedule.ErrDuplicateID):
			writeConflict(w, "schedule ID already exists")
		case errors.Is(err, schedule.ErrIncomplete),
			errors.Is(err, schedule.ErrInvalidCron),
			errors.Is(err, schedule.ErrInvalidCondition):
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		default:
			writeInternalError(w, "failed to create schedule")
		}
		return
	}

	writeJSON(w, http.StatusCreated, sched)
}

// handleDeleteSchedule removes a schedule by ID.
func (s *Server) handleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.controller.RemoveSchedule(r.Context(), id); err != nil {
		if errors.Is(err, schedule.ErrNotFound) {
			writeNotFound(w, "schedule not found")
			return
		}
		writeInternalError(w, "failed to delete schedule")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleEnableSchedule enables a schedule.
func (s *Server) handleEnableSchedule(w http.ResponseWriter, r *http.Request) {
	s.setScheduleEnabled(w, r, true)
}

// handleDisableSchedule disables a schedule. A run already in progress
// completes; the change applies from the next trigger evaluation.
func (s *Server) handleDisableSchedule(w http.ResponseWriter, r *http.Request) {
	s.setScheduleEnabled(w, r, false)
}

func (s *Server) setScheduleEnabled(w http.ResponseWriter, r *http.Request, enabled bool) {
	id := chi.URLParam(r, "id")

	var err error
	if enabled {
		err = s.controller.EnableSchedule(r.Context(), id)
	} else {
		err = s.controller.DisableSchedule(r.Context(), id)
	}
	if err != nil {
		if errors.Is(err, schedule.ErrNotFound) {
			writeNotFound(w, "schedule not found")
			return
		}
		writeInternalError(w, "failed to update schedule")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":      id,
		"enabled": enabled,
	})
}

// handleListRuns returns the run history for a schedule, newest first.
//
// Query parameters:
//   - limit: maximum number of runs to return (default 50)
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	// Return 404 for unknown schedules rather than an empty history.
	if _, err := s.controller.GetSchedule(id); err != nil {
		if errors.Is(err, schedule.ErrNotFound) {
			writeNotFound(w, "schedule not found")
			return
		}
		writeInternalError(w, "failed to get schedule")
		return
	}

	runs, err := s.controller.ListRuns(r.Context(), id, limit)
	if err != nil {
		writeInternalError(w, "failed to list runs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}
