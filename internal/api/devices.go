package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hearthd/hearth-core/internal/device"
)

// deviceResponse is the full device representation returned by the API.
type deviceResponse struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Room         string           `json:"room,omitempty"`
	Type         device.Type      `json:"type"`
	Capabilities []device.Command `json:"capabilities"`
	State        device.State     `json:"state"`
}

func newDeviceResponse(dev device.Device) deviceResponse {
	return deviceResponse{
		ID:           dev.ID(),
		Name:         dev.Name(),
		Room:         dev.Room(),
		Type:         dev.Type(),
		Capabilities: dev.Capabilities(),
		State:        dev.State(),
	}
}

// handleListDevices returns all registered devices, with optional query filters.
//
// Query parameters:
//   - room: filter by room
//   - type: filter by device type (light, thermostat, camera, lock)
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices := s.controller.ListDevices()

	room := r.URL.Query().Get("room")
	typeFilter := r.URL.Query().Get("type")
	if room != "" || typeFilter != "" {
		filtered := devices[:0]
		for _, d := range devices {
			if room != "" && d.Room != room {
				continue
			}
			if typeFilter != "" && string(d.Type) != typeFilter {
				continue
			}
			filtered = append(filtered, d)
		}
		devices = filtered
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}

// handleGetDevice returns a single device by ID.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	dev, err := s.controller.GetDevice(id)
	if err != nil {
		if errors.Is(err, device.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		writeInternalError(w, "failed to get device")
		return
	}

	writeJSON(w, http.StatusOK, newDeviceResponse(dev))
}

// handleRegisterDevice creates a device and adds it to the registry.
func (s *Server) handleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	var cfg device.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	dev, err := s.controller.RegisterDevice(r.Context(), cfg)
	if err != nil {
		switch {
		case errors.Is(err, device.ErrDuplicateID):
			writeConflict(w, "device ID already registered")
		case errors.Is(err, device.ErrInvalidConfig), errors.Is(err, device.ErrUnknownType):
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		default:
			writeInternalError(w, "failed to register device")
		}
		return
	}

	writeJSON(w, http.StatusCreated, newDeviceResponse(dev))
}

// handleUnregisterDevice removes a device by ID.
func (s *Server) handleUnregisterDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.controller.UnregisterDevice(r.Context(), id); err != nil {
		if errors.Is(err, device.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		writeInternalError(w, "failed to unregister device")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// deviceCommandRequest is the body for POST /devices/{id}/commands.
type deviceCommandRequest struct {
	Command device.Command `json:"command"`
	Args    device.Args    `json:"args,omitempty"`
}

// handleDispatchCommand validates and applies a command to a device.
// Dispatch is synchronous: the response carries the device state after
// the command was applied.
func (s *Server) handleDispatchCommand(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req deviceCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Command == "" {
		writeBadRequest(w, "command field is required")
		return
	}

	state, err := s.controller.Dispatch(r.Context(), id, req.Command, req.Args)
	if err != nil {
		switch {
		case errors.Is(err, device.ErrNotFound):
			writeNotFound(w, "device not found")
		case errors.Is(err, device.ErrUnsupportedCommand), errors.Is(err, device.ErrInvalidArgs):
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		case errors.Is(err, device.ErrCommandRejected):
			writeConflict(w, err.Error())
		case errors.Is(err, device.ErrSendFailed):
			writeError(w, http.StatusBadGateway, ErrCodeDriver, err.Error())
		default:
			writeInternalError(w, "failed to dispatch command")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"device_id": id,
		"state":     state,
	})
}
