package api

import (
	"encoding/json"
	"net/http"
)

// StatusHandler serves /api/status.
type StatusHandler struct {
	status     func() any
	setEnabled func(bool)
}

type setEnabledRequest struct {
	Enabled *bool `json:"enabled"`
}

// NewStatusHandler creates a StatusHandler. status returns a JSON-encodable
// view of the application; setEnabled toggles gesture processing.
func NewStatusHandler(status func() any, setEnabled func(bool)) *StatusHandler {
	return &StatusHandler{status: status, setEnabled: setEnabled}
}

// ServeHTTP returns the status on GET. POST {"enabled": bool} toggles
// gesture processing and returns the new status.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.status())
	case http.MethodPost:
		var req setEnabledRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "enabled is required")
			return
		}
		h.setEnabled(*req.Enabled)
		writeJSON(w, http.StatusOK, h.status())
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
