package handler

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/04rishabhgupta/ST-Homer/internal/auth"
	"github.com/04rishabhgupta/ST-Homer/internal/service"
)

type MonitorHandler struct {
	monitor *service.MonitorService
	logger  *zap.Logger
}

func NewMonitorHandler(monitor *service.MonitorService, logger *zap.Logger) *MonitorHandler {
	return &MonitorHandler{
		monitor: monitor,
		logger:  logger,
	}
}

func (h *MonitorHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.monitor.Refresh()
	w.WriteHeader(http.StatusAccepted)
}

func (h *MonitorHandler) SetAutoRefresh(w http.ResponseWriter, r *http.Request) {
	enabled, err := strconv.ParseBool(r.URL.Query().Get("enabled"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "enabled parameter must be true or false")
		return
	}
	h.monitor.SetAutoRefresh(enabled)
	w.WriteHeader(http.StatusNoContent)
}

type workerStatusResponse struct {
	WorkerID    string `json:"workerId"`
	Verdict     string `json:"verdict"`
	FenceID     string `json:"fenceId,omitempty"`
	FenceName   string `json:"fenceName,omitempty"`
	WithinShift bool   `json:"withinShift"`
}

// GetWorkerStatus reports a worker's current compliance. Workers always get
// their own status; managers may select any worker with ?workerId=.
func (h *MonitorHandler) GetWorkerStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	workerID := user.DeviceID
	if user.Role == auth.RoleManager {
		workerID = r.URL.Query().Get("workerId")
		if workerID == "" {
			writeError(w, http.StatusBadRequest, "missing workerId parameter")
			return
		}
	}

	obs, err := h.monitor.WorkerStatus(workerID)
	if err != nil {
		h.logger.Error("Failed to evaluate worker", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to evaluate worker")
		return
	}

	resp := workerStatusResponse{
		WorkerID:    workerID,
		Verdict:     string(obs.Verdict),
		WithinShift: obs.WithinShift,
	}
	if obs.Fence != nil {
		resp.FenceID = obs.Fence.ID
		resp.FenceName = obs.Fence.Name
	}
	writeJSON(w, http.StatusOK, resp)
}
