package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/04rishabhgupta/ST-Homer/internal/models"
	"github.com/04rishabhgupta/ST-Homer/internal/repository"
)

type SettingsHandler struct {
	repo   *repository.SettingsRepository
	logger *zap.Logger
}

func NewSettingsHandler(repo *repository.SettingsRepository, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		repo:   repo,
		logger: logger,
	}
}

func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.repo.Load()
	if err != nil {
		h.logger.Error("Failed to load settings", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// UpdateSettings applies a partial update on top of the stored settings.
// The monitor picks up new values on its next tick.
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings, err := h.repo.Load()
	if err != nil {
		h.logger.Error("Failed to load settings", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	applyUpdate(&settings, &req)

	if err := h.repo.Save(settings); err != nil {
		h.logger.Error("Failed to save settings", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) ResetSettings(w http.ResponseWriter, r *http.Request) {
	settings := models.DefaultSettings()
	if err := h.repo.Save(settings); err != nil {
		h.logger.Error("Failed to reset settings", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to reset settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func applyUpdate(settings *models.Settings, req *models.UpdateSettingsRequest) {
	if req.DeviceTimeoutSeconds != nil {
		settings.DeviceTimeoutSeconds = *req.DeviceTimeoutSeconds
	}
	if req.OutOfZoneAlertDelaySeconds != nil {
		settings.OutOfZoneAlertDelaySeconds = *req.OutOfZoneAlertDelaySeconds
	}
	if req.BreakDurationValue != nil {
		settings.BreakDurationValue = *req.BreakDurationValue
	}
	if req.BreakDurationUnit != nil {
		settings.BreakDurationUnit = *req.BreakDurationUnit
	}
	if req.AutoRefreshIntervalSeconds != nil {
		settings.AutoRefreshIntervalSeconds = *req.AutoRefreshIntervalSeconds
	}
	if req.DefaultMapZoom != nil {
		settings.DefaultMapZoom = *req.DefaultMapZoom
	}
	if req.ShowOfflineDevices != nil {
		settings.ShowOfflineDevices = *req.ShowOfflineDevices
	}
}
