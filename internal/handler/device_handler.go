package handler

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/04rishabhgupta/ST-Homer/internal/models"
	"github.com/04rishabhgupta/ST-Homer/internal/service"
)

// HistoryFetcher retrieves stored readings for one device from the feed.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, deviceID string) ([]models.LocationSample, error)
}

type DeviceHandler struct {
	monitor *service.MonitorService
	feed    HistoryFetcher
	logger  *zap.Logger
}

func NewDeviceHandler(monitor *service.MonitorService, feed HistoryFetcher, logger *zap.Logger) *DeviceHandler {
	return &DeviceHandler{
		monitor: monitor,
		feed:    feed,
		logger:  logger,
	}
}

type deviceListResponse struct {
	Devices   []models.DeviceStatus `json:"devices"`
	FeedError string                `json:"feedError,omitempty"`
}

func (h *DeviceHandler) GetDevices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, deviceListResponse{
		Devices:   h.monitor.DeviceStatuses(),
		FeedError: h.monitor.LastError(),
	})
}

func (h *DeviceHandler) GetDeviceHistory(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("device_id")
	if deviceID == "" {
		writeError(w, http.StatusBadRequest, "missing device_id parameter")
		return
	}

	history, err := h.feed.FetchHistory(r.Context(), deviceID)
	if err != nil {
		h.logger.Error("Failed to fetch device history",
			zap.String("device_id", deviceID),
			zap.Error(err),
		)
		writeError(w, http.StatusBadGateway, "failed to fetch device history")
		return
	}
	if history == nil {
		history = []models.LocationSample{}
	}
	writeJSON(w, http.StatusOK, history)
}
