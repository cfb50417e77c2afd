package handler

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/04rishabhgupta/ST-Homer/internal/alerts"
	"github.com/04rishabhgupta/ST-Homer/internal/models"
	"github.com/04rishabhgupta/ST-Homer/internal/service"
)

type AlertHandler struct {
	history *alerts.History
	monitor *service.MonitorService
	logger  *zap.Logger
}

func NewAlertHandler(history *alerts.History, monitor *service.MonitorService, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{
		history: history,
		monitor: monitor,
		logger:  logger,
	}
}

func (h *AlertHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	list := h.history.List()
	if list == nil {
		list = []models.ZoneAlert{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AlertHandler) ClearAlert(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id parameter")
		return
	}

	if !h.monitor.ClearAlert(id) {
		writeError(w, http.StatusNotFound, "alert not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AlertHandler) ClearAllAlerts(w http.ResponseWriter, r *http.Request) {
	h.monitor.ClearAllAlerts()
	w.WriteHeader(http.StatusNoContent)
}

func (h *AlertHandler) ExportAlerts(w http.ResponseWriter, r *http.Request) {
	filename := fmt.Sprintf("alerts-export-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.history.WriteCSV(w); err != nil {
		h.logger.Error("Failed to export alerts", zap.Error(err))
	}
}
