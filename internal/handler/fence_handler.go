package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/04rishabhgupta/ST-Homer/internal/models"
	"github.com/04rishabhgupta/ST-Homer/internal/service"
)

type FenceHandler struct {
	service *service.FenceService
	logger  *zap.Logger
}

func NewFenceHandler(service *service.FenceService, logger *zap.Logger) *FenceHandler {
	return &FenceHandler{
		service: service,
		logger:  logger,
	}
}

func (h *FenceHandler) CreateFence(w http.ResponseWriter, r *http.Request) {
	var req models.CreateFenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fence, err := h.service.Create(&req)
	if err != nil {
		h.logger.Warn("Fence rejected", zap.Error(err))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, fence)
}

func (h *FenceHandler) GetFences(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("id"); id != "" {
		fence, err := h.service.Get(id)
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "fence not found")
			return
		}
		if err != nil {
			h.logger.Error("Failed to get fence", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to get fence")
			return
		}
		writeJSON(w, http.StatusOK, fence)
		return
	}

	fences, err := h.service.List()
	if err != nil {
		h.logger.Error("Failed to list fences", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list fences")
		return
	}
	if fences == nil {
		fences = []models.PolygonFence{}
	}
	writeJSON(w, http.StatusOK, fences)
}

func (h *FenceHandler) UpdateFence(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id parameter")
		return
	}

	var req models.CreateFenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fence, err := h.service.Update(id, &req)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "fence not found")
		return
	}
	if err != nil {
		h.logger.Warn("Fence update rejected", zap.Error(err))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, fence)
}

func (h *FenceHandler) DeleteFence(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id parameter")
		return
	}

	err := h.service.Delete(id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "fence not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to delete fence", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete fence")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
