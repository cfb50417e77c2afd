package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/04rishabhgupta/ST-Homer/internal/auth"
	"github.com/04rishabhgupta/ST-Homer/internal/models"
	"github.com/04rishabhgupta/ST-Homer/internal/service"
)

type AssignmentHandler struct {
	service *service.AssignmentService
	logger  *zap.Logger
}

func NewAssignmentHandler(service *service.AssignmentService, logger *zap.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
		logger:  logger,
	}
}

func (h *AssignmentHandler) AssignWorker(w http.ResponseWriter, r *http.Request) {
	var req models.AssignWorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	assignment, err := h.service.Assign(&req)
	if err != nil {
		h.logger.Warn("Assignment rejected", zap.Error(err))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, assignment)
}

// GetAssignments returns one assignment when ?workerId= is given, otherwise
// the full list. Workers are pinned to their own assignment regardless of the
// query.
func (h *AssignmentHandler) GetAssignments(w http.ResponseWriter, r *http.Request) {
	workerID := r.URL.Query().Get("workerId")
	if user, ok := auth.UserFromContext(r.Context()); ok && user.Role == auth.RoleWorker {
		workerID = user.DeviceID
	}

	if workerID != "" {
		assignment, err := h.service.GetByWorker(workerID)
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "worker has no assignment")
			return
		}
		if err != nil {
			h.logger.Error("Failed to get assignment", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to get assignment")
			return
		}
		writeJSON(w, http.StatusOK, assignment)
		return
	}

	assignments, err := h.service.List()
	if err != nil {
		h.logger.Error("Failed to list assignments", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list assignments")
		return
	}
	if assignments == nil {
		assignments = []models.WorkerAssignment{}
	}
	writeJSON(w, http.StatusOK, assignments)
}

func (h *AssignmentHandler) UnassignWorker(w http.ResponseWriter, r *http.Request) {
	workerID := r.URL.Query().Get("workerId")
	if workerID == "" {
		writeError(w, http.StatusBadRequest, "missing workerId parameter")
		return
	}

	err := h.service.Unassign(workerID)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "worker has no assignment")
		return
	}
	if err != nil {
		h.logger.Error("Failed to unassign worker", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to unassign worker")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
