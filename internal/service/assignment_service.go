package service

import (
	"fmt"

	"github.com/04rishabhgupta/ST-Homer/internal/models"
	"github.com/04rishabhgupta/ST-Homer/internal/repository"
)

// AssignmentService validates and stores worker assignments.
type AssignmentService struct {
	repo *repository.AssignmentRepository
}

func NewAssignmentService(repo *repository.AssignmentRepository) *AssignmentService {
	return &AssignmentService{repo: repo}
}

// Assign binds a worker to a fence, replacing any prior assignment.
func (s *AssignmentService) Assign(req *models.AssignWorkerRequest) (*models.WorkerAssignment, error) {
	if req.WorkerID == "" {
		return nil, fmt.Errorf("worker id is required")
	}
	if req.FenceID == "" {
		return nil, fmt.Errorf("fence id is required")
	}
	return s.repo.Assign(req)
}

func (s *AssignmentService) GetByWorker(workerID string) (*models.WorkerAssignment, error) {
	return s.repo.GetByWorker(workerID)
}

func (s *AssignmentService) List() ([]models.WorkerAssignment, error) {
	return s.repo.List()
}

func (s *AssignmentService) Unassign(workerID string) error {
	return s.repo.Unassign(workerID)
}
