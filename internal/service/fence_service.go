package service

import (
	"fmt"

	"github.com/04rishabhgupta/ST-Homer/internal/models"
	"github.com/04rishabhgupta/ST-Homer/internal/repository"
)

// FenceService validates and stores polygon fences.
type FenceService struct {
	repo *repository.FenceRepository
}

func NewFenceService(repo *repository.FenceRepository) *FenceService {
	return &FenceService{repo: repo}
}

func (s *FenceService) Create(req *models.CreateFenceRequest) (*models.PolygonFence, error) {
	if err := validateFence(req); err != nil {
		return nil, err
	}
	return s.repo.Create(req)
}

func (s *FenceService) Update(id string, req *models.CreateFenceRequest) (*models.PolygonFence, error) {
	if err := validateFence(req); err != nil {
		return nil, err
	}
	return s.repo.Update(id, req)
}

func (s *FenceService) Get(id string) (*models.PolygonFence, error) {
	return s.repo.GetByID(id)
}

func (s *FenceService) List() ([]models.PolygonFence, error) {
	return s.repo.List()
}

func (s *FenceService) Delete(id string) error {
	return s.repo.Delete(id)
}

func validateFence(req *models.CreateFenceRequest) error {
	if req.Name == "" {
		return fmt.Errorf("fence name is required")
	}
	if len(req.Coordinates) < 3 {
		return fmt.Errorf("fence needs at least 3 vertices, got %d", len(req.Coordinates))
	}
	for i, v := range req.Coordinates {
		if v.Lat < -90 || v.Lat > 90 || v.Lng < -180 || v.Lng > 180 {
			return fmt.Errorf("vertex %d out of range: %+v", i, v)
		}
	}
	if !validClock(req.ShiftStart) || !validClock(req.ShiftEnd) {
		return fmt.Errorf("shift times must be HH:MM, got %q-%q", req.ShiftStart, req.ShiftEnd)
	}
	return nil
}

func validClock(clock string) bool {
	var hours, minutes int
	if _, err := fmt.Sscanf(clock, "%d:%d", &hours, &minutes); err != nil {
		return false
	}
	return hours >= 0 && hours <= 23 && minutes >= 0 && minutes <= 59
}
