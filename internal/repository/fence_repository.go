package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/04rishabhgupta/ST-Homer/internal/models"
)

type FenceRepository struct {
	db *sql.DB
}

func NewFenceRepository(db *sql.DB) *FenceRepository {
	return &FenceRepository{db: db}
}

// Create stores a new fence under a fresh id.
func (r *FenceRepository) Create(req *models.CreateFenceRequest) (*models.PolygonFence, error) {
	coordinates, err := json.Marshal(req.Coordinates)
	if err != nil {
		return nil, fmt.Errorf("failed to encode coordinates: %w", err)
	}

	fence := &models.PolygonFence{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Coordinates: req.Coordinates,
		Color:       req.Color,
		ShiftStart:  req.ShiftStart,
		ShiftEnd:    req.ShiftEnd,
	}

	query := `
		INSERT INTO fences (id, name, coordinates, color, shift_start, shift_end)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := r.db.Exec(query, fence.ID, fence.Name, string(coordinates), fence.Color, fence.ShiftStart, fence.ShiftEnd); err != nil {
		return nil, fmt.Errorf("failed to create fence: %w", err)
	}

	return fence, nil
}

// Update replaces the full field set of an existing fence.
func (r *FenceRepository) Update(id string, req *models.CreateFenceRequest) (*models.PolygonFence, error) {
	coordinates, err := json.Marshal(req.Coordinates)
	if err != nil {
		return nil, fmt.Errorf("failed to encode coordinates: %w", err)
	}

	query := `
		UPDATE fences
		SET name = ?, coordinates = ?, color = ?, shift_start = ?, shift_end = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	result, err := r.db.Exec(query, req.Name, string(coordinates), req.Color, req.ShiftStart, req.ShiftEnd, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update fence: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to update fence: %w", err)
	}
	if affected == 0 {
		return nil, sql.ErrNoRows
	}

	return &models.PolygonFence{
		ID:          id,
		Name:        req.Name,
		Coordinates: req.Coordinates,
		Color:       req.Color,
		ShiftStart:  req.ShiftStart,
		ShiftEnd:    req.ShiftEnd,
	}, nil
}

// GetByID looks up one fence. Returns sql.ErrNoRows when absent.
func (r *FenceRepository) GetByID(id string) (*models.PolygonFence, error) {
	query := `
		SELECT id, name, coordinates, color, shift_start, shift_end
		FROM fences
		WHERE id = ?
	`
	return scanFence(r.db.QueryRow(query, id))
}

// List returns all fences in creation order.
func (r *FenceRepository) List() ([]models.PolygonFence, error) {
	query := `
		SELECT id, name, coordinates, color, shift_start, shift_end
		FROM fences
		ORDER BY created_at
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query fences: %w", err)
	}
	defer rows.Close()

	var fences []models.PolygonFence
	for rows.Next() {
		fence, err := scanFence(rows)
		if err != nil {
			return nil, err
		}
		fences = append(fences, *fence)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fences: %w", err)
	}
	return fences, nil
}

// Delete removes a fence by id. Dependent assignments are left in place;
// the evaluator treats their dangling fence reference as non-evaluable.
func (r *FenceRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM fences WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete fence: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete fence: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFence(row rowScanner) (*models.PolygonFence, error) {
	var fence models.PolygonFence
	var coordinates string
	err := row.Scan(&fence.ID, &fence.Name, &coordinates, &fence.Color, &fence.ShiftStart, &fence.ShiftEnd)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan fence: %w", err)
	}
	if err := json.Unmarshal([]byte(coordinates), &fence.Coordinates); err != nil {
		return nil, fmt.Errorf("failed to decode coordinates: %w", err)
	}
	return &fence, nil
}
