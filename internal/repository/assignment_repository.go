package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/04rishabhgupta/ST-Homer/internal/models"
)

type AssignmentRepository struct {
	db *sql.DB
}

func NewAssignmentRepository(db *sql.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Assign binds a worker to a fence, replacing any existing assignment for
// that worker. Last write wins; the at-most-one-per-worker invariant is
// enforced here.
func (r *AssignmentRepository) Assign(req *models.AssignWorkerRequest) (*models.WorkerAssignment, error) {
	assignment := &models.WorkerAssignment{
		ID:       uuid.NewString(),
		WorkerID: req.WorkerID,
		FenceID:  req.FenceID,
		JobLabel: req.JobLabel,
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM assignments WHERE worker_id = ?`, req.WorkerID); err != nil {
		return nil, fmt.Errorf("failed to replace assignment: %w", err)
	}
	query := `
		INSERT INTO assignments (id, worker_id, fence_id, job_label)
		VALUES (?, ?, ?, ?)
	`
	if _, err := tx.Exec(query, assignment.ID, assignment.WorkerID, assignment.FenceID, assignment.JobLabel); err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit assignment: %w", err)
	}
	return assignment, nil
}

// GetByWorker returns the worker's assignment, or sql.ErrNoRows.
func (r *AssignmentRepository) GetByWorker(workerID string) (*models.WorkerAssignment, error) {
	query := `
		SELECT id, worker_id, fence_id, job_label
		FROM assignments
		WHERE worker_id = ?
	`
	var assignment models.WorkerAssignment
	err := r.db.QueryRow(query, workerID).Scan(
		&assignment.ID,
		&assignment.WorkerID,
		&assignment.FenceID,
		&assignment.JobLabel,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return &assignment, nil
}

// List returns all assignments.
func (r *AssignmentRepository) List() ([]models.WorkerAssignment, error) {
	query := `
		SELECT id, worker_id, fence_id, job_label
		FROM assignments
		ORDER BY created_at
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []models.WorkerAssignment
	for rows.Next() {
		var assignment models.WorkerAssignment
		err := rows.Scan(
			&assignment.ID,
			&assignment.WorkerID,
			&assignment.FenceID,
			&assignment.JobLabel,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignments: %w", err)
	}
	return assignments, nil
}

// Unassign removes a worker's assignment by worker id.
func (r *AssignmentRepository) Unassign(workerID string) error {
	result, err := r.db.Exec(`DELETE FROM assignments WHERE worker_id = ?`, workerID)
	if err != nil {
		return fmt.Errorf("failed to unassign worker: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to unassign worker: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
