package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fintrackhq/fintrack/internal/models"
	"github.com/google/uuid"
)

// CreateImportJob persists a new import job with status pending and returns
// its generated id
func (r *Repository) CreateImportJob(ctx context.Context, userID int64, sourceName string) (string, error) {
	jobID := uuid.NewString()
	query := `
		INSERT INTO import_jobs (id, user_id, source_name, status, created_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)`
	_, err := r.db.ExecContext(ctx, query, jobID, userID, sourceName, models.ImportJobPending)
	if err != nil {
		return "", fmt.Errorf("failed to create import job: %w", err)
	}
	return jobID, nil
}

// SetImportJobStatus moves a job to a terminal status. failureReason is
// stored only for failed jobs.
func (r *Repository) SetImportJobStatus(ctx context.Context, jobID, status, failureReason string) error {
	query := `
		UPDATE import_jobs
		SET status = $2, failure_reason = NULLIF($3, '')
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, jobID, status, failureReason)
	if err != nil {
		return fmt.Errorf("failed to update import job: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("import job %s: %w", jobID, ErrNotFound)
	}
	return nil
}

// FindImportJob retrieves one of the user's import jobs. Lookups are scoped
// to the owner, so a foreign job reads the same as a missing one.
func (r *Repository) FindImportJob(ctx context.Context, userID int64, jobID string) (*models.ImportJob, error) {
	job := &models.ImportJob{}
	query := `
		SELECT id, user_id, source_name, status, COALESCE(failure_reason, ''), created_at
		FROM import_jobs
		WHERE id = $1 AND user_id = $2`
	err := r.db.QueryRowContext(ctx, query, jobID, userID).
		Scan(&job.ID, &job.UserID, &job.SourceName, &job.Status, &job.FailureReason, &job.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("import job %s: %w", jobID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find import job: %w", err)
	}
	return job, nil
}
