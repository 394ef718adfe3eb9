package repository

import (
	"context"
	"time"

	"discovery-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DiscoveryJobRepository handles database operations for discovery jobs
type DiscoveryJobRepository struct {
	db *pgxpool.Pool
}

// NewDiscoveryJobRepository creates a new discovery job repository
func NewDiscoveryJobRepository(db *pgxpool.Pool) *DiscoveryJobRepository {
	return &DiscoveryJobRepository{db: db}
}

const discoveryJobColumns = `id, case_id, status, current_step, steps, failures, error_message,
			created_at, updated_at, completed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDiscoveryJob(row rowScanner) (*models.DiscoveryJob, error) {
	job := &models.DiscoveryJob{}
	err := row.Scan(
		&job.ID,
		&job.CaseID,
		&job.Status,
		&job.CurrentStep,
		&job.Steps,
		&job.Failures,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
		&job.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	if job.Steps == nil {
		job.Steps = make(models.JobSteps, 0)
	}
	if job.Failures == nil {
		job.Failures = make(models.PairFailures, 0)
	}

	return job, nil
}

// Create creates a new discovery job
func (r *DiscoveryJobRepository) Create(ctx context.Context, job *models.DiscoveryJob) error {
	query := `
		INSERT INTO discovery_jobs (
			id, case_id, status, current_step, steps, failures, error_message
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}

	return r.db.QueryRow(
		ctx, query,
		job.ID,
		job.CaseID,
		job.Status,
		job.CurrentStep,
		job.Steps,
		job.Failures,
		job.ErrorMessage,
	).Scan(&job.CreatedAt, &job.UpdatedAt)
}

// GetByID retrieves a discovery job by ID
func (r *DiscoveryJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.DiscoveryJob, error) {
	query := `SELECT ` + discoveryJobColumns + `
		FROM discovery_jobs
		WHERE id = $1`

	return scanDiscoveryJob(r.db.QueryRow(ctx, query, id))
}

// GetLatestByCaseID retrieves the most recent discovery job for a case
func (r *DiscoveryJobRepository) GetLatestByCaseID(ctx context.Context, caseID uuid.UUID) (*models.DiscoveryJob, error) {
	query := `SELECT ` + discoveryJobColumns + `
		FROM discovery_jobs
		WHERE case_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	return scanDiscoveryJob(r.db.QueryRow(ctx, query, caseID))
}

// UpdateStatus updates the status of a discovery job
func (r *DiscoveryJobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.DiscoveryJobStatus) error {
	query := `
		UPDATE discovery_jobs SET
			status = $2,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, status)
	return err
}

// UpdateProgress updates the step list of a discovery job
func (r *DiscoveryJobRepository) UpdateProgress(ctx context.Context, id uuid.UUID, currentStep string, steps models.JobSteps) error {
	query := `
		UPDATE discovery_jobs SET
			current_step = $2,
			steps = $3,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, currentStep, steps)
	return err
}

// RecordFailures stores the (pair, profile) failures of a run
func (r *DiscoveryJobRepository) RecordFailures(ctx context.Context, id uuid.UUID, failures models.PairFailures) error {
	query := `
		UPDATE discovery_jobs SET
			failures = $2,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, failures)
	return err
}

// Complete marks a discovery job as completed
func (r *DiscoveryJobRepository) Complete(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	query := `
		UPDATE discovery_jobs SET
			status = $2,
			completed_at = $3,
			updated_at = $3
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, models.JobStatusCompleted, now)
	return err
}

// Fail marks a discovery job as failed
func (r *DiscoveryJobRepository) Fail(ctx context.Context, id uuid.UUID, errorMessage string) error {
	query := `
		UPDATE discovery_jobs SET
			status = $2,
			error_message = $3,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, models.JobStatusFailed, errorMessage)
	return err
}
