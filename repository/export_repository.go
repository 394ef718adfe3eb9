package repository

import (
	"context"

	"discovery-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ExportRepository handles database operations for discovery exports
type ExportRepository struct {
	db *pgxpool.Pool
}

// NewExportRepository creates a new export repository
func NewExportRepository(db *pgxpool.Pool) *ExportRepository {
	return &ExportRepository{db: db}
}

const exportColumns = `id, case_id, job_id, kind, profile, pair_name, set_count, total,
			filename, mime_type, size, storage_path, created_at`

func scanExport(row rowScanner) (*models.DiscoveryExport, error) {
	e := &models.DiscoveryExport{}
	err := row.Scan(
		&e.ID,
		&e.CaseID,
		&e.JobID,
		&e.Kind,
		&e.Profile,
		&e.PairName,
		&e.SetCount,
		&e.Total,
		&e.Filename,
		&e.MimeType,
		&e.Size,
		&e.StoragePath,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Create creates a new export record, keeping e.ID when the caller set it
func (r *ExportRepository) Create(ctx context.Context, e *models.DiscoveryExport) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}

	query := `
		INSERT INTO discovery_exports (
			id, case_id, job_id, kind, profile, pair_name, set_count, total,
			filename, mime_type, size, storage_path
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`

	return r.db.QueryRow(
		ctx, query,
		e.ID,
		e.CaseID,
		e.JobID,
		e.Kind,
		e.Profile,
		e.PairName,
		e.SetCount,
		e.Total,
		e.Filename,
		e.MimeType,
		e.Size,
		e.StoragePath,
	).Scan(&e.ID, &e.CreatedAt)
}

// GetByID retrieves an export by ID
func (r *ExportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.DiscoveryExport, error) {
	query := `SELECT ` + exportColumns + `
		FROM discovery_exports
		WHERE id = $1`

	return scanExport(r.db.QueryRow(ctx, query, id))
}

// ListByCaseID retrieves all exports for a case, newest job first
func (r *ExportRepository) ListByCaseID(ctx context.Context, caseID uuid.UUID) ([]*models.DiscoveryExport, error) {
	return r.list(ctx, `SELECT `+exportColumns+`
		FROM discovery_exports
		WHERE case_id = $1
		ORDER BY created_at DESC, filename`, caseID)
}

// ListByJobID retrieves all exports written by one job
func (r *ExportRepository) ListByJobID(ctx context.Context, jobID uuid.UUID) ([]*models.DiscoveryExport, error) {
	return r.list(ctx, `SELECT `+exportColumns+`
		FROM discovery_exports
		WHERE job_id = $1
		ORDER BY filename`, jobID)
}

func (r *ExportRepository) list(ctx context.Context, query string, id uuid.UUID) ([]*models.DiscoveryExport, error) {
	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exports []*models.DiscoveryExport
	for rows.Next() {
		e, err := scanExport(rows)
		if err != nil {
			return nil, err
		}
		exports = append(exports, e)
	}

	return exports, rows.Err()
}

// Delete deletes an export record
func (r *ExportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM discovery_exports WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
