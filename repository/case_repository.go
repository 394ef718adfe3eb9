package repository

import (
	"context"
	"fmt"

	"discovery-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CaseRepository handles database operations for cases and their parties
type CaseRepository struct {
	db *pgxpool.Pool
}

// NewCaseRepository creates a new case repository
func NewCaseRepository(db *pgxpool.Pool) *CaseRepository {
	return &CaseRepository{db: db}
}

// Create inserts a case with its plaintiffs and defendants in one transaction.
// Party order is stored so it survives the round trip.
func (r *CaseRepository) Create(ctx context.Context, c *models.Case) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO cases (
			property_address, city, state, zip_code, filing_county, filing_city
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRow(
		ctx, query,
		c.PropertyAddress,
		c.City,
		c.State,
		c.ZipCode,
		c.FilingCounty,
		c.FilingCity,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert case: %w", err)
	}

	for i := range c.Plaintiffs {
		p := &c.Plaintiffs[i]
		p.CaseID = c.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO plaintiffs (
				case_id, position, first_name, last_name, unit_number,
				is_head_of_household, issues
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at`,
			c.ID, i, p.FirstName, p.LastName, p.UnitNumber, p.IsHeadOfHousehold, p.Issues,
		).Scan(&p.ID, &p.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert plaintiff %d: %w", i, err)
		}
	}

	for i := range c.Defendants {
		d := &c.Defendants[i]
		d.CaseID = c.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO defendants (
				case_id, position, first_name, last_name, entity_type,
				is_owner, is_manager
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at`,
			c.ID, i, d.FirstName, d.LastName, d.EntityType, d.IsOwner, d.IsManager,
		).Scan(&d.ID, &d.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert defendant %d: %w", i, err)
		}
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a case with its parties in input order
func (r *CaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	c := &models.Case{}
	query := `
		SELECT id, property_address, city, state, zip_code, filing_county,
			COALESCE(filing_city, ''), created_at, updated_at
		FROM cases
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.PropertyAddress,
		&c.City,
		&c.State,
		&c.ZipCode,
		&c.FilingCounty,
		&c.FilingCity,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if c.Plaintiffs, err = r.plaintiffs(ctx, id); err != nil {
		return nil, err
	}
	if c.Defendants, err = r.defendants(ctx, id); err != nil {
		return nil, err
	}

	return c, nil
}

func (r *CaseRepository) plaintiffs(ctx context.Context, caseID uuid.UUID) ([]models.Plaintiff, error) {
	query := `
		SELECT id, case_id, first_name, last_name, COALESCE(unit_number, ''),
			is_head_of_household, issues, created_at
		FROM plaintiffs
		WHERE case_id = $1
		ORDER BY position`

	rows, err := r.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Plaintiff
	for rows.Next() {
		var p models.Plaintiff
		err := rows.Scan(
			&p.ID,
			&p.CaseID,
			&p.FirstName,
			&p.LastName,
			&p.UnitNumber,
			&p.IsHeadOfHousehold,
			&p.Issues,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

func (r *CaseRepository) defendants(ctx context.Context, caseID uuid.UUID) ([]models.Defendant, error) {
	query := `
		SELECT id, case_id, first_name, last_name, COALESCE(entity_type, ''),
			is_owner, is_manager, created_at
		FROM defendants
		WHERE case_id = $1
		ORDER BY position`

	rows, err := r.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Defendant
	for rows.Next() {
		var d models.Defendant
		err := rows.Scan(
			&d.ID,
			&d.CaseID,
			&d.FirstName,
			&d.LastName,
			&d.EntityType,
			&d.IsOwner,
			&d.IsManager,
			&d.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}

	return out, rows.Err()
}

// Delete deletes a case; parties, jobs and export records cascade
func (r *CaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM cases WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
