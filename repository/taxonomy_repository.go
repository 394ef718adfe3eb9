package repository

import (
	"context"
	"fmt"

	"discovery-backend/taxonomy"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TaxonomyRepository reads and seeds the issue catalog tables
type TaxonomyRepository struct {
	db *pgxpool.Pool
}

// NewTaxonomyRepository creates a new taxonomy repository
func NewTaxonomyRepository(db *pgxpool.Pool) *TaxonomyRepository {
	return &TaxonomyRepository{db: db}
}

// Load builds a catalog from issue_categories and issue_options. It returns
// taxonomy.ErrEmptyCatalog when the tables hold no categories.
func (r *TaxonomyRepository) Load(ctx context.Context) (*taxonomy.Catalog, error) {
	query := `
		SELECT c.code, c.name, o.code, o.label
		FROM issue_categories c
		LEFT JOIN issue_options o ON o.category_code = c.code
		ORDER BY c.position, o.position`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []taxonomy.Category
	for rows.Next() {
		var catCode, catName string
		var optCode, optLabel *string
		if err := rows.Scan(&catCode, &catName, &optCode, &optLabel); err != nil {
			return nil, err
		}
		if n := len(categories); n == 0 || categories[n-1].Code != catCode {
			categories = append(categories, taxonomy.Category{Code: catCode, Name: catName})
		}
		if optCode != nil {
			cat := &categories[len(categories)-1]
			opt := taxonomy.Option{Code: *optCode}
			if optLabel != nil {
				opt.Label = *optLabel
			}
			cat.Options = append(cat.Options, opt)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return taxonomy.New(categories)
}

// Seed replaces the catalog tables with c
func (r *TaxonomyRepository) Seed(ctx context.Context, c *taxonomy.Catalog) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM issue_options`); err != nil {
		return fmt.Errorf("failed to clear issue options: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM issue_categories`); err != nil {
		return fmt.Errorf("failed to clear issue categories: %w", err)
	}

	for i, cat := range c.Categories() {
		_, err := tx.Exec(ctx,
			`INSERT INTO issue_categories (code, name, position) VALUES ($1, $2, $3)`,
			cat.Code, cat.Name, i)
		if err != nil {
			return fmt.Errorf("failed to insert category %s: %w", cat.Code, err)
		}
		for j, opt := range cat.Options {
			_, err := tx.Exec(ctx,
				`INSERT INTO issue_options (category_code, code, label, position) VALUES ($1, $2, $3, $4)`,
				cat.Code, opt.Code, opt.Label, j)
			if err != nil {
				return fmt.Errorf("failed to insert option %s/%s: %w", cat.Code, opt.Code, err)
			}
		}
	}

	return tx.Commit(ctx)
}
