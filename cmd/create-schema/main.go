package main

import (
	"context"
	"fmt"
	"log"

	"discovery-backend/config"
	"discovery-backend/repository"
	"discovery-backend/taxonomy"

	"github.com/jackc/pgx/v5/pgxpool"
)

var tables = []struct {
	name string
	sql  string
}{
	{
		name: "cases",
		sql: `
CREATE TABLE IF NOT EXISTS cases (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    property_address TEXT NOT NULL,
    city VARCHAR(100) NOT NULL,
    state VARCHAR(2) NOT NULL DEFAULT 'CA',
    zip_code VARCHAR(10) NOT NULL DEFAULT '',
    filing_county VARCHAR(100) NOT NULL,
    filing_city VARCHAR(100),
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);`,
	},
	{
		name: "plaintiffs",
		sql: `
CREATE TABLE IF NOT EXISTS plaintiffs (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    case_id UUID NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    first_name VARCHAR(100) NOT NULL,
    last_name VARCHAR(100) NOT NULL DEFAULT '',
    unit_number VARCHAR(20),
    is_head_of_household BOOLEAN NOT NULL DEFAULT false,
    -- category code -> selected option codes
    issues JSONB NOT NULL DEFAULT '{}'::jsonb,
    created_at TIMESTAMP DEFAULT NOW(),
    CONSTRAINT plaintiff_order_unique UNIQUE (case_id, position)
);`,
	},
	{
		name: "defendants",
		sql: `
CREATE TABLE IF NOT EXISTS defendants (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    case_id UUID NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    first_name VARCHAR(100) NOT NULL,
    last_name VARCHAR(100) NOT NULL DEFAULT '',
    entity_type VARCHAR(50),
    is_owner BOOLEAN NOT NULL DEFAULT false,
    is_manager BOOLEAN NOT NULL DEFAULT false,
    created_at TIMESTAMP DEFAULT NOW(),
    CONSTRAINT defendant_order_unique UNIQUE (case_id, position)
);`,
	},
	{
		name: "issue_categories",
		sql: `
CREATE TABLE IF NOT EXISTS issue_categories (
    code VARCHAR(64) PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    position INTEGER NOT NULL
);`,
	},
	{
		name: "issue_options",
		sql: `
CREATE TABLE IF NOT EXISTS issue_options (
    category_code VARCHAR(64) NOT NULL REFERENCES issue_categories(code) ON DELETE CASCADE,
    code VARCHAR(64) NOT NULL,
    label VARCHAR(255) NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (category_code, code)
);`,
	},
	{
		name: "discovery_jobs",
		sql: `
CREATE TABLE IF NOT EXISTS discovery_jobs (
    id UUID PRIMARY KEY,
    case_id UUID NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
    status VARCHAR(20) NOT NULL CHECK (status IN ('pending', 'in_progress', 'completed', 'failed')),
    current_step TEXT,
    steps JSONB NOT NULL DEFAULT '[]'::jsonb,
    failures JSONB NOT NULL DEFAULT '[]'::jsonb,
    error_message TEXT,
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW(),
    completed_at TIMESTAMP
);`,
	},
	{
		name: "discovery_exports",
		sql: `
CREATE TABLE IF NOT EXISTS discovery_exports (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    case_id UUID NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
    job_id UUID NOT NULL REFERENCES discovery_jobs(id) ON DELETE CASCADE,
    kind VARCHAR(20) NOT NULL CHECK (kind IN ('sets', 'consolidated')),
    profile VARCHAR(20) NOT NULL CHECK (profile IN ('srogs', 'pods', 'admissions')),
    pair_name TEXT,
    set_count INTEGER NOT NULL DEFAULT 0,
    total INTEGER NOT NULL DEFAULT 0,
    filename TEXT NOT NULL,
    mime_type VARCHAR(100) NOT NULL,
    size BIGINT NOT NULL,
    storage_path TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT NOW()
);`,
	},
}

var indexes = []struct {
	name string
	sql  string
}{
	{"Plaintiffs by case", "CREATE INDEX IF NOT EXISTS idx_plaintiffs_case ON plaintiffs(case_id, position);"},
	{"Defendants by case", "CREATE INDEX IF NOT EXISTS idx_defendants_case ON defendants(case_id, position);"},
	{"Latest job per case", "CREATE INDEX IF NOT EXISTS idx_discovery_jobs_case ON discovery_jobs(case_id, created_at DESC);"},
	{"Exports by case", "CREATE INDEX IF NOT EXISTS idx_discovery_exports_case ON discovery_exports(case_id, created_at DESC);"},
	{"Exports by job", "CREATE INDEX IF NOT EXISTS idx_discovery_exports_job ON discovery_exports(job_id);"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	for _, t := range tables {
		if _, err := pool.Exec(ctx, t.sql); err != nil {
			log.Fatalf("Failed to create %s table: %v", t.name, err)
		}
		log.Printf("✓ Created table: %s", t.name)
	}

	for _, idx := range indexes {
		if _, err := pool.Exec(ctx, idx.sql); err != nil {
			log.Printf("Warning: Failed to create index %s: %v", idx.name, err)
		} else {
			log.Printf("✓ Created index: %s", idx.name)
		}
	}

	catalog, err := taxonomy.Default()
	if err != nil {
		log.Fatalf("Failed to load embedded issue taxonomy: %v", err)
	}
	if err := repository.NewTaxonomyRepository(pool).Seed(ctx, catalog); err != nil {
		log.Fatalf("Failed to seed issue taxonomy: %v", err)
	}
	log.Printf("✓ Seeded issue taxonomy (%d categories)", len(catalog.Categories()))

	fmt.Println("\n✅ Database schema created successfully!")
	fmt.Printf("   Tables: %d\n", len(tables))
	fmt.Printf("   Indexes: %d\n", len(indexes))
}
