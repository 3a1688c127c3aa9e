package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Schema creates the tables of the results store
const Schema = `
	CREATE TABLE IF NOT EXISTS runs (
		id UUID PRIMARY KEY,
		base_url VARCHAR(2048) NOT NULL,
		browser VARCHAR(32) NOT NULL,
		status VARCHAR(16) NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);

	CREATE TABLE IF NOT EXISTS case_results (
		id UUID PRIMARY KEY,
		run_id UUID NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		status VARCHAR(16) NOT NULL,
		error TEXT,
		duration_ms BIGINT NOT NULL,
		screenshot VARCHAR(1024),
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_case_results_run_id ON case_results(run_id);
	`

// RunMigrations creates the necessary database tables
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("database connection not initialized")
	}

	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create results tables: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}
