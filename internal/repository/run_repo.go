package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/adyen/shopcheck/internal/models"
)

// ErrRunNotFound is returned when no run has the requested id
var ErrRunNotFound = errors.New("run not found")

// RunRepository handles database operations for recorded runs
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new run repository over db
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{
		db: db,
	}
}

// CreateRun inserts a new run
func (r *RunRepository) CreateRun(ctx context.Context, run *models.Run) error {
	query := `
		INSERT INTO runs (id, base_url, browser, status, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.BaseURL,
		run.Browser,
		run.Status,
		run.StartedAt,
		run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

// AddCaseResult records the outcome of one case
func (r *RunRepository) AddCaseResult(ctx context.Context, result *models.CaseResult) error {
	query := `
		INSERT INTO case_results (id, run_id, name, status, error, duration_ms, screenshot, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, NULLIF($7, ''), $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		result.ID,
		result.RunID,
		result.Name,
		result.Status,
		result.Error,
		result.DurationMS,
		result.Screenshot,
		result.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add case result: %w", err)
	}

	return nil
}

// UpdateRunStatus stores the final status of a run
func (r *RunRepository) UpdateRunStatus(ctx context.Context, run *models.Run) error {
	query := `
		UPDATE runs
		SET status = $1, finished_at = $2
		WHERE id = $3
	`

	result, err := r.db.ExecContext(ctx, query, run.Status, run.FinishedAt, run.ID)
	if err != nil {
		return fmt.Errorf("failed to update run status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrRunNotFound
	}

	return nil
}

// GetRun retrieves a run together with its case results
func (r *RunRepository) GetRun(ctx context.Context, id string) (*models.Run, error) {
	query := `
		SELECT id, base_url, browser, status, started_at, finished_at
		FROM runs
		WHERE id = $1
	`

	run := &models.Run{}
	var finishedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID,
		&run.BaseURL,
		&run.Browser,
		&run.Status,
		&run.StartedAt,
		&finishedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}

	run.Cases, err = r.caseResults(ctx, id)
	if err != nil {
		return nil, err
	}

	return run, nil
}

// ListRecentRuns returns the latest runs first, without their case results
func (r *RunRepository) ListRecentRuns(ctx context.Context, limit int) ([]*models.Run, error) {
	query := `
		SELECT id, base_url, browser, status, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run := &models.Run{}
		var finishedAt sql.NullTime
		if err := rows.Scan(&run.ID, &run.BaseURL, &run.Browser, &run.Status, &run.StartedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if finishedAt.Valid {
			run.FinishedAt = &finishedAt.Time
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	return runs, nil
}

func (r *RunRepository) caseResults(ctx context.Context, runID string) ([]models.CaseResult, error) {
	query := `
		SELECT id, run_id, name, status, COALESCE(error, ''), duration_ms,
		       COALESCE(screenshot, ''), created_at
		FROM case_results
		WHERE run_id = $1
		ORDER BY created_at, name
	`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get case results: %w", err)
	}
	defer rows.Close()

	var results []models.CaseResult
	for rows.Next() {
		var res models.CaseResult
		if err := rows.Scan(&res.ID, &res.RunID, &res.Name, &res.Status, &res.Error,
			&res.DurationMS, &res.Screenshot, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan case result: %w", err)
		}
		results = append(results, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get case results: %w", err)
	}

	return results, nil
}
