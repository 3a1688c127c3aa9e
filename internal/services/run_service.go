package services

import (
	"context"
	"fmt"
	"log"

	"github.com/adyen/shopcheck/internal/models"
	"github.com/adyen/shopcheck/internal/suite"
)

// RunRepository defines the interface for run persistence
type RunRepository interface {
	CreateRun(ctx context.Context, run *models.Run) error
	AddCaseResult(ctx context.Context, result *models.CaseResult) error
	UpdateRunStatus(ctx context.Context, run *models.Run) error
	GetRun(ctx context.Context, id string) (*models.Run, error)
	ListRecentRuns(ctx context.Context, limit int) ([]*models.Run, error)
}

// RunService records suite runs and reads them back.
// It plugs into a suite.Runner as a reporter.
type RunService interface {
	suite.Reporter
	GetRun(ctx context.Context, id string) (*models.Run, error)
	RecentRuns(ctx context.Context, limit int) ([]*models.Run, error)
}

// RunServiceImpl implements RunService
type RunServiceImpl struct {
	runRepo     RunRepository
	browserName string
	current     *models.Run
}

// NewRunService creates a new run service recording runs made with browserName
func NewRunService(runRepo RunRepository, browserName string) RunService {
	return &RunServiceImpl{
		runRepo:     runRepo,
		browserName: browserName,
	}
}

// RunStarted persists a new running run
func (s *RunServiceImpl) RunStarted(ctx context.Context, report suite.Report) error {
	// Create run using domain factory method
	run, err := models.NewRun(report.RunID, report.BaseURL, s.browserName)
	if err != nil {
		return fmt.Errorf("invalid run: %w", err)
	}
	run.StartedAt = report.StartedAt

	if err := s.runRepo.CreateRun(ctx, run); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	s.current = run
	log.Printf("Recording run %s", run.ID)
	return nil
}

// CaseFinished persists the outcome of one case
func (s *RunServiceImpl) CaseFinished(ctx context.Context, runID string, result suite.Result) error {
	if s.current == nil || s.current.ID != runID {
		return fmt.Errorf("run %s was not started", runID)
	}

	caseResult, err := models.NewCaseResult(runID, result.Name, string(result.Status), result.Err, result.Duration, result.Screenshot)
	if err != nil {
		return fmt.Errorf("invalid case result: %w", err)
	}

	if err := s.runRepo.AddCaseResult(ctx, caseResult); err != nil {
		return fmt.Errorf("failed to record case result: %w", err)
	}

	s.current.Cases = append(s.current.Cases, *caseResult)
	return nil
}

// RunFinished stores the final status: aborted when nothing could run, passed or failed otherwise
func (s *RunServiceImpl) RunFinished(ctx context.Context, report suite.Report) error {
	if s.current == nil || s.current.ID != report.RunID {
		return fmt.Errorf("run %s was not started", report.RunID)
	}

	// Use domain methods to transition state
	_, _, skipped := report.Counts()
	if len(report.Results) > 0 && skipped == len(report.Results) {
		if err := s.current.Abort(); err != nil {
			return err
		}
	} else if err := s.current.Finish(report.Passed()); err != nil {
		return err
	}

	if err := s.runRepo.UpdateRunStatus(ctx, s.current); err != nil {
		return fmt.Errorf("failed to update run status: %w", err)
	}

	log.Printf("Recorded run %s as %s", s.current.ID, s.current.Status)
	return nil
}

// GetRun retrieves a recorded run with its case results
func (s *RunServiceImpl) GetRun(ctx context.Context, id string) (*models.Run, error) {
	run, err := s.runRepo.GetRun(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// RecentRuns lists the latest recorded runs
func (s *RunServiceImpl) RecentRuns(ctx context.Context, limit int) ([]*models.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	runs, err := s.runRepo.ListRecentRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}
