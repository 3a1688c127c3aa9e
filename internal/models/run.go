package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunStatus represents valid run states
type RunStatus string

// Run statuses
const (
	RunStatusRunning RunStatus = "running"
	RunStatusPassed  RunStatus = "passed"
	RunStatusFailed  RunStatus = "failed"
	RunStatusAborted RunStatus = "aborted"
)

// Run is one recorded execution of the regression suite
type Run struct {
	ID         string
	BaseURL    string
	Browser    string
	Status     RunStatus
	StartedAt  time.Time
	FinishedAt *time.Time
	Cases      []CaseResult
}

// CaseResult is the recorded outcome of one case within a run
type CaseResult struct {
	ID         string
	RunID      string
	Name       string
	Status     string
	Error      string
	DurationMS int64
	Screenshot string
	CreatedAt  time.Time
}

// Domain errors
var (
	ErrInvalidRunID            = errors.New("run id must be a UUID")
	ErrInvalidBaseURL          = errors.New("base URL cannot be empty")
	ErrInvalidCaseName         = errors.New("case name cannot be empty")
	ErrInvalidStatusTransition = errors.New("invalid run status transition")
)

// NewRun creates a running run with validation
func NewRun(id, baseURL, browserName string) (*Run, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRunID, err)
	}
	if baseURL == "" {
		return nil, ErrInvalidBaseURL
	}

	return &Run{
		ID:        id,
		BaseURL:   baseURL,
		Browser:   browserName,
		Status:    RunStatusRunning,
		StartedAt: time.Now(),
	}, nil
}

// NewCaseResult creates a case result belonging to runID
func NewCaseResult(runID, name, status string, caseErr error, duration time.Duration, screenshot string) (*CaseResult, error) {
	if name == "" {
		return nil, ErrInvalidCaseName
	}

	result := &CaseResult{
		ID:         uuid.New().String(),
		RunID:      runID,
		Name:       name,
		Status:     status,
		DurationMS: duration.Milliseconds(),
		Screenshot: screenshot,
		CreatedAt:  time.Now(),
	}
	if caseErr != nil {
		result.Error = caseErr.Error()
	}
	return result, nil
}

// Finish moves the run to passed or failed
func (r *Run) Finish(passed bool) error {
	if r.Status != RunStatusRunning {
		return fmt.Errorf("%w: cannot finish run with status %s", ErrInvalidStatusTransition, r.Status)
	}

	r.Status = RunStatusFailed
	if passed {
		r.Status = RunStatusPassed
	}
	now := time.Now()
	r.FinishedAt = &now
	return nil
}

// Abort marks a run that never got to execute its cases
func (r *Run) Abort() error {
	if r.Status != RunStatusRunning {
		return fmt.Errorf("%w: cannot abort run with status %s", ErrInvalidStatusTransition, r.Status)
	}

	r.Status = RunStatusAborted
	now := time.Now()
	r.FinishedAt = &now
	return nil
}

// IsFinished returns true once the run reached a final status
func (r *Run) IsFinished() bool {
	return r.Status != RunStatusRunning
}

// Duration returns how long the run took, or has taken so far
func (r *Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
