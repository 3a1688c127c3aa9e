package services

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/adyen/shopcheck/internal/browser"
	"github.com/adyen/shopcheck/internal/browser/browsertest"
	"github.com/adyen/shopcheck/internal/config"
	"github.com/adyen/shopcheck/internal/models"
	"github.com/adyen/shopcheck/internal/suite"
)

// MockRunRepository is a mock implementation of RunRepository for testing
type MockRunRepository struct {
	CreateRunFunc       func(context.Context, *models.Run) error
	AddCaseResultFunc   func(context.Context, *models.CaseResult) error
	UpdateRunStatusFunc func(context.Context, *models.Run) error
	GetRunFunc          func(context.Context, string) (*models.Run, error)
	ListRecentRunsFunc  func(context.Context, int) ([]*models.Run, error)

	created []*models.Run
	results []*models.CaseResult
	updated []models.RunStatus
}

func (m *MockRunRepository) CreateRun(ctx context.Context, run *models.Run) error {
	m.created = append(m.created, run)
	if m.CreateRunFunc != nil {
		return m.CreateRunFunc(ctx, run)
	}
	return nil
}

func (m *MockRunRepository) AddCaseResult(ctx context.Context, result *models.CaseResult) error {
	m.results = append(m.results, result)
	if m.AddCaseResultFunc != nil {
		return m.AddCaseResultFunc(ctx, result)
	}
	return nil
}

func (m *MockRunRepository) UpdateRunStatus(ctx context.Context, run *models.Run) error {
	m.updated = append(m.updated, run.Status)
	if m.UpdateRunStatusFunc != nil {
		return m.UpdateRunStatusFunc(ctx, run)
	}
	return nil
}

func (m *MockRunRepository) GetRun(ctx context.Context, id string) (*models.Run, error) {
	if m.GetRunFunc != nil {
		return m.GetRunFunc(ctx, id)
	}
	return &models.Run{ID: id}, nil
}

func (m *MockRunRepository) ListRecentRuns(ctx context.Context, limit int) ([]*models.Run, error) {
	if m.ListRecentRunsFunc != nil {
		return m.ListRecentRunsFunc(ctx, limit)
	}
	return nil, nil
}

func newReport(results ...suite.Result) suite.Report {
	return suite.Report{
		RunID:     uuid.New().String(),
		BaseURL:   "http://localhost:8080",
		StartedAt: time.Now(),
		Results:   results,
	}
}

func TestRunService_RecordsRun(t *testing.T) {
	tests := []struct {
		name           string
		results        []suite.Result
		expectedStatus models.RunStatus
	}{
		{
			name:           "all cases passed",
			results:        []suite.Result{{Name: "login", Status: suite.StatusPassed}, {Name: "add-to-cart", Status: suite.StatusPassed}},
			expectedStatus: models.RunStatusPassed,
		},
		{
			name:           "one case failed",
			results:        []suite.Result{{Name: "login", Status: suite.StatusFailed, Err: errors.New("timeout")}, {Name: "add-to-cart", Status: suite.StatusPassed}},
			expectedStatus: models.RunStatusFailed,
		},
		{
			name:           "setup failed",
			results:        []suite.Result{{Name: "login", Status: suite.StatusSkipped}, {Name: "add-to-cart", Status: suite.StatusSkipped}},
			expectedStatus: models.RunStatusAborted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN
			ctx := context.Background()
			repo := &MockRunRepository{}
			service := NewRunService(repo, "chromium")
			report := newReport()

			// WHEN
			if err := service.RunStarted(ctx, report); err != nil {
				t.Fatalf("RunStarted() error = %v", err)
			}
			for _, res := range tt.results {
				if err := service.CaseFinished(ctx, report.RunID, res); err != nil {
					t.Fatalf("CaseFinished() error = %v", err)
				}
			}
			report.Results = tt.results
			if err := service.RunFinished(ctx, report); err != nil {
				t.Fatalf("RunFinished() error = %v", err)
			}

			// THEN
			if len(repo.created) != 1 || repo.created[0].ID != report.RunID {
				t.Fatalf("expected run %s to be created, got %v", report.RunID, repo.created)
			}
			if repo.created[0].Browser != "chromium" {
				t.Errorf("expected browser chromium, got %s", repo.created[0].Browser)
			}
			if len(repo.results) != len(tt.results) {
				t.Errorf("expected %d case results, got %d", len(tt.results), len(repo.results))
			}
			if len(repo.updated) != 1 || repo.updated[0] != tt.expectedStatus {
				t.Errorf("expected final status %s, got %v", tt.expectedStatus, repo.updated)
			}
		})
	}
}

func TestRunService_CaseErrorIsStored(t *testing.T) {
	ctx := context.Background()
	repo := &MockRunRepository{}
	service := NewRunService(repo, "firefox")
	report := newReport()

	if err := service.RunStarted(ctx, report); err != nil {
		t.Fatal(err)
	}
	err := service.CaseFinished(ctx, report.RunID, suite.Result{
		Name:     "add-to-cart",
		Status:   suite.StatusFailed,
		Err:      errors.New("no element matches By.id(\"addToCart\")"),
		Duration: 250 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}

	got := repo.results[0]
	if got.Error != `no element matches By.id("addToCart")` || got.Status != "failed" || got.DurationMS != 250 {
		t.Errorf("unexpected case result: %+v", got)
	}
}

func TestRunService_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("case before run", func(t *testing.T) {
		service := NewRunService(&MockRunRepository{}, "chromium")
		if err := service.CaseFinished(ctx, uuid.New().String(), suite.Result{Name: "login"}); err == nil {
			t.Error("expected error for unknown run")
		}
	})

	t.Run("invalid run id", func(t *testing.T) {
		service := NewRunService(&MockRunRepository{}, "chromium")
		report := newReport()
		report.RunID = "not-a-uuid"
		if err := service.RunStarted(ctx, report); !errors.Is(err, models.ErrInvalidRunID) {
			t.Errorf("expected ErrInvalidRunID, got %v", err)
		}
	})

	t.Run("repository error", func(t *testing.T) {
		dbErr := errors.New("database error")
		service := NewRunService(&MockRunRepository{
			CreateRunFunc: func(context.Context, *models.Run) error { return dbErr },
		}, "chromium")
		if err := service.RunStarted(ctx, newReport()); !errors.Is(err, dbErr) {
			t.Errorf("expected database error, got %v", err)
		}
	})

	t.Run("finish twice", func(t *testing.T) {
		service := NewRunService(&MockRunRepository{}, "chromium")
		report := newReport(suite.Result{Name: "login", Status: suite.StatusPassed})
		if err := service.RunStarted(ctx, report); err != nil {
			t.Fatal(err)
		}
		if err := service.RunFinished(ctx, report); err != nil {
			t.Fatal(err)
		}
		if err := service.RunFinished(ctx, report); !errors.Is(err, models.ErrInvalidStatusTransition) {
			t.Errorf("expected ErrInvalidStatusTransition, got %v", err)
		}
	})
}

func TestRunService_RecentRunsDefaultLimit(t *testing.T) {
	var gotLimit int
	service := NewRunService(&MockRunRepository{
		ListRecentRunsFunc: func(ctx context.Context, limit int) ([]*models.Run, error) {
			gotLimit = limit
			return []*models.Run{{ID: "a"}}, nil
		},
	}, "chromium")

	runs, err := service.RecentRuns(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if gotLimit != 20 || len(runs) != 1 {
		t.Errorf("expected default limit 20 and one run, got limit %d and %d runs", gotLimit, len(runs))
	}
}

func TestRunService_AsSuiteReporter(t *testing.T) {
	// GIVEN a runner recording into the service
	repo := &MockRunRepository{}
	session := browsertest.NewFakeSession()
	cfg := &config.BrowserConfig{BaseURL: "http://localhost:8080", DefaultTimeout: time.Second, PollInterval: 10 * time.Millisecond}
	runner := suite.NewRunner(cfg,
		func(ctx context.Context, cfg *config.BrowserConfig) (browser.Session, error) { return session, nil },
		suite.WithLogger(log.New(&bytes.Buffer{}, "", 0)),
		suite.WithReporter(NewRunService(repo, "chromium")),
	)

	// WHEN
	_, err := runner.Execute(context.Background(), suite.Case{
		Name: "noop",
		Run:  func(ctx context.Context, t *suite.T) error { return nil },
	})

	// THEN
	if err != nil {
		t.Fatal(err)
	}
	if len(repo.created) != 1 || repo.created[0].ID != runner.RunID() {
		t.Fatalf("expected run %s to be recorded", runner.RunID())
	}
	if len(repo.updated) != 1 || repo.updated[0] != models.RunStatusPassed {
		t.Errorf("expected run to be recorded as passed, got %v", repo.updated)
	}
}
