package suite

import (
	"fmt"
	"time"
)

// Status is the outcome of one case
type Status string

// Case outcomes
const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Result is the outcome of one case
type Result struct {
	Name     string
	Status   Status
	Err      error
	Duration time.Duration
	// Screenshot is the path of the capture taken when the case failed
	Screenshot string
}

// Report collects the results of a run
type Report struct {
	RunID      string
	BaseURL    string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []Result
}

// Counts returns how many cases passed, failed and were skipped
func (r Report) Counts() (passed, failed, skipped int) {
	for _, res := range r.Results {
		switch res.Status {
		case StatusPassed:
			passed++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	return passed, failed, skipped
}

// Passed reports whether every case ran and passed
func (r Report) Passed() bool {
	passed, _, _ := r.Counts()
	return len(r.Results) > 0 && passed == len(r.Results)
}

// Summary returns a one-line description of the run
func (r Report) Summary() string {
	passed, failed, skipped := r.Counts()
	return fmt.Sprintf("run %s against %s: %d passed, %d failed, %d skipped in %s",
		r.RunID, r.BaseURL, passed, failed, skipped, r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
}
