// Package suite orchestrates a regression run: it acquires one browser
// session, runs independent cases against it and releases it exactly once.
//
// A Runner moves through Uninitialized → Running → Terminated. Cases run one
// after another on the calling goroutine.
package suite

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/adyen/shopcheck/internal/browser"
	"github.com/adyen/shopcheck/internal/config"
	"github.com/adyen/shopcheck/internal/wait"
)

// State is the lifecycle state of a Runner
type State int

// Runner states
const (
	Uninitialized State = iota
	Running
	Terminated
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Running:
		return "running"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	// ErrSessionNotStarted is reported for cases run before a successful Setup
	ErrSessionNotStarted = errors.New("browser session not started")
	// ErrTerminated is returned when the runner is used after Teardown
	ErrTerminated = errors.New("runner terminated")
)

// Launcher acquires a browser session
type Launcher func(ctx context.Context, cfg *config.BrowserConfig) (browser.Session, error)

// PlaywrightLauncher launches a real browser with playwright
func PlaywrightLauncher(ctx context.Context, cfg *config.BrowserConfig) (browser.Session, error) {
	session, err := browser.Launch(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Reporter is notified as a run progresses
type Reporter interface {
	RunStarted(ctx context.Context, report Report) error
	CaseFinished(ctx context.Context, runID string, result Result) error
	RunFinished(ctx context.Context, report Report) error
}

// Runner owns the browser session of one run
type Runner struct {
	cfg       *config.BrowserConfig
	launch    Launcher
	logger    *log.Logger
	reporters []Reporter

	runID    string
	state    State
	session  browser.Session
	waiter   wait.Waiter
	setupErr error
}

// Option configures a Runner
type Option func(*Runner)

// WithLogger sends runner output to logger instead of the standard logger
func WithLogger(logger *log.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithReporter adds a reporter
func WithReporter(reporter Reporter) Option {
	return func(r *Runner) {
		r.reporters = append(r.reporters, reporter)
	}
}

// NewRunner creates a runner in the Uninitialized state
func NewRunner(cfg *config.BrowserConfig, launch Launcher, opts ...Option) *Runner {
	r := &Runner{
		cfg:    cfg,
		launch: launch,
		logger: log.Default(),
		runID:  uuid.New().String(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunID identifies this run
func (r *Runner) RunID() string {
	return r.runID
}

// State returns the current lifecycle state
func (r *Runner) State() State {
	return r.state
}

// Setup acquires the session, configures the wait and opens the base URL.
// A failure is remembered: every case of the run is then skipped.
func (r *Runner) Setup(ctx context.Context) error {
	switch {
	case r.state == Terminated:
		return ErrTerminated
	case r.state == Running:
		return nil
	case r.setupErr != nil:
		return r.setupErr
	}

	session, err := r.launch(ctx, r.cfg)
	if err != nil {
		r.setupErr = fmt.Errorf("failed to acquire browser session: %w", err)
		r.logger.Printf("Setup failed: %v", r.setupErr)
		return r.setupErr
	}
	r.session = session
	r.waiter = wait.New(r.cfg.DefaultTimeout, wait.WithInterval(r.cfg.PollInterval))

	if err := session.Navigate(ctx, r.cfg.BaseURL); err != nil {
		r.setupErr = fmt.Errorf("failed to open base URL: %w", err)
		r.logger.Printf("Setup failed: %v", r.setupErr)
		return r.setupErr
	}

	r.state = Running
	r.logger.Printf("Run %s started against %s", r.runID, r.cfg.BaseURL)
	return nil
}

// Run executes cases in order and reports on each of them
func (r *Runner) Run(ctx context.Context, cases ...Case) Report {
	report := Report{
		RunID:     r.runID,
		BaseURL:   r.cfg.BaseURL,
		StartedAt: time.Now(),
	}
	r.notify("RunStarted", func(rep Reporter) error { return rep.RunStarted(ctx, report) })

	for _, c := range cases {
		result := r.RunCase(ctx, c)
		report.Results = append(report.Results, result)
		r.notify("CaseFinished", func(rep Reporter) error { return rep.CaseFinished(ctx, r.runID, result) })
	}

	report.FinishedAt = time.Now()
	r.notify("RunFinished", func(rep Reporter) error { return rep.RunFinished(ctx, report) })
	r.logger.Println(report.Summary())
	return report
}

// RunCase executes a single case. A failing or panicking case never affects the next one.
func (r *Runner) RunCase(ctx context.Context, c Case) (result Result) {
	result = Result{Name: c.Name}

	if r.state != Running {
		result.Status = StatusSkipped
		result.Err = r.notRunningErr()
		r.logger.Printf("SKIP %s: %v", c.Name, result.Err)
		return result
	}

	t := &T{
		Session: r.session,
		Waiter:  r.waiter,
		Config:  r.cfg,
		name:    c.Name,
		logger:  r.logger,
	}

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			result.Err = fmt.Errorf("panic: %v", p)
		}
		result.Duration = time.Since(start)
		if result.Err != nil {
			result.Status = StatusFailed
			result.Screenshot = r.capture(c.Name)
			r.logger.Printf("FAIL %s (%s): %v", c.Name, result.Duration.Round(time.Millisecond), result.Err)
			return
		}
		result.Status = StatusPassed
		r.logger.Printf("PASS %s (%s)", c.Name, result.Duration.Round(time.Millisecond))
	}()

	result.Err = c.Run(ctx, t)
	return result
}

// Teardown releases the session if one was acquired. It is a no-op when
// setup never got a session and when called a second time.
func (r *Runner) Teardown() error {
	if r.state == Terminated {
		return nil
	}
	r.state = Terminated

	if r.session == nil {
		return nil
	}
	session := r.session
	r.session = nil
	if err := session.Quit(); err != nil {
		return fmt.Errorf("failed to release browser session: %w", err)
	}
	r.logger.Printf("Run %s terminated", r.runID)
	return nil
}

// Execute runs Setup, the cases and Teardown. The report is complete even when setup fails.
func (r *Runner) Execute(ctx context.Context, cases ...Case) (Report, error) {
	setupErr := r.Setup(ctx)
	report := r.Run(ctx, cases...)
	return report, errors.Join(setupErr, r.Teardown())
}

func (r *Runner) notRunningErr() error {
	switch {
	case r.state == Terminated:
		return ErrTerminated
	case r.setupErr != nil:
		return r.setupErr
	default:
		return ErrSessionNotStarted
	}
}

func (r *Runner) notify(event string, fn func(Reporter) error) {
	for _, rep := range r.reporters {
		if err := fn(rep); err != nil {
			r.logger.Printf("Reporter %s failed: %v", event, err)
		}
	}
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// capture saves a screenshot of a failed case when a capture directory is configured
func (r *Runner) capture(name string) string {
	if r.cfg.CaptureDir == "" {
		return ""
	}
	shooter, ok := r.session.(browser.Screenshotter)
	if !ok {
		return ""
	}
	path := filepath.Join(r.cfg.CaptureDir, r.runID, unsafeFileChars.ReplaceAllString(name, "_")+".png")
	if err := shooter.Screenshot(path); err != nil {
		r.logger.Printf("WARNING: Could not take screenshot of %s: %v", name, err)
		return ""
	}
	return path
}
