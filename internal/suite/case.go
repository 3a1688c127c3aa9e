package suite

import (
	"context"
	"fmt"
	"log"

	"github.com/adyen/shopcheck/internal/browser"
	"github.com/adyen/shopcheck/internal/config"
	"github.com/adyen/shopcheck/internal/wait"
)

// Case is one independent regression test
type Case struct {
	Name string
	Run  func(ctx context.Context, t *T) error
}

// AssertionFailure reports an expected page state that did not hold
type AssertionFailure struct {
	Case    string
	Message string
}

func (e *AssertionFailure) Error() string {
	return fmt.Sprintf("assertion failed in %s: %s", e.Case, e.Message)
}

// T is what a running case sees of the suite
type T struct {
	Session browser.Session
	Waiter  wait.Waiter
	Config  *config.BrowserConfig

	name   string
	logger *log.Logger
}

// Name returns the name of the running case
func (t *T) Name() string {
	return t.name
}

// Logf logs a message prefixed with the case name
func (t *T) Logf(format string, args ...any) {
	t.logger.Printf("[%s] "+format, append([]any{t.name}, args...)...)
}

// Assert returns an *AssertionFailure when cond is false.
// Assertions are always evaluated; there is no switch that disables them.
func (t *T) Assert(cond bool, format string, args ...any) error {
	if cond {
		return nil
	}
	return &AssertionFailure{Case: t.name, Message: fmt.Sprintf(format, args...)}
}

// Displayed asserts that el is currently displayed
func (t *T) Displayed(ctx context.Context, el browser.Element, what string) error {
	visible, err := el.IsDisplayed(ctx)
	if err != nil {
		return fmt.Errorf("checking %s: %w", what, err)
	}
	return t.Assert(visible, "expected %s to be displayed", what)
}
