// Package browser is the boundary to the browser automation library.
//
// Page objects and the suite only see the Session and Element interfaces.
// PlaywrightSession implements them on top of playwright-go, and
// browsertest.FakeSession implements them in memory for unit tests.
package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/adyen/shopcheck/internal/locator"
)

var (
	// ErrElementNotFound matches every *ElementNotFoundError
	ErrElementNotFound = errors.New("element not found")
	// ErrSessionClosed is returned by any call made after Quit
	ErrSessionClosed = errors.New("browser session is closed")
)

// ElementNotFoundError reports a locator that matched nothing when it was resolved
type ElementNotFoundError struct {
	Locator locator.Locator
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("no element matches %s", e.Locator)
}

// Is makes errors.Is(err, ErrElementNotFound) true
func (e *ElementNotFoundError) Is(target error) bool {
	return target == ErrElementNotFound
}

// Session is a handle to one running browser page
type Session interface {
	// Navigate loads url in the page
	Navigate(ctx context.Context, url string) error
	// Find resolves loc against the current page. It never caches: every
	// call reflects what is rendered right now.
	Find(ctx context.Context, loc locator.Locator) (Element, error)
	// Quit releases the browser
	Quit() error
}

// Element is an element resolved from a Locator
type Element interface {
	Click(ctx context.Context) error
	SendKeys(ctx context.Context, text string) error
	IsDisplayed(ctx context.Context) (bool, error)
	Text(ctx context.Context) (string, error)
}

// Screenshotter is implemented by sessions able to capture the page
type Screenshotter interface {
	Screenshot(path string) error
}
