package browser

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/playwright-community/playwright-go"

	"github.com/adyen/shopcheck/internal/config"
	"github.com/adyen/shopcheck/internal/locator"
)

// PlaywrightSession drives a single page of a playwright-launched browser
type PlaywrightSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
	closed  bool
}

// Launch starts the playwright driver, launches the configured browser and opens a page
func Launch(ctx context.Context, cfg *config.BrowserConfig) (*PlaywrightSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pw, err := playwright.Run(&playwright.RunOptions{
		DriverDirectory: cfg.DriverPath,
		Browsers:        []string{cfg.Browser},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	var browserType playwright.BrowserType
	switch cfg.Browser {
	case config.BrowserFirefox:
		browserType = pw.Firefox
	case config.BrowserWebKit:
		browserType = pw.WebKit
	default:
		browserType = pw.Chromium
	}

	b, err := browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch %s: %w", cfg.Browser, err)
	}

	page, err := b.NewPage()
	if err != nil {
		b.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	page.SetDefaultTimeout(float64(cfg.DefaultTimeout.Milliseconds()))

	log.Printf("Launched %s (headless=%t)", cfg.Browser, cfg.Headless)
	return &PlaywrightSession{pw: pw, browser: b, page: page}, nil
}

// Navigate loads url and waits for the load event
func (s *PlaywrightSession) Navigate(ctx context.Context, url string) error {
	if err := s.usable(ctx); err != nil {
		return err
	}
	if _, err := s.page.Goto(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// Find resolves loc against the live page
func (s *PlaywrightSession) Find(ctx context.Context, loc locator.Locator) (Element, error) {
	if err := s.usable(ctx); err != nil {
		return nil, err
	}

	matches := s.page.Locator(loc.Selector())
	count, err := matches.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", loc, err)
	}
	if count == 0 {
		return nil, &ElementNotFoundError{Locator: loc}
	}
	return &playwrightElement{session: s, locator: loc, handle: matches.First()}, nil
}

// Screenshot writes a full-page PNG to path
func (s *PlaywrightSession) Screenshot(path string) error {
	if s == nil || s.closed {
		return ErrSessionClosed
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create screenshot directory: %w", err)
	}
	if _, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	}); err != nil {
		return fmt.Errorf("failed to take screenshot: %w", err)
	}
	return nil
}

// Quit closes the page, the browser and the driver. Calling it again, or on
// a nil session, does nothing.
func (s *PlaywrightSession) Quit() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true

	var firstErr error
	if err := s.page.Close(); err != nil {
		firstErr = fmt.Errorf("failed to close page: %w", err)
	}
	if err := s.browser.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close browser: %w", err)
	}
	if err := s.pw.Stop(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to stop playwright: %w", err)
	}
	return firstErr
}

func (s *PlaywrightSession) usable(ctx context.Context) error {
	if s == nil || s.closed {
		return ErrSessionClosed
	}
	return ctx.Err()
}

// playwrightElement wraps a lazy playwright locator; every call re-resolves it
type playwrightElement struct {
	session *PlaywrightSession
	locator locator.Locator
	handle  playwright.Locator
}

func (e *playwrightElement) Click(ctx context.Context) error {
	if err := e.present(ctx); err != nil {
		return err
	}
	if err := e.handle.Click(); err != nil {
		return fmt.Errorf("failed to click %s: %w", e.locator, err)
	}
	return nil
}

func (e *playwrightElement) SendKeys(ctx context.Context, text string) error {
	if err := e.present(ctx); err != nil {
		return err
	}
	if err := e.handle.PressSequentially(text); err != nil {
		return fmt.Errorf("failed to type into %s: %w", e.locator, err)
	}
	return nil
}

func (e *playwrightElement) IsDisplayed(ctx context.Context) (bool, error) {
	if err := e.present(ctx); err != nil {
		return false, err
	}
	visible, err := e.handle.IsVisible()
	if err != nil {
		return false, fmt.Errorf("failed to check visibility of %s: %w", e.locator, err)
	}
	return visible, nil
}

func (e *playwrightElement) Text(ctx context.Context) (string, error) {
	if err := e.present(ctx); err != nil {
		return "", err
	}
	text, err := e.handle.TextContent()
	if err != nil {
		return "", fmt.Errorf("failed to read text of %s: %w", e.locator, err)
	}
	return text, nil
}

// present fails fast instead of letting playwright auto-wait for a detached element
func (e *playwrightElement) present(ctx context.Context) error {
	if err := e.session.usable(ctx); err != nil {
		return err
	}
	count, err := e.handle.Count()
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", e.locator, err)
	}
	if count == 0 {
		return &ElementNotFoundError{Locator: e.locator}
	}
	return nil
}
