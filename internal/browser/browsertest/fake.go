// Package browsertest provides an in-memory browser.Session for unit tests.
package browsertest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/adyen/shopcheck/internal/browser"
	"github.com/adyen/shopcheck/internal/locator"
)

// FakeSession is a browser.Session over a hand-built set of elements.
// It is safe to mutate from another goroutine while a wait is polling it.
type FakeSession struct {
	mu        sync.Mutex
	elements  map[locator.Locator]*FakeElement
	calls     []string
	navigated []string
	quits     int
	closed    bool

	// NavigateErr, when set, is returned by Navigate
	NavigateErr error
	// QuitErr, when set, is returned by Quit
	QuitErr error
}

// NewFakeSession creates an empty page
func NewFakeSession() *FakeSession {
	return &FakeSession{elements: make(map[locator.Locator]*FakeElement)}
}

// Add renders a visible element for loc
func (s *FakeSession) Add(loc locator.Locator) *FakeElement {
	return s.add(loc, true)
}

// AddHidden renders an element that is present but not displayed
func (s *FakeSession) AddHidden(loc locator.Locator) *FakeElement {
	return s.add(loc, false)
}

func (s *FakeSession) add(loc locator.Locator, visible bool) *FakeElement {
	s.mu.Lock()
	defer s.mu.Unlock()

	el := &FakeElement{session: s, locator: loc, visible: visible}
	s.elements[loc] = el
	return el
}

// AddAfter renders a visible element for loc once d has passed
func (s *FakeSession) AddAfter(loc locator.Locator, d time.Duration) {
	time.AfterFunc(d, func() { s.Add(loc) })
}

// Remove takes loc off the page; elements already resolved from it go stale
func (s *FakeSession) Remove(loc locator.Locator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.elements, loc)
}

// Calls returns the interactions performed so far, in order
func (s *FakeSession) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Navigated returns every URL passed to Navigate
func (s *FakeSession) Navigated() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.navigated...)
}

// Quits returns how many times Quit was called
func (s *FakeSession) Quits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quits
}

func (s *FakeSession) Navigate(ctx context.Context, url string) error {
	if err := s.usable(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.NavigateErr != nil {
		return s.NavigateErr
	}
	s.navigated = append(s.navigated, url)
	s.calls = append(s.calls, "navigate "+url)
	return nil
}

func (s *FakeSession) Find(ctx context.Context, loc locator.Locator) (browser.Element, error) {
	if err := s.usable(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.elements[loc]
	if !ok {
		return nil, &browser.ElementNotFoundError{Locator: loc}
	}
	return el, nil
}

func (s *FakeSession) Quit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quits++
	s.closed = true
	return s.QuitErr
}

func (s *FakeSession) usable(ctx context.Context) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return browser.ErrSessionClosed
	}
	return ctx.Err()
}

// FakeElement is one element of a FakeSession
type FakeElement struct {
	session *FakeSession
	locator locator.Locator
	visible bool
	text    string
	typed   strings.Builder
	clicks  int
	onClick func()
	err     error
}

// SetVisible toggles whether the element is displayed
func (e *FakeElement) SetVisible(visible bool) *FakeElement {
	e.session.mu.Lock()
	defer e.session.mu.Unlock()
	e.visible = visible
	return e
}

// ShowAfter makes the element visible once d has passed
func (e *FakeElement) ShowAfter(d time.Duration) *FakeElement {
	e.SetVisible(false)
	time.AfterFunc(d, func() { e.SetVisible(true) })
	return e
}

// WithText sets the element's text content
func (e *FakeElement) WithText(text string) *FakeElement {
	e.session.mu.Lock()
	defer e.session.mu.Unlock()
	e.text = text
	return e
}

// OnClick runs fn after every click, outside the session lock
func (e *FakeElement) OnClick(fn func()) *FakeElement {
	e.session.mu.Lock()
	defer e.session.mu.Unlock()
	e.onClick = fn
	return e
}

// FailWith makes every interaction return err
func (e *FakeElement) FailWith(err error) *FakeElement {
	e.session.mu.Lock()
	defer e.session.mu.Unlock()
	e.err = err
	return e
}

// Typed returns everything sent with SendKeys
func (e *FakeElement) Typed() string {
	e.session.mu.Lock()
	defer e.session.mu.Unlock()
	return e.typed.String()
}

// Clicks returns how many times the element was clicked
func (e *FakeElement) Clicks() int {
	e.session.mu.Lock()
	defer e.session.mu.Unlock()
	return e.clicks
}

func (e *FakeElement) Click(ctx context.Context) error {
	if err := e.check(ctx); err != nil {
		return err
	}
	e.session.mu.Lock()
	e.clicks++
	e.session.calls = append(e.session.calls, "click "+e.locator.String())
	onClick := e.onClick
	e.session.mu.Unlock()

	if onClick != nil {
		onClick()
	}
	return nil
}

func (e *FakeElement) SendKeys(ctx context.Context, text string) error {
	if err := e.check(ctx); err != nil {
		return err
	}
	e.session.mu.Lock()
	defer e.session.mu.Unlock()
	e.typed.WriteString(text)
	e.session.calls = append(e.session.calls, fmt.Sprintf("type %s %q", e.locator, text))
	return nil
}

func (e *FakeElement) IsDisplayed(ctx context.Context) (bool, error) {
	if err := e.check(ctx); err != nil {
		return false, err
	}
	e.session.mu.Lock()
	defer e.session.mu.Unlock()
	return e.visible, nil
}

func (e *FakeElement) Text(ctx context.Context) (string, error) {
	if err := e.check(ctx); err != nil {
		return "", err
	}
	e.session.mu.Lock()
	defer e.session.mu.Unlock()
	return e.text, nil
}

// check fails like a stale element once the element left the page
func (e *FakeElement) check(ctx context.Context) error {
	if err := e.session.usable(ctx); err != nil {
		return err
	}
	e.session.mu.Lock()
	defer e.session.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	if e.session.elements[e.locator] != e {
		return &browser.ElementNotFoundError{Locator: e.locator}
	}
	return nil
}

var _ browser.Session = (*FakeSession)(nil)
var _ browser.Element = (*FakeElement)(nil)
