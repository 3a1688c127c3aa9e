// Package pages holds the page objects of the shop under test.
//
// A page object owns the locators of one screen and the interaction
// sequences performed on it. It borrows the browser session; it never quits it.
package pages

import (
	"context"
	"fmt"

	"github.com/adyen/shopcheck/internal/browser"
	"github.com/adyen/shopcheck/internal/locator"
	"github.com/adyen/shopcheck/internal/wait"
)

// Login page locators
var (
	LoginButton   = locator.ID("loginButton")
	UsernameField = locator.ID("username")
	PasswordField = locator.ID("password")
	SubmitButton  = locator.ID("submitButton")
	AccountPanel  = locator.ID("accountPage")
)

// LoginPage drives the sign-in form
type LoginPage struct {
	session browser.Session
	waiter  wait.Waiter
}

// NewLoginPage creates a login page object over session
func NewLoginPage(session browser.Session, waiter wait.Waiter) *LoginPage {
	return &LoginPage{session: session, waiter: waiter}
}

// Login opens the form, enters the credentials and submits.
// It does not wait for the result; use AccountPage for that.
func (p *LoginPage) Login(ctx context.Context, username, password string) error {
	if err := click(ctx, p.session, LoginButton); err != nil {
		return err
	}
	if err := sendKeys(ctx, p.session, UsernameField, username); err != nil {
		return err
	}
	if err := sendKeys(ctx, p.session, PasswordField, password); err != nil {
		return err
	}
	return click(ctx, p.session, SubmitButton)
}

// AccountPage waits until the account panel is visible and returns it
func (p *LoginPage) AccountPage(ctx context.Context) (browser.Element, error) {
	return wait.Until(ctx, p.waiter, browser.VisibilityOf(p.session, AccountPanel))
}

// click resolves loc right before clicking it
func click(ctx context.Context, session browser.Session, loc locator.Locator) error {
	el, err := session.Find(ctx, loc)
	if err != nil {
		return err
	}
	if err := el.Click(ctx); err != nil {
		return fmt.Errorf("click %s: %w", loc, err)
	}
	return nil
}

// sendKeys resolves loc right before typing into it
func sendKeys(ctx context.Context, session browser.Session, loc locator.Locator, text string) error {
	el, err := session.Find(ctx, loc)
	if err != nil {
		return err
	}
	if err := el.SendKeys(ctx, text); err != nil {
		return fmt.Errorf("type into %s: %w", loc, err)
	}
	return nil
}
