package pages

import (
	"context"
	"fmt"

	"github.com/adyen/shopcheck/internal/browser"
	"github.com/adyen/shopcheck/internal/locator"
	"github.com/adyen/shopcheck/internal/wait"
)

// Home page locators
var (
	CartIcon        = locator.ID("cartIcon")
	CartItem        = locator.XPath("//div[@class='cart-item']")
	AddToCartButton = locator.ID("addToCart")
)

// HomePage drives the catalogue and the cart
type HomePage struct {
	session browser.Session
	waiter  wait.Waiter
}

// NewHomePage creates a home page object over session
func NewHomePage(session browser.Session, waiter wait.Waiter) *HomePage {
	return &HomePage{session: session, waiter: waiter}
}

// ProductLink locates the catalogue link of a product by its exact name
func ProductLink(productName string) (locator.Locator, error) {
	loc, err := locator.LinkByText(productName)
	if err != nil {
		return locator.Locator{}, fmt.Errorf("product %q: %w", productName, err)
	}
	return loc, nil
}

// AddToCart opens the product, adds it to the cart and opens the cart.
// It does not wait for the cart to render; use CartItem for that.
func (p *HomePage) AddToCart(ctx context.Context, productName string) error {
	productLink, err := ProductLink(productName)
	if err != nil {
		return err
	}
	if err := click(ctx, p.session, productLink); err != nil {
		return err
	}
	if err := click(ctx, p.session, AddToCartButton); err != nil {
		return err
	}
	return click(ctx, p.session, CartIcon)
}

// CartItem waits until a cart item is visible and returns it
func (p *HomePage) CartItem(ctx context.Context) (browser.Element, error) {
	return wait.Until(ctx, p.waiter, browser.VisibilityOf(p.session, CartItem))
}
