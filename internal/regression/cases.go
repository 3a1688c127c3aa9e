// Package regression defines the e-commerce regression cases.
package regression

import (
	"context"

	"github.com/adyen/shopcheck/internal/config"
	"github.com/adyen/shopcheck/internal/pages"
	"github.com/adyen/shopcheck/internal/suite"
)

// Cases returns the full regression suite in execution order
func Cases(data config.SuiteData) []suite.Case {
	return []suite.Case{
		Login(data.Username, data.Password),
		AddToCart(data.Product),
	}
}

// Login signs in and expects the account page to show up
func Login(username, password string) suite.Case {
	return suite.Case{
		Name: "login",
		Run: func(ctx context.Context, t *suite.T) error {
			loginPage := pages.NewLoginPage(t.Session, t.Waiter)
			if err := loginPage.Login(ctx, username, password); err != nil {
				return err
			}

			accountPage, err := loginPage.AccountPage(ctx)
			if err != nil {
				return err
			}
			return t.Displayed(ctx, accountPage, "account page")
		},
	}
}

// AddToCart puts productName in the cart and expects a cart item to show up
func AddToCart(productName string) suite.Case {
	return suite.Case{
		Name: "add-to-cart",
		Run: func(ctx context.Context, t *suite.T) error {
			homePage := pages.NewHomePage(t.Session, t.Waiter)
			if err := homePage.AddToCart(ctx, productName); err != nil {
				return err
			}

			cartItem, err := homePage.CartItem(ctx)
			if err != nil {
				return err
			}
			t.Logf("cart item visible for %q", productName)
			return t.Displayed(ctx, cartItem, "cart item")
		},
	}
}
