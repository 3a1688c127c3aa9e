// Package pagestest builds a FakeSession that behaves like the shop the page objects expect.
package pagestest

import (
	"time"

	"github.com/adyen/shopcheck/internal/browser/browsertest"
	"github.com/adyen/shopcheck/internal/pages"
)

// Shop describes the fake shop
type Shop struct {
	Username    string
	Password    string
	Products    []string
	RenderDelay time.Duration
}

// DefaultShop accepts user/pass and sells "Product"
func DefaultShop() Shop {
	return Shop{
		Username:    "user",
		Password:    "pass",
		Products:    []string{"Product", "Kid's Product"},
		RenderDelay: 30 * time.Millisecond,
	}
}

// NewSession renders the shop's landing page into a fresh FakeSession
func (shop Shop) NewSession() *browsertest.FakeSession {
	s := browsertest.NewFakeSession()

	s.Add(pages.LoginButton).OnClick(func() {
		username := s.Add(pages.UsernameField)
		password := s.Add(pages.PasswordField)
		s.Add(pages.SubmitButton).OnClick(func() {
			if username.Typed() == shop.Username && password.Typed() == shop.Password {
				s.AddAfter(pages.AccountPanel, shop.RenderDelay)
			}
		})
	})

	added := false
	for _, name := range shop.Products {
		link, err := pages.ProductLink(name)
		if err != nil {
			continue
		}
		s.Add(link).OnClick(func() {
			s.Add(pages.AddToCartButton).OnClick(func() {
				added = true
			})
		})
	}

	s.Add(pages.CartIcon).OnClick(func() {
		if added {
			s.AddAfter(pages.CartItem, shop.RenderDelay)
		}
	})

	return s
}
