// Package storefront serves a small shop with the markup the page objects
// drive: a login panel, product links, an add-to-cart button and a cart.
// The account page and cart items render after a delay.
package storefront

import (
	"embed"
	"html/template"
	"log"
	"net/http"
	"time"
)

//go:embed templates/home.html
var templates embed.FS

// HomeHandler renders the shop page
type HomeHandler struct {
	template    *template.Template
	products    []string
	renderDelay time.Duration
}

type homePage struct {
	Products      []string
	RenderDelayMS int64
}

// NewHomeHandler creates a new HomeHandler
func NewHomeHandler(store *CartStore, renderDelay time.Duration) (*HomeHandler, error) {
	tmpl, err := template.ParseFS(templates, "templates/home.html")
	if err != nil {
		return nil, err
	}

	return &HomeHandler{
		template:    tmpl,
		products:    store.Products(),
		renderDelay: renderDelay,
	}, nil
}

// ServeHTTP handles the GET / request
func (h *HomeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	page := homePage{
		Products:      h.products,
		RenderDelayMS: h.renderDelay.Milliseconds(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.template.Execute(w, page); err != nil {
		log.Printf("Error rendering home page: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
}
