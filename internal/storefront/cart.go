package storefront

import (
	"errors"
	"slices"
	"sync"
)

// ErrUnknownProduct is returned when a product is not in the catalogue
var ErrUnknownProduct = errors.New("unknown product")

// CartStore keeps carts in memory, keyed by session id
type CartStore struct {
	mu       sync.Mutex
	products []string
	carts    map[string][]string
}

// NewCartStore creates an empty store selling products
func NewCartStore(products []string) *CartStore {
	return &CartStore{
		products: slices.Clone(products),
		carts:    make(map[string][]string),
	}
}

// Products returns the catalogue
func (s *CartStore) Products() []string {
	return slices.Clone(s.products)
}

// Add puts product in the cart of sessionID
func (s *CartStore) Add(sessionID, product string) error {
	if !slices.Contains(s.products, product) {
		return ErrUnknownProduct
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[sessionID] = append(s.carts[sessionID], product)
	return nil
}

// Items returns the cart contents of sessionID
func (s *CartStore) Items(sessionID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.carts[sessionID])
}
