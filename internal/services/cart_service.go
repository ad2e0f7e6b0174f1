package services

import (
	"sync"

	"livemart-backend/internal/models"
)

// CartService owns the per-customer carts for the active browsing sessions.
// Each cart is an immutable value; mutations swap in the new value under the
// lock, so a reader holding an older value keeps a consistent view.
type CartService struct {
	mu    sync.RWMutex
	carts map[string]models.Cart
}

// NewCartService creates a new cart service
func NewCartService() *CartService {
	return &CartService{carts: make(map[string]models.Cart)}
}

// Get returns the customer's current cart, creating an empty one on first use
func (s *CartService) Get(customerID string) models.Cart {
	s.mu.RLock()
	cart, exists := s.carts[customerID]
	s.mu.RUnlock()
	if !exists {
		return models.NewCart()
	}
	return cart
}

// AddItem performs a stock-checked add of one unit of the inventory item.
// On ErrInsufficientStock the stored cart is left unchanged.
func (s *CartService) AddItem(customerID string, item models.InventoryItem) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, exists := s.carts[customerID]
	if !exists {
		cart = models.NewCart()
	}

	next, err := cart.Add(item)
	if err != nil {
		return cart, err
	}

	s.carts[customerID] = next
	return next, nil
}

// IncrementLine adds one unit to an existing cart line, revalidating against
// the stock figure captured at the last listing add.
func (s *CartService) IncrementLine(customerID, productID string) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, exists := s.carts[customerID]
	if !exists {
		return models.NewCart(), models.ErrLineNotFound
	}

	next, err := cart.Increment(productID)
	if err != nil {
		return cart, err
	}

	s.carts[customerID] = next
	return next, nil
}

// RemoveItem takes one unit off a line, deleting the line at quantity 1
func (s *CartService) RemoveItem(customerID, productID string) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, exists := s.carts[customerID]
	if !exists {
		return models.NewCart(), models.ErrLineNotFound
	}

	next, err := cart.Remove(productID)
	if err != nil {
		return cart, err
	}

	s.carts[customerID] = next
	return next, nil
}

// Clear discards the customer's cart after a successful checkout
func (s *CartService) Clear(customerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, customerID)
}
