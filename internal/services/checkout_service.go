package services

import (
	"sync"

	"github.com/google/uuid"

	"livemart-backend/internal/models"
)

// CheckoutService freezes carts into payment sessions. A session is the
// single-use handle that carries the checkout snapshot from browsing to
// payment; once minted it is owned by the payment flow and later cart
// mutations cannot reach it.
type CheckoutService struct {
	mu       sync.Mutex
	sessions map[string]*PaymentSession
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService() *CheckoutService {
	return &CheckoutService{sessions: make(map[string]*PaymentSession)}
}

// Checkout builds an immutable snapshot of the cart and registers a payment
// session for it. An empty cart fails with ErrEmptyCart and nothing is
// handed off.
func (s *CheckoutService) Checkout(customerID, retailerID string, cart models.Cart) (*PaymentSession, error) {
	if cart.IsEmpty() {
		return nil, models.ErrEmptyCart
	}

	// Lines() returns freshly copied values, so the snapshot shares nothing
	// with the live cart.
	snapshot := models.CheckoutSnapshot{
		Items:       cart.Lines(),
		TotalAmount: cart.Total(),
		RetailerID:  retailerID,
	}

	session := newPaymentSession(uuid.New().String(), customerID, snapshot)

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session, nil
}

// Session returns the payment session for the given handle. A missing handle
// or one owned by another customer yields ErrSessionInvalid.
func (s *CheckoutService) Session(checkoutID, customerID string) (*PaymentSession, error) {
	s.mu.Lock()
	session, exists := s.sessions[checkoutID]
	s.mu.Unlock()

	if !exists || session.CustomerID != customerID {
		return nil, models.ErrSessionInvalid
	}
	return session, nil
}

// Discard removes a consumed session. Any later lookup of the handle fails
// with ErrSessionInvalid.
func (s *CheckoutService) Discard(checkoutID string) {
	s.mu.Lock()
	delete(s.sessions, checkoutID)
	s.mu.Unlock()
}
