package models

import "errors"

// Domain error taxonomy. Validation failures are resolved locally and never
// mutate state; submission failures preserve the session for retry.
var (
	// ErrInsufficientStock blocks an add that would exceed the item's stock
	ErrInsufficientStock = errors.New("not enough stock")

	// ErrLineNotFound is returned when removing a product that is not in the cart
	ErrLineNotFound = errors.New("cart line not found")

	// ErrEmptyCart blocks checkout on an empty cart
	ErrEmptyCart = errors.New("cart is empty")

	// ErrSessionInvalid marks a missing, malformed or consumed checkout session
	ErrSessionInvalid = errors.New("invalid checkout session")

	// ErrSubmissionInFlight rejects a second submit while one is outstanding
	ErrSubmissionInFlight = errors.New("payment submission already in progress")
)

// OrderSubmissionError carries the service-reported message for a failed
// order submission. The session survives it so the user may retry; no
// automatic retry is performed.
type OrderSubmissionError struct {
	Message string
}

func (e *OrderSubmissionError) Error() string {
	if e.Message == "" {
		return "order submission failed"
	}
	return "order submission failed: " + e.Message
}
