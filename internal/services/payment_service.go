package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"livemart-backend/internal/models"
)

// PaymentState is the payment flow state for one checkout snapshot
type PaymentState string

const (
	PaymentStateIdle       PaymentState = "idle"
	PaymentStateSubmitting PaymentState = "submitting"
	PaymentStateSucceeded  PaymentState = "succeeded"
	PaymentStateFailed     PaymentState = "failed"
)

// Payment entry validation errors
var (
	ErrInvalidPaymentMethod = errors.New("payment method must be CARD or CASH")
	ErrCardDetailsRequired  = errors.New("card number, expiry, CVV and holder name are required")
)

// CardDetails are the card form fields. Presence is validated for CARD
// payments; format checking is the gateway's concern.
type CardDetails struct {
	Number     string `json:"number"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
	HolderName string `json:"holderName"`
}

func (d CardDetails) complete() bool {
	return d.Number != "" && d.Expiry != "" && d.CVV != "" && d.HolderName != ""
}

// PaymentEvent is one observable state transition of a payment session
type PaymentEvent struct {
	State   PaymentState `json:"state"`
	Message string       `json:"message,omitempty"`
}

// PaymentSession holds one checkout snapshot through the payment flow.
// The snapshot is immutable for the lifetime of the session; the card form
// and last error survive a failed submission so the user can retry without
// re-entering the cart.
type PaymentSession struct {
	ID         string
	CustomerID string
	Snapshot   models.CheckoutSnapshot

	mu          sync.Mutex
	state       PaymentState
	card        CardDetails
	lastError   string
	subscribers map[int]chan PaymentEvent
	nextSubID   int
}

func newPaymentSession(id, customerID string, snapshot models.CheckoutSnapshot) *PaymentSession {
	return &PaymentSession{
		ID:          id,
		CustomerID:  customerID,
		Snapshot:    snapshot,
		state:       PaymentStateIdle,
		subscribers: make(map[int]chan PaymentEvent),
	}
}

// State returns the current payment state
func (p *PaymentSession) State() PaymentState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// LastError returns the service-reported message of the last failed submission
func (p *PaymentSession) LastError() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastError
}

// Card returns the preserved card form state
func (p *PaymentSession) Card() CardDetails {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.card
}

// Subscribe registers a listener for state transitions. The returned cancel
// function must be called when the listener goes away.
func (p *PaymentSession) Subscribe() (<-chan PaymentEvent, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextSubID
	p.nextSubID++
	ch := make(chan PaymentEvent, 8)
	p.subscribers[id] = ch

	return ch, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if _, exists := p.subscribers[id]; exists {
			delete(p.subscribers, id)
			close(ch)
		}
	}
}

// publish must be called with p.mu held
func (p *PaymentSession) publish(event PaymentEvent) {
	for _, ch := range p.subscribers {
		select {
		case ch <- event:
		default:
			// slow listener, drop rather than stall the flow
		}
	}
}

// PaymentService runs the payment state machine and submits orders to the
// external order service
type PaymentService struct {
	submitter OrderSubmitter
	cardDelay time.Duration
	cashDelay time.Duration
}

// NewPaymentService creates a new payment service. The delays model the
// gateway/dispatch round-trip and are configurable so tests run fast.
func NewPaymentService(submitter OrderSubmitter, cardDelay, cashDelay time.Duration) *PaymentService {
	return &PaymentService{
		submitter: submitter,
		cardDelay: cardDelay,
		cashDelay: cashDelay,
	}
}

// Submit runs one submission attempt for the session's snapshot:
// Idle -> Submitting -> Succeeded or Failed. A second submit while one is
// outstanding is rejected with ErrSubmissionInFlight. On failure the session
// returns to Idle with the snapshot and card form intact so the user may
// retry; no automatic retry is performed.
func (s *PaymentService) Submit(ctx context.Context, session *PaymentSession, method models.PaymentMethod, card CardDetails) (*models.OrderConfirmation, error) {
	if method != models.PaymentMethodCard && method != models.PaymentMethodCash {
		return nil, ErrInvalidPaymentMethod
	}

	// A snapshot without items or a retailer never entered a valid checkout;
	// the caller navigates back to browsing without touching Submitting.
	if len(session.Snapshot.Items) == 0 || session.Snapshot.RetailerID == "" {
		return nil, models.ErrSessionInvalid
	}

	if method == models.PaymentMethodCard && !card.complete() {
		return nil, ErrCardDetailsRequired
	}

	if err := s.beginSubmission(session, card); err != nil {
		return nil, err
	}

	// Simulated gateway latency: an asynchronous timer wait, never a busy
	// loop, so the rest of the flow stays responsive.
	if err := s.wait(ctx, s.delayFor(method)); err != nil {
		session.mu.Lock()
		session.state = PaymentStateIdle
		session.mu.Unlock()
		return nil, err
	}

	request := buildOrderRequest(session, method)
	confirmation, err := s.submitter.SubmitOrder(ctx, request)
	if err != nil {
		s.finishSubmission(session, PaymentStateFailed, err.Error())
		return nil, err
	}

	if confirmation == nil {
		confirmation = &models.OrderConfirmation{}
	}
	confirmation.TotalAmount = session.Snapshot.TotalAmount
	confirmation.PaymentMode = method.WireMode()
	confirmation.Message = confirmationMessage(method, session.Snapshot.TotalAmount)

	s.finishSubmission(session, PaymentStateSucceeded, confirmation.Message)
	return confirmation, nil
}

// beginSubmission transitions Idle -> Submitting, rejecting concurrent
// submissions and terminal sessions
func (s *PaymentService) beginSubmission(session *PaymentSession, card CardDetails) error {
	session.mu.Lock()
	defer session.mu.Unlock()

	switch session.state {
	case PaymentStateSubmitting:
		return models.ErrSubmissionInFlight
	case PaymentStateSucceeded:
		// the snapshot was already consumed by a successful submission
		return models.ErrSessionInvalid
	}

	session.state = PaymentStateSubmitting
	session.card = card
	session.lastError = ""
	session.publish(PaymentEvent{State: PaymentStateSubmitting})
	return nil
}

// finishSubmission records the outcome. Failed immediately returns control
// to Idle so the next submit attempt is accepted.
func (s *PaymentService) finishSubmission(session *PaymentSession, outcome PaymentState, message string) {
	session.mu.Lock()
	defer session.mu.Unlock()

	session.publish(PaymentEvent{State: outcome, Message: message})
	if outcome == PaymentStateFailed {
		session.lastError = message
		session.state = PaymentStateIdle
		return
	}
	session.state = outcome
}

func (s *PaymentService) delayFor(method models.PaymentMethod) time.Duration {
	if method == models.PaymentMethodCard {
		return s.cardDelay
	}
	return s.cashDelay
}

// wait sleeps on a timer honoring context cancellation
func (s *PaymentService) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// buildOrderRequest maps the immutable snapshot to the order-service payload.
// The total is taken from the snapshot, never recomputed.
func buildOrderRequest(session *PaymentSession, method models.PaymentMethod) models.OrderRequest {
	items := make([]models.OrderRequestItem, 0, len(session.Snapshot.Items))
	for _, line := range session.Snapshot.Items {
		items = append(items, models.OrderRequestItem{
			ProductID:       line.ProductID,
			Quantity:        line.Quantity,
			PriceAtPurchase: line.UnitPrice,
		})
	}

	return models.OrderRequest{
		CustomerID:  session.CustomerID,
		RetailerID:  session.Snapshot.RetailerID,
		TotalAmount: session.Snapshot.TotalAmount,
		PaymentMode: method.WireMode(),
		Items:       items,
	}
}

// confirmationMessage is the mode-specific confirmation surfaced to the user
func confirmationMessage(method models.PaymentMethod, total float64) string {
	if method == models.PaymentMethodCard {
		return "Payment verified. Order placed."
	}
	return fmt.Sprintf("Order placed. Please pay ₹%.2f on delivery.", total)
}
