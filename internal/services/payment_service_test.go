package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livemart-backend/internal/models"
)

// fakeSubmitter records order requests and fails on demand
type fakeSubmitter struct {
	mu       sync.Mutex
	requests []models.OrderRequest
	errs     []error
	block    chan struct{}
}

func (f *fakeSubmitter) SubmitOrder(ctx context.Context, order models.OrderRequest) (*models.OrderConfirmation, error) {
	if f.block != nil {
		<-f.block
	}

	f.mu.Lock()
	f.requests = append(f.requests, order)
	var err error
	if len(f.errs) > 0 {
		err = f.errs[0]
		f.errs = f.errs[1:]
	}
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return &models.OrderConfirmation{OrderID: "ord-1"}, nil
}

func (f *fakeSubmitter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeSubmitter) request(i int) models.OrderRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[i]
}

func validCard() CardDetails {
	return CardDetails{
		Number:     "4111111111111111",
		Expiry:     "12/30",
		CVV:        "123",
		HolderName: "Alice Kumar",
	}
}

func paymentFixture(t *testing.T, submitter OrderSubmitter) (*PaymentService, *PaymentSession) {
	t.Helper()

	checkout := NewCheckoutService()
	cart := cartWith(t,
		groceryItem("P1", 100, 5),
		groceryItem("P1", 100, 5),
		groceryItem("P2", 50, 5),
	)
	session, err := checkout.Checkout("alice", "1", cart)
	require.NoError(t, err)

	service := NewPaymentService(submitter, time.Millisecond, time.Millisecond)
	return service, session
}

func TestCashSubmissionMapsToOffline(t *testing.T) {
	submitter := &fakeSubmitter{}
	service, session := paymentFixture(t, submitter)

	confirmation, err := service.Submit(context.Background(), session, models.PaymentMethodCash, CardDetails{})
	require.NoError(t, err)

	require.Equal(t, 1, submitter.calls())
	request := submitter.request(0)
	assert.Equal(t, models.PaymentModeOffline, request.PaymentMode)
	assert.Equal(t, "alice", request.CustomerID)
	assert.Equal(t, "1", request.RetailerID)
	assert.Equal(t, 250.0, request.TotalAmount)

	assert.Equal(t, models.PaymentModeOffline, confirmation.PaymentMode)
	assert.Contains(t, confirmation.Message, "on delivery")
	assert.Contains(t, confirmation.Message, "250.00")
	assert.Equal(t, PaymentStateSucceeded, session.State())
}

func TestCardSubmissionMapsToOnline(t *testing.T) {
	submitter := &fakeSubmitter{}
	service, session := paymentFixture(t, submitter)

	confirmation, err := service.Submit(context.Background(), session, models.PaymentMethodCard, validCard())
	require.NoError(t, err)

	request := submitter.request(0)
	assert.Equal(t, models.PaymentModeOnline, request.PaymentMode)
	require.Len(t, request.Items, 2)
	for _, item := range request.Items {
		switch item.ProductID {
		case "P1":
			assert.Equal(t, 2, item.Quantity)
			assert.Equal(t, 100.0, item.PriceAtPurchase)
		case "P2":
			assert.Equal(t, 1, item.Quantity)
			assert.Equal(t, 50.0, item.PriceAtPurchase)
		default:
			t.Fatalf("unexpected product %s", item.ProductID)
		}
	}

	assert.Contains(t, confirmation.Message, "Payment verified")
}

func TestCardDetailsMustBePresent(t *testing.T) {
	submitter := &fakeSubmitter{}
	service, session := paymentFixture(t, submitter)

	_, err := service.Submit(context.Background(), session, models.PaymentMethodCard, CardDetails{Number: "4111"})
	assert.ErrorIs(t, err, ErrCardDetailsRequired)
	assert.Equal(t, 0, submitter.calls())
	assert.Equal(t, PaymentStateIdle, session.State())
}

func TestUnknownPaymentMethodRejected(t *testing.T) {
	submitter := &fakeSubmitter{}
	service, session := paymentFixture(t, submitter)

	_, err := service.Submit(context.Background(), session, models.PaymentMethod("CHEQUE"), CardDetails{})
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
	assert.Equal(t, 0, submitter.calls())
}

func TestMalformedSnapshotIsSessionInvalid(t *testing.T) {
	submitter := &fakeSubmitter{}
	service := NewPaymentService(submitter, time.Millisecond, time.Millisecond)

	noItems := newPaymentSession("s1", "alice", models.CheckoutSnapshot{RetailerID: "1"})
	_, err := service.Submit(context.Background(), noItems, models.PaymentMethodCash, CardDetails{})
	assert.ErrorIs(t, err, models.ErrSessionInvalid)

	noRetailer := newPaymentSession("s2", "alice", models.CheckoutSnapshot{
		Items:       []models.CartLine{{ProductID: "P1", Quantity: 1, UnitPrice: 10}},
		TotalAmount: 10,
	})
	_, err = service.Submit(context.Background(), noRetailer, models.PaymentMethodCash, CardDetails{})
	assert.ErrorIs(t, err, models.ErrSessionInvalid)

	// neither attempt ever entered Submitting
	assert.Equal(t, 0, submitter.calls())
	assert.Equal(t, PaymentStateIdle, noItems.State())
}

func TestFailedSubmissionAllowsRetryWithSameSnapshot(t *testing.T) {
	submitter := &fakeSubmitter{errs: []error{&models.OrderSubmissionError{Message: "retailer unreachable"}}}
	service, session := paymentFixture(t, submitter)

	_, err := service.Submit(context.Background(), session, models.PaymentMethodCard, validCard())
	require.Error(t, err)

	var submissionErr *models.OrderSubmissionError
	require.ErrorAs(t, err, &submissionErr)
	assert.Equal(t, "retailer unreachable", submissionErr.Message)

	// control returned to Idle, form and snapshot intact
	assert.Equal(t, PaymentStateIdle, session.State())
	assert.Contains(t, session.LastError(), "retailer unreachable")
	assert.Equal(t, validCard(), session.Card())

	// retry with the same session succeeds without rebuilding the cart
	confirmation, err := service.Submit(context.Background(), session, models.PaymentMethodCard, validCard())
	require.NoError(t, err)
	assert.Equal(t, PaymentStateSucceeded, session.State())
	assert.NotNil(t, confirmation)

	require.Equal(t, 2, submitter.calls())
	assert.Equal(t, submitter.request(0), submitter.request(1))
}

func TestDoubleSubmitWhileSubmittingIsRejected(t *testing.T) {
	submitter := &fakeSubmitter{block: make(chan struct{})}
	service, session := paymentFixture(t, submitter)

	done := make(chan error, 1)
	go func() {
		_, err := service.Submit(context.Background(), session, models.PaymentMethodCash, CardDetails{})
		done <- err
	}()

	require.Eventually(t, func() bool {
		return session.State() == PaymentStateSubmitting
	}, time.Second, time.Millisecond)

	_, err := service.Submit(context.Background(), session, models.PaymentMethodCash, CardDetails{})
	assert.ErrorIs(t, err, models.ErrSubmissionInFlight)

	close(submitter.block)
	require.NoError(t, <-done)
	assert.Equal(t, PaymentStateSucceeded, session.State())
	assert.Equal(t, 1, submitter.calls())
}

func TestSucceededSnapshotCannotBeResubmitted(t *testing.T) {
	submitter := &fakeSubmitter{}
	service, session := paymentFixture(t, submitter)

	_, err := service.Submit(context.Background(), session, models.PaymentMethodCash, CardDetails{})
	require.NoError(t, err)

	_, err = service.Submit(context.Background(), session, models.PaymentMethodCash, CardDetails{})
	assert.ErrorIs(t, err, models.ErrSessionInvalid)
	assert.Equal(t, 1, submitter.calls())
}

func TestCancelledContextAbortsLatencyWait(t *testing.T) {
	submitter := &fakeSubmitter{}
	service, session := paymentFixture(t, submitter)
	service.cashDelay = 200 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	_, err := service.Submit(ctx, session, models.PaymentMethodCash, CardDetails{})
	assert.ErrorIs(t, err, context.Canceled)

	// the order was never dispatched and the flow is ready again
	assert.Equal(t, 0, submitter.calls())
	assert.Equal(t, PaymentStateIdle, session.State())
}

func TestSubscribersObserveStateTransitions(t *testing.T) {
	submitter := &fakeSubmitter{}
	service, session := paymentFixture(t, submitter)

	events, cancel := session.Subscribe()
	defer cancel()

	_, err := service.Submit(context.Background(), session, models.PaymentMethodCash, CardDetails{})
	require.NoError(t, err)

	first := <-events
	assert.Equal(t, PaymentStateSubmitting, first.State)

	second := <-events
	assert.Equal(t, PaymentStateSucceeded, second.State)
	assert.Contains(t, second.Message, "on delivery")
}

func TestFailureEventCarriesServiceMessage(t *testing.T) {
	submitter := &fakeSubmitter{errs: []error{&models.OrderSubmissionError{Message: "boom"}}}
	service, session := paymentFixture(t, submitter)

	events, cancel := session.Subscribe()
	defer cancel()

	_, err := service.Submit(context.Background(), session, models.PaymentMethodCash, CardDetails{})
	require.Error(t, err)

	first := <-events
	assert.Equal(t, PaymentStateSubmitting, first.State)

	second := <-events
	assert.Equal(t, PaymentStateFailed, second.State)
	assert.Contains(t, second.Message, "boom")
}
