package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"livemart-backend/internal/middleware"
	"livemart-backend/internal/models"
	"livemart-backend/internal/services"
)

// PaymentHandlers serves checkout handoff and payment submission
type PaymentHandlers struct {
	carts    *services.CartService
	checkout *services.CheckoutService
	payments *services.PaymentService
	upgrader websocket.Upgrader
}

// NewPaymentHandlers creates new payment handlers
func NewPaymentHandlers(carts *services.CartService, checkout *services.CheckoutService, payments *services.PaymentService) *PaymentHandlers {
	return &PaymentHandlers{
		carts:    carts,
		checkout: checkout,
		payments: payments,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // CORS is enforced at the router level
			},
		},
	}
}

// Checkout freezes the customer's cart into a single-use payment session
func (h *PaymentHandlers) Checkout(c *gin.Context) {
	customerID, ok := middleware.CustomerID(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	var req struct {
		RetailerID string `json:"retailerId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request data: " + err.Error(),
		})
		return
	}

	cart := h.carts.Get(customerID)
	session, err := h.checkout.Checkout(customerID, req.RetailerID, cart)
	if err != nil {
		if errors.Is(err, models.ErrEmptyCart) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error":   "Cart is empty",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Checkout failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"checkoutId":  session.ID,
			"totalAmount": session.Snapshot.TotalAmount,
			"retailerId":  session.Snapshot.RetailerID,
		},
	})
}

// GetPaymentSession returns the snapshot summary for the payment page
func (h *PaymentHandlers) GetPaymentSession(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"checkoutId":  session.ID,
			"items":       session.Snapshot.Items,
			"totalAmount": session.Snapshot.TotalAmount,
			"retailerId":  session.Snapshot.RetailerID,
			"state":       session.State(),
			"lastError":   session.LastError(),
		},
	})
}

// SubmitPayment runs one submission attempt for the checkout session
func (h *PaymentHandlers) SubmitPayment(c *gin.Context) {
	customerID, ok := middleware.CustomerID(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	session, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		PaymentMethod models.PaymentMethod `json:"paymentMethod" binding:"required"`
		Card          services.CardDetails `json:"card"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request data: " + err.Error(),
		})
		return
	}

	confirmation, err := h.payments.Submit(c.Request.Context(), session, req.PaymentMethod, req.Card)
	if err != nil {
		h.respondPaymentError(c, err)
		return
	}

	// Success consumes the snapshot: the cart is discarded and the handle
	// cannot be replayed.
	h.carts.Clear(customerID)
	h.checkout.Discard(session.ID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    confirmation,
	})
}

// PaymentEvents streams payment state transitions over a WebSocket
func (h *PaymentHandlers) PaymentEvents(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade payment events connection: %v", err)
		return
	}
	defer conn.Close()

	events, cancel := session.Subscribe()
	defer cancel()

	// Tell the client where the flow currently stands before streaming
	if err := conn.WriteJSON(services.PaymentEvent{State: session.State()}); err != nil {
		return
	}

	for event := range events {
		if err := conn.WriteJSON(event); err != nil {
			return
		}
		if event.State == services.PaymentStateSucceeded {
			return
		}
	}
}

// session resolves the checkout handle, answering SessionInvalid for a
// missing, consumed or foreign handle
func (h *PaymentHandlers) session(c *gin.Context) (*services.PaymentSession, bool) {
	customerID, ok := middleware.CustomerID(c)
	if !ok {
		respondUnauthenticated(c)
		return nil, false
	}

	session, err := h.checkout.Session(c.Param("checkoutId"), customerID)
	if err != nil {
		c.JSON(http.StatusGone, gin.H{
			"success":  false,
			"error":    "Invalid checkout session",
			"redirect": "/customer/dashboard",
		})
		return nil, false
	}

	return session, true
}

func (h *PaymentHandlers) respondPaymentError(c *gin.Context, err error) {
	var submissionErr *models.OrderSubmissionError

	switch {
	case errors.Is(err, models.ErrSessionInvalid):
		c.JSON(http.StatusGone, gin.H{
			"success":  false,
			"error":    "Invalid checkout session",
			"redirect": "/customer/dashboard",
		})
	case errors.Is(err, models.ErrSubmissionInFlight):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   "Submission already in progress",
		})
	case errors.Is(err, services.ErrInvalidPaymentMethod),
		errors.Is(err, services.ErrCardDetailsRequired):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
	case errors.As(err, &submissionErr):
		// the session survives for a user-driven retry
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error":   submissionErr.Message,
			"retry":   true,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Payment failed: " + err.Error(),
		})
	}
}
