package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livemart-backend/internal/models"
)

func sampleOrder() models.OrderRequest {
	return models.OrderRequest{
		CustomerID:  "alice",
		RetailerID:  "1",
		TotalAmount: 250,
		PaymentMode: models.PaymentModeOffline,
		Items: []models.OrderRequestItem{
			{ProductID: "P1", Quantity: 2, PriceAtPurchase: 100},
			{ProductID: "P2", Quantity: 1, PriceAtPurchase: 50},
		},
	}
}

func TestSubmitOrderPostsPayload(t *testing.T) {
	var received models.OrderRequest
	calls := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/orders", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.OrderConfirmation{OrderID: "ord-42"})
	}))
	defer server.Close()

	client := NewHTTPOrderClient(server.URL)
	confirmation, err := client.SubmitOrder(context.Background(), sampleOrder())
	require.NoError(t, err)

	assert.Equal(t, "ord-42", confirmation.OrderID)
	assert.Equal(t, sampleOrder(), received)
	assert.Equal(t, 1, calls)
}

func TestSubmitOrderSurfacesServiceMessage(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Insufficient stock for product P1"})
	}))
	defer server.Close()

	client := NewHTTPOrderClient(server.URL)
	_, err := client.SubmitOrder(context.Background(), sampleOrder())
	require.Error(t, err)

	var submissionErr *models.OrderSubmissionError
	require.ErrorAs(t, err, &submissionErr)
	assert.Equal(t, "Insufficient stock for product P1", submissionErr.Message)

	// the client never retries on its own
	assert.Equal(t, 1, calls)
}

func TestSubmitOrderHandlesPlainTextErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("database is down"))
	}))
	defer server.Close()

	client := NewHTTPOrderClient(server.URL)
	_, err := client.SubmitOrder(context.Background(), sampleOrder())

	var submissionErr *models.OrderSubmissionError
	require.ErrorAs(t, err, &submissionErr)
	assert.Equal(t, "database is down", submissionErr.Message)
}

func TestSubmitOrderNetworkErrorIsSubmissionError(t *testing.T) {
	client := NewHTTPOrderClient("http://127.0.0.1:1")

	_, err := client.SubmitOrder(context.Background(), sampleOrder())

	var submissionErr *models.OrderSubmissionError
	assert.ErrorAs(t, err, &submissionErr)
}
