package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"livemart-backend/internal/models"
)

// OrderSubmitter submits a finished order to the external order service
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, order models.OrderRequest) (*models.OrderConfirmation, error)
}

// HTTPOrderClient submits orders over HTTP
type HTTPOrderClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPOrderClient creates a new order client
func NewHTTPOrderClient(baseURL string) *HTTPOrderClient {
	return &HTTPOrderClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// SubmitOrder posts the order payload. A non-2xx response is surfaced as an
// OrderSubmissionError carrying the service-reported message; the caller
// must not retry automatically.
func (c *HTTPOrderClient) SubmitOrder(ctx context.Context, order models.OrderRequest) (*models.OrderConfirmation, error) {
	payload, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &models.OrderSubmissionError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &models.OrderSubmissionError{Message: readErrorMessage(resp.Body, resp.StatusCode)}
	}

	var confirmation models.OrderConfirmation
	if err := json.NewDecoder(resp.Body).Decode(&confirmation); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode order confirmation: %w", err)
	}

	return &confirmation, nil
}

// readErrorMessage extracts the service-reported failure message
func readErrorMessage(body io.Reader, status int) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(raw) == 0 {
		return fmt.Sprintf("order service returned status %d", status)
	}

	// the order service reports either a JSON envelope or a plain string
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Error != "" {
			return envelope.Error
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}

	return strings.TrimSpace(string(raw))
}
