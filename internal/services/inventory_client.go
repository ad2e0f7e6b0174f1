package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"livemart-backend/internal/models"
)

// InventoryFetcher retrieves a retailer's inventory from the inventory
// collaborator
type InventoryFetcher interface {
	FetchInventory(ctx context.Context, retailerID string) ([]models.InventoryItem, error)
}

// HTTPInventoryClient fetches inventory over HTTP
type HTTPInventoryClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPInventoryClient creates a new inventory client
func NewHTTPInventoryClient(baseURL string) *HTTPInventoryClient {
	return &HTTPInventoryClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchInventory requests the retailer's inventory list. The list order is
// the fetch order the sorter treats as "default".
func (c *HTTPInventoryClient) FetchInventory(ctx context.Context, retailerID string) ([]models.InventoryItem, error) {
	url := fmt.Sprintf("%s/api/retailers/%s/inventory", c.baseURL, retailerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create inventory request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch inventory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inventory service returned status %d", resp.StatusCode)
	}

	var items []models.InventoryItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode inventory response: %w", err)
	}

	return items, nil
}
