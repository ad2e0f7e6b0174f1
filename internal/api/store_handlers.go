package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"livemart-backend/internal/services"
)

// StoreHandlers serves the store catalog, proximity ranking and inventory
// browsing endpoints
type StoreHandlers struct {
	locator   *services.StoreLocatorService
	inventory services.InventoryFetcher
}

// NewStoreHandlers creates new store handlers
func NewStoreHandlers(locator *services.StoreLocatorService, inventory services.InventoryFetcher) *StoreHandlers {
	return &StoreHandlers{locator: locator, inventory: inventory}
}

// GetStores returns the candidate store catalog in seeded order
func (h *StoreHandlers) GetStores(c *gin.Context) {
	stores, err := h.locator.Catalog()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to load store catalog: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stores,
	})
}

// GetNearbyStores ranks the catalog by distance from the given coordinates.
// Without coordinates (location permission denied) the catalog is returned
// unranked and the manual override endpoint is advertised instead.
func (h *StoreHandlers) GetNearbyStores(c *gin.Context) {
	latParam := c.Query("lat")
	lngParam := c.Query("lng")

	if latParam == "" || lngParam == "" {
		stores, err := h.locator.Catalog()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Failed to load store catalog: " + err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    stores,
			"ranked":  false,
			"hint":    "Share location or POST /api/stores/simulate-location to rank stores",
		})
		return
	}

	lat, latErr := strconv.ParseFloat(latParam, 64)
	lng, lngErr := strconv.ParseFloat(lngParam, 64)
	if latErr != nil || lngErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid coordinates",
		})
		return
	}

	stores, err := h.locator.RankByDistance(lat, lng)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to rank stores: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stores,
		"ranked":  true,
	})
}

// SimulateLocation ranks the catalog from the fixed demo coordinates. The
// override is idempotent: calling it again re-runs the same ranking.
func (h *StoreHandlers) SimulateLocation(c *gin.Context) {
	stores, err := h.locator.RankFromSimulatedLocation()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to rank stores: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stores,
		"ranked":  true,
		"location": gin.H{
			"lat": services.SimulatedLat,
			"lng": services.SimulatedLng,
		},
	})
}

// GetRetailerInventory fetches a retailer's inventory and applies the
// requested sort mode. A collaborator failure yields an empty collection
// with a loading-failed state, never a partial list.
func (h *StoreHandlers) GetRetailerInventory(c *gin.Context) {
	retailerID := c.Param("id")
	sortMode := services.SortMode(c.DefaultQuery("sort", string(services.SortDefault)))

	items, err := h.inventory.FetchInventory(c.Request.Context(), retailerID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success":       false,
			"data":          []interface{}{},
			"loadingFailed": true,
			"error":         "Failed to load inventory",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    services.SortInventory(items, sortMode),
	})
}
