package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"livemart-backend/internal/middleware"
	"livemart-backend/internal/models"
	"livemart-backend/internal/services"
)

// CartHandlers serves the session cart endpoints
type CartHandlers struct {
	carts *services.CartService
}

// NewCartHandlers creates new cart handlers
func NewCartHandlers(carts *services.CartService) *CartHandlers {
	return &CartHandlers{carts: carts}
}

// GetCart returns the customer's cart lines and total
func (h *CartHandlers) GetCart(c *gin.Context) {
	customerID, ok := middleware.CustomerID(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	cart := h.carts.Get(customerID)
	respondCart(c, http.StatusOK, cart)
}

// AddItem performs a stock-checked add of one unit of an inventory item
func (h *CartHandlers) AddItem(c *gin.Context) {
	customerID, ok := middleware.CustomerID(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	var item models.InventoryItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request data: " + err.Error(),
		})
		return
	}

	if item.Product.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Product id is required",
		})
		return
	}

	cart, err := h.carts.AddItem(customerID, item)
	if err != nil {
		respondCartError(c, err)
		return
	}

	respondCart(c, http.StatusOK, cart)
}

// IncrementLine adds one unit to an existing cart line. The add is
// revalidated against the stock captured at the listing add, so the cart
// view's plus button cannot oversell.
func (h *CartHandlers) IncrementLine(c *gin.Context) {
	customerID, ok := middleware.CustomerID(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	cart, err := h.carts.IncrementLine(customerID, c.Param("productId"))
	if err != nil {
		respondCartError(c, err)
		return
	}

	respondCart(c, http.StatusOK, cart)
}

// RemoveItem takes one unit off a line, deleting the line at quantity 1
func (h *CartHandlers) RemoveItem(c *gin.Context) {
	customerID, ok := middleware.CustomerID(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	cart, err := h.carts.RemoveItem(customerID, c.Param("productId"))
	if err != nil {
		respondCartError(c, err)
		return
	}

	respondCart(c, http.StatusOK, cart)
}

func respondCart(c *gin.Context, status int, cart models.Cart) {
	c.JSON(status, gin.H{
		"success": true,
		"data": gin.H{
			"items": cart.Lines(),
			"total": cart.Total(),
		},
	})
}

func respondCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   "Not enough stock",
		})
	case errors.Is(err, models.ErrLineNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Item is not in the cart",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to update cart: " + err.Error(),
		})
	}
}

func respondUnauthenticated(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   "User not authenticated",
	})
}
