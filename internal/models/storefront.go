package models

import "sort"

// PaymentMode is the wire-level settlement enumeration for the order service
type PaymentMode string

const (
	PaymentModeOnline  PaymentMode = "ONLINE"
	PaymentModeOffline PaymentMode = "OFFLINE"
)

// PaymentMethod is the user-selectable settlement method
type PaymentMethod string

const (
	PaymentMethodCard PaymentMethod = "CARD"
	PaymentMethodCash PaymentMethod = "CASH"
)

// WireMode maps the selected method to the order-service enumeration
func (m PaymentMethod) WireMode() PaymentMode {
	if m == PaymentMethodCard {
		return PaymentModeOnline
	}
	return PaymentModeOffline
}

// StoreLocation represents a candidate store in the catalog
type StoreLocation struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Lat        float64  `json:"lat"`
	Lng        float64  `json:"lng"`
	DistanceKm *float64 `json:"distanceKm,omitempty"`
}

// Product describes the product behind an inventory item
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Image    string `json:"image"`
}

// InventoryItem represents one retailer inventory entry. Immutable once
// fetched; display only.
type InventoryItem struct {
	InventoryID string  `json:"inventoryId"`
	Product     Product `json:"product"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

// CartLine is one product's entry in the cart. Quantity is always at least 1;
// a line that would reach quantity 0 is deleted instead. Stock is the
// authoritative figure captured at the last stock-checked add, so increments
// made from the cart view revalidate against it.
type CartLine struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
	Stock     int     `json:"stock"`
}

// Cart maps products to cart lines. It is a value type: every mutation
// returns a new Cart and leaves the receiver untouched, so a reader holding
// an older value never observes a torn state.
type Cart struct {
	lines map[string]CartLine
}

// NewCart creates an empty cart
func NewCart() Cart {
	return Cart{lines: make(map[string]CartLine)}
}

// clone copies the line map so mutations never alias shared state
func (c Cart) clone() Cart {
	lines := make(map[string]CartLine, len(c.lines)+1)
	for id, line := range c.lines {
		lines[id] = line
	}
	return Cart{lines: lines}
}

// Add puts one unit of the given inventory item into the cart. If the
// resulting quantity would exceed the item's stock the cart is returned
// unchanged with ErrInsufficientStock.
func (c Cart) Add(item InventoryItem) (Cart, error) {
	line, exists := c.line(item.Product.ID)
	if !exists {
		line = CartLine{
			ProductID: item.Product.ID,
			Name:      item.Product.Name,
			UnitPrice: item.Price,
		}
	}

	if line.Quantity+1 > item.Stock {
		return c, ErrInsufficientStock
	}

	line.Quantity++
	line.Stock = item.Stock

	next := c.clone()
	next.lines[line.ProductID] = line
	return next, nil
}

// Increment adds one unit to an existing line, revalidating against the
// stock figure captured when the line was last added from the listing.
func (c Cart) Increment(productID string) (Cart, error) {
	line, exists := c.line(productID)
	if !exists {
		return c, ErrLineNotFound
	}

	if line.Quantity+1 > line.Stock {
		return c, ErrInsufficientStock
	}

	line.Quantity++

	next := c.clone()
	next.lines[productID] = line
	return next, nil
}

// Remove takes one unit off a line, deleting the line when its quantity
// reaches zero. Removing an unknown product returns ErrLineNotFound with the
// cart unchanged.
func (c Cart) Remove(productID string) (Cart, error) {
	line, exists := c.line(productID)
	if !exists {
		return c, ErrLineNotFound
	}

	next := c.clone()
	if line.Quantity > 1 {
		line.Quantity--
		next.lines[productID] = line
	} else {
		delete(next.lines, productID)
	}
	return next, nil
}

// Total recomputes the cart total from the lines on every call
func (c Cart) Total() float64 {
	var total float64
	for _, line := range c.lines {
		total += line.UnitPrice * float64(line.Quantity)
	}
	return total
}

// Lines returns the cart lines in stable product-id order for display
func (c Cart) Lines() []CartLine {
	lines := make([]CartLine, 0, len(c.lines))
	for _, line := range c.lines {
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].ProductID < lines[j].ProductID
	})
	return lines
}

// Len returns the number of distinct lines in the cart
func (c Cart) Len() int {
	return len(c.lines)
}

// IsEmpty reports whether the cart has no lines
func (c Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c Cart) line(productID string) (CartLine, bool) {
	if c.lines == nil {
		return CartLine{}, false
	}
	line, exists := c.lines[productID]
	return line, exists
}

// CheckoutSnapshot is the immutable point-in-time copy of cart contents and
// total handed from browsing to payment. Cart mutations after the handoff
// never affect a snapshot, and its total is never recomputed.
type CheckoutSnapshot struct {
	Items       []CartLine `json:"items"`
	TotalAmount float64    `json:"totalAmount"`
	RetailerID  string     `json:"retailerId"`
}

// OrderRequestItem is one purchased line as the order service expects it
type OrderRequestItem struct {
	ProductID       string  `json:"productId"`
	Quantity        int     `json:"quantity"`
	PriceAtPurchase float64 `json:"priceAtPurchase"`
}

// OrderRequest is the payload submitted to the external order service
type OrderRequest struct {
	CustomerID  string             `json:"customerId"`
	RetailerID  string             `json:"retailerId"`
	TotalAmount float64            `json:"totalAmount"`
	PaymentMode PaymentMode        `json:"paymentMode"`
	Items       []OrderRequestItem `json:"items"`
}

// OrderConfirmation is the record the order service returns on success
type OrderConfirmation struct {
	OrderID     string      `json:"orderId"`
	TotalAmount float64     `json:"totalAmount"`
	PaymentMode PaymentMode `json:"paymentMode"`
	Message     string      `json:"message,omitempty"`
}
