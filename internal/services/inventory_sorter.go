package services

import (
	"sort"

	"livemart-backend/internal/models"
)

// SortMode selects the inventory display ordering
type SortMode string

const (
	SortDefault SortMode = "default"
	SortLowHigh SortMode = "low-high"
	SortHighLow SortMode = "high-low"
)

// SortInventory returns a new ordering of the fetched inventory list. The
// input is never mutated. Sorting is stable in both directions, so items
// with equal price keep their fetch order. An unknown mode behaves as
// SortDefault.
func SortInventory(items []models.InventoryItem, mode SortMode) []models.InventoryItem {
	sorted := make([]models.InventoryItem, len(items))
	copy(sorted, items)

	switch mode {
	case SortLowHigh:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Price < sorted[j].Price
		})
	case SortHighLow:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Price > sorted[j].Price
		})
	}

	return sorted
}
