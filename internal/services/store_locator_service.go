package services

import (
	"database/sql"
	"fmt"
	"math"
	"sort"

	"livemart-backend/internal/models"
)

// earthRadiusKm is the Earth radius used by the haversine formula
const earthRadiusKm = 6371.0

// Fixed coordinates injected by the manual location override when the user
// declines to share their position (BITS Hyderabad auditorium).
const (
	SimulatedLat = 17.5455
	SimulatedLng = 78.5715
)

// StoreLocatorService ranks the candidate store catalog by distance from the
// user's coordinates
type StoreLocatorService struct {
	db *sql.DB
}

// NewStoreLocatorService creates a new store locator service
func NewStoreLocatorService(db *sql.DB) *StoreLocatorService {
	return &StoreLocatorService{db: db}
}

// HaversineKm calculates the great-circle distance between two coordinates
// in kilometers
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// Catalog returns the candidate stores in seeded catalog order
func (s *StoreLocatorService) Catalog() ([]models.StoreLocation, error) {
	query := `
		SELECT id, name, latitude, longitude
		FROM stores ORDER BY position ASC
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query store catalog: %w", err)
	}
	defer rows.Close()

	var stores []models.StoreLocation
	for rows.Next() {
		var store models.StoreLocation
		if err := rows.Scan(&store.ID, &store.Name, &store.Lat, &store.Lng); err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		stores = append(stores, store)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read store catalog: %w", err)
	}

	return stores, nil
}

// RankByDistance returns the catalog annotated with the distance from the
// given coordinates, sorted ascending. Ties keep catalog order (stable sort).
// The ranking is a pure read; selecting a store and fetching its inventory
// is the caller's responsibility.
func (s *StoreLocatorService) RankByDistance(lat, lng float64) ([]models.StoreLocation, error) {
	stores, err := s.Catalog()
	if err != nil {
		return nil, err
	}

	for i := range stores {
		d := HaversineKm(lat, lng, stores[i].Lat, stores[i].Lng)
		stores[i].DistanceKm = &d
	}

	sort.SliceStable(stores, func(i, j int) bool {
		return *stores[i].DistanceKm < *stores[j].DistanceKm
	})

	return stores, nil
}

// RankFromSimulatedLocation re-runs the ranking from the fixed override
// coordinates. Repeatable: every call yields the same ranking.
func (s *StoreLocatorService) RankFromSimulatedLocation() ([]models.StoreLocation, error) {
	return s.RankByDistance(SimulatedLat, SimulatedLng)
}
