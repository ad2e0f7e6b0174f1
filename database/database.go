package database

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"
)

// Initialize creates and returns a database connection
func Initialize(databaseURL string) (*sql.DB, error) {
	// Add SQLite-specific parameters for better concurrent access
	if databaseURL == "livemart.db" {
		databaseURL = "livemart.db?_busy_timeout=30000&_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=1"
	}

	db, err := sql.Open("sqlite3", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA busy_timeout = 30000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			log.Printf("Warning: failed to set pragma %s: %v", pragma, err)
		}
	}

	log.Println("Database connection established successfully")
	return db, nil
}

const createStoresTable = `
	CREATE TABLE IF NOT EXISTS stores (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		position INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)
`

// seedStores is the fixed catalog of candidate stores. The position column
// preserves catalog order so distance ties rank in seeded order.
var seedStores = []struct {
	ID   string
	Name string
	Lat  float64
	Lng  float64
}{
	{"1", "Ratnadeep Supermarket (Hitech City)", 17.4435, 78.3772},
	{"2", "Vijetha Supermarket (Jubilee Hills)", 17.4326, 78.4071},
	{"3", "Campus Mart (BITS Hyderabad)", 17.5449, 78.5718},
}

// Migrate runs database migrations
func Migrate(db *sql.DB) error {
	migrations := []string{
		createStoresTable,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	if err := seedStoreCatalog(db); err != nil {
		return fmt.Errorf("failed to seed store catalog: %w", err)
	}

	return nil
}

// seedStoreCatalog inserts the candidate store list if not already present
func seedStoreCatalog(db *sql.DB) error {
	query := `
		INSERT OR IGNORE INTO stores (id, name, latitude, longitude, position)
		VALUES (?, ?, ?, ?, ?)
	`

	for i, store := range seedStores {
		if _, err := db.Exec(query, store.ID, store.Name, store.Lat, store.Lng, i); err != nil {
			return fmt.Errorf("failed to seed store %s: %w", store.ID, err)
		}
	}

	return nil
}
