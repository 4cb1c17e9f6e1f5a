package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Initialize the Postgres database schema. Idempotent; safe to run on
// every startup.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createToursQuery := `
	CREATE TABLE IF NOT EXISTS tours (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		start_at TIMESTAMPTZ NOT NULL,
		end_at TIMESTAMPTZ NOT NULL,
		event_ids JSONB NOT NULL DEFAULT '[]'
	);
	`

	createVenuesQuery := `
	CREATE TABLE IF NOT EXISTS venues (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		lat DOUBLE PRECISION,
		lon DOUBLE PRECISION,
		open_minute INTEGER NOT NULL DEFAULT 0,
		close_minute INTEGER NOT NULL DEFAULT 0,
		setup_seconds INTEGER NOT NULL DEFAULT 0
	);
	`

	createEventsQuery := `
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		tour_id TEXT NOT NULL REFERENCES tours(id) ON DELETE CASCADE,
		venue_id TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		duration_seconds INTEGER NOT NULL,
		setup_seconds INTEGER NOT NULL DEFAULT 0,
		teardown_seconds INTEGER NOT NULL DEFAULT 0,
		fixed_start TIMESTAMPTZ,
		earliest_start TIMESTAMPTZ,
		latest_start TIMESTAMPTZ,
		priority INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createItinerariesQuery := `
	CREATE TABLE IF NOT EXISTS itineraries (
		id TEXT PRIMARY KEY,
		tour_id TEXT NOT NULL,
		generated_at TIMESTAMPTZ NOT NULL,
		payload JSONB NOT NULL
	);
	`

	createTravelCacheQuery := `
	CREATE TABLE IF NOT EXISTS travel_cache (
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        distance_meters INTEGER NOT NULL,
        duration_seconds INTEGER NOT NULL,
        PRIMARY KEY (origin, destination)
    );
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address TEXT PRIMARY KEY,
        lon DOUBLE PRECISION NOT NULL,
        lat DOUBLE PRECISION NOT NULL
    );
	`

	createIndexQueries := `
	CREATE INDEX IF NOT EXISTS idx_events_tour ON events(tour_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_itineraries_tour ON itineraries(tour_id, generated_at);
	CREATE INDEX IF NOT EXISTS idx_travel_cache_destination_origin
    ON travel_cache(destination, origin);
	`

	statements := []string{
		createToursQuery,
		createVenuesQuery,
		createEventsQuery,
		createItinerariesQuery,
		createTravelCacheQuery,
		createGeocodeCacheQuery,
		createIndexQueries,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type VenueSeed struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Address      string   `json:"address"`
	Lat          *float64 `json:"lat"`
	Lon          *float64 `json:"lon"`
	OpenMinute   int      `json:"open_minute"`
	CloseMinute  int      `json:"close_minute"`
	SetupSeconds int      `json:"setup_seconds"`
}

type EventSeed struct {
	ID              string     `json:"id"`
	VenueID         string     `json:"venue_id"`
	Title           string     `json:"title"`
	DurationSeconds int        `json:"duration_seconds"`
	SetupSeconds    int        `json:"setup_seconds"`
	TeardownSeconds int        `json:"teardown_seconds"`
	FixedStart      *time.Time `json:"fixed_start"`
	EarliestStart   *time.Time `json:"earliest_start"`
	LatestStart     *time.Time `json:"latest_start"`
	Priority        int        `json:"priority"`
}

type TourSeed struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Start  time.Time   `json:"start"`
	End    time.Time   `json:"end"`
	Events []EventSeed `json:"events"`
}

type Seed struct {
	Venues []VenueSeed `json:"venues"`
	Tours  []TourSeed  `json:"tours"`
}

// Populate the database with demo tour data from a JSON file.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed tours: read %q: %w", jsonPath, err)
	}

	var data Seed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed tours: parse json: %w", err)
	}

	for i, v := range data.Venues {
		if strings.TrimSpace(v.ID) == "" {
			return fmt.Errorf("seed tours: venue at index %d: id cannot be empty", i+1)
		}
	}
	for i, t := range data.Tours {
		if strings.TrimSpace(t.ID) == "" {
			return fmt.Errorf("seed tours: tour at index %d: id cannot be empty", i+1)
		}
		if !t.End.After(t.Start) {
			return fmt.Errorf("seed tours: tour %q: end must be after start", t.ID)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed tours: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	venueStmt, err := tx.Prepare(`
	INSERT INTO venues (id, name, address, lat, lon, open_minute, close_minute, setup_seconds)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name,
		address = EXCLUDED.address,
		lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		open_minute = EXCLUDED.open_minute,
		close_minute = EXCLUDED.close_minute,
		setup_seconds = EXCLUDED.setup_seconds;
	`)
	if err != nil {
		return fmt.Errorf("seed tours: prepare venue insert: %w", err)
	}
	defer venueStmt.Close()

	for _, v := range data.Venues {
		if _, err := venueStmt.Exec(
			v.ID, v.Name, v.Address, v.Lat, v.Lon,
			v.OpenMinute, v.CloseMinute, v.SetupSeconds,
		); err != nil {
			return fmt.Errorf("seed tours: insert venue id=%q: %w", v.ID, err)
		}
	}

	tourStmt, err := tx.Prepare(`
	INSERT INTO tours (id, name, start_at, end_at, event_ids)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name,
		start_at = EXCLUDED.start_at,
		end_at = EXCLUDED.end_at,
		event_ids = EXCLUDED.event_ids;
	`)
	if err != nil {
		return fmt.Errorf("seed tours: prepare tour insert: %w", err)
	}
	defer tourStmt.Close()

	eventStmt, err := tx.Prepare(`
	INSERT INTO events (
		id, tour_id, venue_id, title, duration_seconds, setup_seconds,
		teardown_seconds, fixed_start, earliest_start, latest_start, priority
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (id) DO NOTHING;
	`)
	if err != nil {
		return fmt.Errorf("seed tours: prepare event insert: %w", err)
	}
	defer eventStmt.Close()

	for _, t := range data.Tours {
		eventIDs := make([]string, 0, len(t.Events))
		for _, e := range t.Events {
			eventIDs = append(eventIDs, e.ID)
		}
		idsJSON, err := json.Marshal(eventIDs)
		if err != nil {
			return fmt.Errorf("seed tours: marshal event ids for tour %q: %w", t.ID, err)
		}

		if _, err := tourStmt.Exec(t.ID, t.Name, t.Start, t.End, idsJSON); err != nil {
			return fmt.Errorf("seed tours: insert tour id=%q: %w", t.ID, err)
		}

		for _, e := range t.Events {
			if e.DurationSeconds <= 0 {
				return fmt.Errorf("seed tours: event %q: duration must be > 0", e.ID)
			}
			if _, err := eventStmt.Exec(
				e.ID, t.ID, e.VenueID, e.Title, e.DurationSeconds, e.SetupSeconds,
				e.TeardownSeconds, e.FixedStart, e.EarliestStart, e.LatestStart, e.Priority,
			); err != nil {
				return fmt.Errorf("seed tours: insert event id=%q: %w", e.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed tours: commit tx: %w", err)
	}

	return nil
}
