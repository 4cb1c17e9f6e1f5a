package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tour-itinerary-service/internal/domain"
	"tour-itinerary-service/internal/platform/obs"
)

// SQLGeocodeCache persists geocoded venue addresses so repeat generation
// runs for the same venues skip the external geocoding endpoint. Only
// address location keys land here; coordinate-keyed venues parse directly
// and never reach the cache.
type SQLGeocodeCache struct {
	DB *sql.DB
}

func NewSQLGeocodeCache(db *sql.DB) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db}
}

// GetMany returns cached coordinates for the given venue addresses.
// Addresses without a cached entry are simply absent from the result.
func (s *SQLGeocodeCache) GetMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "geocode.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("geocode cache: DB is nil")
	}

	uniq := dedupeAddresses(addresses)
	if len(uniq) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	query := `
	SELECT address, lon, lat
	FROM geocode_cache
	WHERE address = ANY($1::text[]);
	`
	rows, err := s.DB.QueryContext(ctx, query, uniq)
	if err != nil {
		return nil, fmt.Errorf("geocode cache: query geocode_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.Coordinates, len(uniq))
	for rows.Next() {
		var addr string
		var lon, lat float64
		if err := rows.Scan(&addr, &lon, &lat); err != nil {
			return nil, fmt.Errorf("geocode cache: scan row: %w", err)
		}
		out[addr] = domain.Coordinates{Lon: lon, Lat: lat}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("geocode cache: row iteration: %w", err)
	}

	return out, nil
}

// PutMany upserts freshly geocoded venue addresses. Geocoding results are
// stable enough to keep indefinitely; a changed venue address is a new key.
func (s *SQLGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) error {
	if s.DB == nil {
		return errors.New("geocode cache: DB is nil")
	}
	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("geocode cache: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO geocode_cache (address, lon, lat)
	VALUES ($1, $2, $3)
	ON CONFLICT (address) DO UPDATE
	SET lon = EXCLUDED.lon,
		lat = EXCLUDED.lat;
	`)
	if err != nil {
		return fmt.Errorf("geocode cache: prepare upsert: %w", err)
	}
	defer stmt.Close()

	for addr, c := range results {
		if strings.TrimSpace(addr) == "" {
			return errors.New("geocode cache: empty address key")
		}
		if _, err := stmt.ExecContext(ctx, addr, c.Lon, c.Lat); err != nil {
			return fmt.Errorf("geocode cache: upsert address=%q: %w", addr, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("geocode cache: commit tx: %w", err)
	}

	return nil
}

// dedupeAddresses trims and deduplicates lookup keys, preserving order.
func dedupeAddresses(addresses []string) []string {
	seen := make(map[string]struct{}, len(addresses))
	uniq := make([]string, 0, len(addresses))
	for _, a := range addresses {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		uniq = append(uniq, a)
	}
	return uniq
}
