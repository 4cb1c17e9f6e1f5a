package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tour-itinerary-service/internal/domain"
	"tour-itinerary-service/internal/ports"
)

// Postgres-backed implementation of the VenueRepository port.
type PostgresVenueRepository struct{ DB *sql.DB }

func NewPostgresVenueRepository(db *sql.DB) *PostgresVenueRepository {
	return &PostgresVenueRepository{DB: db}
}

func (s *PostgresVenueRepository) CreateVenue(ctx context.Context, v *domain.Venue) error {
	if s.DB == nil {
		return errors.New("venue repository: DB is nil")
	}

	var lat, lon *float64
	if v.Coords != nil {
		lat, lon = &v.Coords.Lat, &v.Coords.Lon
	}

	query := `
	INSERT INTO venues (id, name, address, lat, lon, open_minute, close_minute, setup_seconds)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	if _, err := s.DB.ExecContext(ctx, query,
		v.ID, v.Name, v.Address, lat, lon,
		v.OpenMinute, v.CloseMinute, int(v.SetupTime.Seconds()),
	); err != nil {
		return fmt.Errorf("create venue id=%q: %w", v.ID, err)
	}

	return nil
}

func (s *PostgresVenueRepository) GetVenue(ctx context.Context, id string) (*domain.Venue, error) {
	if s.DB == nil {
		return nil, errors.New("venue repository: DB is nil")
	}

	query := venueSelect + ` WHERE id = $1;`
	v, err := scanVenue(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get venue id=%q: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get venue id=%q: %w", id, err)
	}

	return v, nil
}

func (s *PostgresVenueRepository) ListVenues(ctx context.Context) ([]*domain.Venue, error) {
	if s.DB == nil {
		return nil, errors.New("venue repository: DB is nil")
	}

	return s.queryVenues(ctx, venueSelect+` ORDER BY name, id;`)
}

// Retrieve the venues for the given ids. Missing ids are absent from the
// result rather than an error.
func (s *PostgresVenueRepository) ListVenuesByIDs(ctx context.Context, ids []string) ([]*domain.Venue, error) {
	if s.DB == nil {
		return nil, errors.New("venue repository: DB is nil")
	}

	if len(ids) == 0 {
		return []*domain.Venue{}, nil
	}

	return s.queryVenues(ctx, venueSelect+` WHERE id = ANY($1::text[]) ORDER BY id;`, ids)
}

func (s *PostgresVenueRepository) UpdateVenue(ctx context.Context, v *domain.Venue) error {
	if s.DB == nil {
		return errors.New("venue repository: DB is nil")
	}

	var lat, lon *float64
	if v.Coords != nil {
		lat, lon = &v.Coords.Lat, &v.Coords.Lon
	}

	query := `
	UPDATE venues
	SET name = $2, address = $3, lat = $4, lon = $5,
		open_minute = $6, close_minute = $7, setup_seconds = $8
	WHERE id = $1;
	`
	res, err := s.DB.ExecContext(ctx, query,
		v.ID, v.Name, v.Address, lat, lon,
		v.OpenMinute, v.CloseMinute, int(v.SetupTime.Seconds()),
	)
	if err != nil {
		return fmt.Errorf("update venue id=%q: %w", v.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update venue id=%q: %w", v.ID, ports.ErrNotFound)
	}

	return nil
}

func (s *PostgresVenueRepository) DeleteVenue(ctx context.Context, id string) error {
	if s.DB == nil {
		return errors.New("venue repository: DB is nil")
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM venues WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete venue id=%q: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete venue id=%q: %w", id, ports.ErrNotFound)
	}

	return nil
}

const venueSelect = `
	SELECT id, name, address, lat, lon, open_minute, close_minute, setup_seconds
	FROM venues`

type rowScanner interface{ Scan(dest ...any) error }

func scanVenue(row rowScanner) (*domain.Venue, error) {
	var v domain.Venue
	var lat, lon sql.NullFloat64
	var setupSeconds int
	if err := row.Scan(
		&v.ID, &v.Name, &v.Address, &lat, &lon,
		&v.OpenMinute, &v.CloseMinute, &setupSeconds,
	); err != nil {
		return nil, err
	}
	if lat.Valid && lon.Valid {
		v.Coords = &domain.Coordinates{Lat: lat.Float64, Lon: lon.Float64}
	}
	v.SetupTime = time.Duration(setupSeconds) * time.Second
	return &v, nil
}

func (s *PostgresVenueRepository) queryVenues(ctx context.Context, query string, args ...any) ([]*domain.Venue, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list venues: query venues table: %w", err)
	}
	defer rows.Close()

	venues := make([]*domain.Venue, 0, 16)
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("list venues: scan row: %w", err)
		}
		venues = append(venues, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list venues: row iteration: %w", err)
	}

	return venues, nil
}
