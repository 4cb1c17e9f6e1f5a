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

// Postgres-backed implementation of the EventRepository port.
type PostgresEventRepository struct{ DB *sql.DB }

func NewPostgresEventRepository(db *sql.DB) *PostgresEventRepository {
	return &PostgresEventRepository{DB: db}
}

func (s *PostgresEventRepository) CreateEvent(ctx context.Context, e *domain.Event) error {
	if s.DB == nil {
		return errors.New("event repository: DB is nil")
	}

	query := `
	INSERT INTO events (
		id, tour_id, venue_id, title, duration_seconds, setup_seconds,
		teardown_seconds, fixed_start, earliest_start, latest_start, priority
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	if _, err := s.DB.ExecContext(ctx, query,
		e.ID, e.TourID, e.VenueID, e.Title,
		int(e.Duration.Seconds()), int(e.Setup.Seconds()), int(e.Teardown.Seconds()),
		e.FixedStart, e.EarliestStart, e.LatestStart, e.Priority,
	); err != nil {
		return fmt.Errorf("create event id=%q: %w", e.ID, err)
	}

	return nil
}

func (s *PostgresEventRepository) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	if s.DB == nil {
		return nil, errors.New("event repository: DB is nil")
	}

	query := eventSelect + ` WHERE id = $1;`
	e, err := scanEvent(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get event id=%q: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get event id=%q: %w", id, err)
	}

	return e, nil
}

// Return all events attached to a tour in creation order.
func (s *PostgresEventRepository) ListEventsByTour(ctx context.Context, tourID string) ([]*domain.Event, error) {
	if s.DB == nil {
		return nil, errors.New("event repository: DB is nil")
	}

	query := eventSelect + ` WHERE tour_id = $1 ORDER BY created_at, id;`
	rows, err := s.DB.QueryContext(ctx, query, tourID)
	if err != nil {
		return nil, fmt.Errorf("list events: query events table: %w", err)
	}
	defer rows.Close()

	events := make([]*domain.Event, 0, 32)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("list events: scan row: %w", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: row iteration: %w", err)
	}

	return events, nil
}

func (s *PostgresEventRepository) UpdateEvent(ctx context.Context, e *domain.Event) error {
	if s.DB == nil {
		return errors.New("event repository: DB is nil")
	}

	query := `
	UPDATE events
	SET venue_id = $2, title = $3, duration_seconds = $4, setup_seconds = $5,
		teardown_seconds = $6, fixed_start = $7, earliest_start = $8,
		latest_start = $9, priority = $10
	WHERE id = $1;
	`
	res, err := s.DB.ExecContext(ctx, query,
		e.ID, e.VenueID, e.Title,
		int(e.Duration.Seconds()), int(e.Setup.Seconds()), int(e.Teardown.Seconds()),
		e.FixedStart, e.EarliestStart, e.LatestStart, e.Priority,
	)
	if err != nil {
		return fmt.Errorf("update event id=%q: %w", e.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update event id=%q: %w", e.ID, ports.ErrNotFound)
	}

	return nil
}

func (s *PostgresEventRepository) DeleteEvent(ctx context.Context, id string) error {
	if s.DB == nil {
		return errors.New("event repository: DB is nil")
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete event id=%q: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete event id=%q: %w", id, ports.ErrNotFound)
	}

	return nil
}

const eventSelect = `
	SELECT id, tour_id, venue_id, title, duration_seconds, setup_seconds,
		teardown_seconds, fixed_start, earliest_start, latest_start, priority
	FROM events`

func scanEvent(row rowScanner) (*domain.Event, error) {
	var e domain.Event
	var durationSeconds, setupSeconds, teardownSeconds int
	var fixedStart, earliestStart, latestStart sql.NullTime
	if err := row.Scan(
		&e.ID, &e.TourID, &e.VenueID, &e.Title,
		&durationSeconds, &setupSeconds, &teardownSeconds,
		&fixedStart, &earliestStart, &latestStart, &e.Priority,
	); err != nil {
		return nil, err
	}
	e.Duration = time.Duration(durationSeconds) * time.Second
	e.Setup = time.Duration(setupSeconds) * time.Second
	e.Teardown = time.Duration(teardownSeconds) * time.Second
	if fixedStart.Valid {
		t := fixedStart.Time.UTC()
		e.FixedStart = &t
	}
	if earliestStart.Valid {
		t := earliestStart.Time.UTC()
		e.EarliestStart = &t
	}
	if latestStart.Valid {
		t := latestStart.Time.UTC()
		e.LatestStart = &t
	}
	return &e, nil
}
