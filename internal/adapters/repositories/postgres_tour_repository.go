package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"tour-itinerary-service/internal/domain"
	"tour-itinerary-service/internal/ports"
)

// Postgres-backed implementation of the TourRepository port.
type PostgresTourRepository struct{ DB *sql.DB }

func NewPostgresTourRepository(db *sql.DB) *PostgresTourRepository {
	return &PostgresTourRepository{DB: db}
}

func (s *PostgresTourRepository) CreateTour(ctx context.Context, t *domain.Tour) error {
	if s.DB == nil {
		return errors.New("tour repository: DB is nil")
	}

	idsJSON, err := json.Marshal(t.EventIDs)
	if err != nil {
		return fmt.Errorf("create tour: marshal event ids: %w", err)
	}

	query := `
	INSERT INTO tours (id, name, start_at, end_at, event_ids)
	VALUES ($1, $2, $3, $4, $5);
	`
	if _, err := s.DB.ExecContext(ctx, query, t.ID, t.Name, t.Start, t.End, idsJSON); err != nil {
		return fmt.Errorf("create tour id=%q: %w", t.ID, err)
	}

	return nil
}

func (s *PostgresTourRepository) GetTour(ctx context.Context, id string) (*domain.Tour, error) {
	if s.DB == nil {
		return nil, errors.New("tour repository: DB is nil")
	}

	query := `
	SELECT id, name, start_at, end_at, event_ids
	FROM tours
	WHERE id = $1;
	`
	var t domain.Tour
	var idsJSON []byte
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Name, &t.Start, &t.End, &idsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get tour id=%q: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get tour id=%q: %w", id, err)
	}

	if err := json.Unmarshal(idsJSON, &t.EventIDs); err != nil {
		return nil, fmt.Errorf("get tour id=%q: unmarshal event ids: %w", id, err)
	}

	return &t, nil
}

func (s *PostgresTourRepository) ListTours(ctx context.Context) ([]*domain.Tour, error) {
	if s.DB == nil {
		return nil, errors.New("tour repository: DB is nil")
	}

	query := `
	SELECT id, name, start_at, end_at, event_ids
	FROM tours
	ORDER BY start_at, id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tours: query tours table: %w", err)
	}
	defer rows.Close()

	tours := make([]*domain.Tour, 0, 16)
	for rows.Next() {
		var t domain.Tour
		var idsJSON []byte
		if err := rows.Scan(&t.ID, &t.Name, &t.Start, &t.End, &idsJSON); err != nil {
			return nil, fmt.Errorf("list tours: scan row: %w", err)
		}
		if err := json.Unmarshal(idsJSON, &t.EventIDs); err != nil {
			return nil, fmt.Errorf("list tours: unmarshal event ids: %w", err)
		}
		tours = append(tours, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tours: row iteration: %w", err)
	}

	return tours, nil
}

func (s *PostgresTourRepository) UpdateTour(ctx context.Context, t *domain.Tour) error {
	if s.DB == nil {
		return errors.New("tour repository: DB is nil")
	}

	idsJSON, err := json.Marshal(t.EventIDs)
	if err != nil {
		return fmt.Errorf("update tour: marshal event ids: %w", err)
	}

	query := `
	UPDATE tours
	SET name = $2, start_at = $3, end_at = $4, event_ids = $5
	WHERE id = $1;
	`
	res, err := s.DB.ExecContext(ctx, query, t.ID, t.Name, t.Start, t.End, idsJSON)
	if err != nil {
		return fmt.Errorf("update tour id=%q: %w", t.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update tour id=%q: %w", t.ID, ports.ErrNotFound)
	}

	return nil
}

func (s *PostgresTourRepository) DeleteTour(ctx context.Context, id string) error {
	if s.DB == nil {
		return errors.New("tour repository: DB is nil")
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM tours WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete tour id=%q: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete tour id=%q: %w", id, ports.ErrNotFound)
	}

	return nil
}
