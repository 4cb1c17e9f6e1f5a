package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tour-itinerary-service/internal/domain"
)

// Postgres-backed implementation of the ItineraryRepository port.
// Day and conflict structure is stored as a JSONB payload: itineraries are
// written once per generation run and read back whole, never queried by
// inner fields.
type PostgresItineraryRepository struct{ DB *sql.DB }

func NewPostgresItineraryRepository(db *sql.DB) *PostgresItineraryRepository {
	return &PostgresItineraryRepository{DB: db}
}

type itineraryPayload struct {
	Days      []domain.ItineraryDay `json:"days"`
	Conflicts []domain.Conflict     `json:"conflicts"`
}

func (s *PostgresItineraryRepository) SaveItinerary(ctx context.Context, it *domain.Itinerary) error {
	if s.DB == nil {
		return errors.New("itinerary repository: DB is nil")
	}

	payload, err := json.Marshal(itineraryPayload{Days: it.Days, Conflicts: it.Conflicts})
	if err != nil {
		return fmt.Errorf("save itinerary id=%q: marshal payload: %w", it.ID, err)
	}

	query := `
	INSERT INTO itineraries (id, tour_id, generated_at, payload)
	VALUES ($1, $2, $3, $4);
	`
	if _, err := s.DB.ExecContext(ctx, query, it.ID, it.TourID, it.GeneratedAt, payload); err != nil {
		return fmt.Errorf("save itinerary id=%q: %w", it.ID, err)
	}

	return nil
}

func (s *PostgresItineraryRepository) ListItinerariesByTour(ctx context.Context, tourID string) ([]*domain.Itinerary, error) {
	if s.DB == nil {
		return nil, errors.New("itinerary repository: DB is nil")
	}

	query := `
	SELECT id, tour_id, generated_at, payload
	FROM itineraries
	WHERE tour_id = $1
	ORDER BY generated_at DESC, id;
	`
	rows, err := s.DB.QueryContext(ctx, query, tourID)
	if err != nil {
		return nil, fmt.Errorf("list itineraries: query itineraries table: %w", err)
	}
	defer rows.Close()

	itineraries := make([]*domain.Itinerary, 0, 8)
	for rows.Next() {
		var it domain.Itinerary
		var generatedAt time.Time
		var payload []byte
		if err := rows.Scan(&it.ID, &it.TourID, &generatedAt, &payload); err != nil {
			return nil, fmt.Errorf("list itineraries: scan row: %w", err)
		}

		var p itineraryPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("list itineraries: unmarshal payload id=%q: %w", it.ID, err)
		}
		it.GeneratedAt = generatedAt.UTC()
		it.Days = p.Days
		it.Conflicts = p.Conflicts
		itineraries = append(itineraries, &it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list itineraries: row iteration: %w", err)
	}

	return itineraries, nil
}
