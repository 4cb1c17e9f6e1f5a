package ports

import (
	"context"
	"errors"

	"tour-itinerary-service/internal/domain"
)

// Returned by repositories when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Port: boundary for Tour persistence.
type TourRepository interface {
	CreateTour(ctx context.Context, t *domain.Tour) error
	GetTour(ctx context.Context, id string) (*domain.Tour, error)
	ListTours(ctx context.Context) ([]*domain.Tour, error)
	UpdateTour(ctx context.Context, t *domain.Tour) error
	DeleteTour(ctx context.Context, id string) error
}

// Port: boundary for Venue persistence.
type VenueRepository interface {
	CreateVenue(ctx context.Context, v *domain.Venue) error
	GetVenue(ctx context.Context, id string) (*domain.Venue, error)
	ListVenues(ctx context.Context) ([]*domain.Venue, error)
	// Retrieve the venues for the given ids. Missing ids are simply absent
	// from the result; the caller decides whether that is an error.
	ListVenuesByIDs(ctx context.Context, ids []string) ([]*domain.Venue, error)
	UpdateVenue(ctx context.Context, v *domain.Venue) error
	DeleteVenue(ctx context.Context, id string) error
}

// Port: boundary for Event persistence.
type EventRepository interface {
	CreateEvent(ctx context.Context, e *domain.Event) error
	GetEvent(ctx context.Context, id string) (*domain.Event, error)
	// Retrieve all events attached to a tour in creation order.
	ListEventsByTour(ctx context.Context, tourID string) ([]*domain.Event, error)
	UpdateEvent(ctx context.Context, e *domain.Event) error
	DeleteEvent(ctx context.Context, id string) error
}

// Port: boundary for persisting generated itineraries.
type ItineraryRepository interface {
	SaveItinerary(ctx context.Context, it *domain.Itinerary) error
	ListItinerariesByTour(ctx context.Context, tourID string) ([]*domain.Itinerary, error)
}
