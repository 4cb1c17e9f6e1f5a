package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"tour-itinerary-service/internal/domain"
	"tour-itinerary-service/internal/platform/obs"
	"tour-itinerary-service/internal/ports"
)

// ObjectiveEarliestStart is the only scheduling policy currently implemented:
// deterministic earliest-feasible-start greedy placement. The objective is
// part of the request contract so alternative policies can be added without
// changing the API.
const ObjectiveEarliestStart = "earliest-start"

type GenerateOptions struct {
	Objective string
}

type GenerateRequest struct {
	TourID  string
	Options GenerateOptions
}

// Generator runs the full itinerary generation pipeline for one tour:
// constraint model, feasibility scheduler, itinerary builder, persistence.
type Generator struct {
	Tours       ports.TourRepository
	Venues      ports.VenueRepository
	Events      ports.EventRepository
	Itineraries ports.ItineraryRepository
	Provider    ports.TravelTimeProvider
	Locker      ports.TourLocker
	Now         func() time.Time
}

// Generate produces an itinerary for the requested tour.
//
// Concurrent generation runs for the same tour are serialized through the
// per-tour lock, held across the whole pipeline. A failure to persist the
// finished itinerary does not discard the computation: the result is
// returned with PersistenceFailed set.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (_ *domain.Itinerary, err error) {
	defer obs.Time(ctx, "generate.Itinerary")(&err)

	if req.TourID == "" {
		return nil, fmt.Errorf("generate itinerary: %w: tour_id is required", domain.ErrInvalidInput)
	}
	if req.Options.Objective != "" && req.Options.Objective != ObjectiveEarliestStart {
		return nil, fmt.Errorf(
			"generate itinerary: %w: unsupported objective %q",
			domain.ErrInvalidInput, req.Options.Objective,
		)
	}

	release, err := g.Locker.AcquireTourLock(ctx, req.TourID)
	if err != nil {
		return nil, fmt.Errorf("generate itinerary: acquire tour lock: %w", err)
	}
	defer release()

	tour, err := g.Tours.GetTour(ctx, req.TourID)
	if err != nil {
		return nil, fmt.Errorf("generate itinerary: get tour %q: %w", req.TourID, err)
	}

	events, err := g.Events.ListEventsByTour(ctx, tour.ID)
	if err != nil {
		return nil, fmt.Errorf("generate itinerary: list events: %w", err)
	}

	venueIDs := make([]string, 0, len(events))
	seen := make(map[string]struct{}, len(events))
	for _, e := range events {
		if _, ok := seen[e.VenueID]; ok {
			continue
		}
		seen[e.VenueID] = struct{}{}
		venueIDs = append(venueIDs, e.VenueID)
	}

	venues, err := g.Venues.ListVenuesByIDs(ctx, venueIDs)
	if err != nil {
		return nil, fmt.Errorf("generate itinerary: list venues: %w", err)
	}

	cs, err := BuildConstraints(ctx, tour, venues, events, g.Provider)
	if err != nil {
		return nil, fmt.Errorf("generate itinerary: %w", err)
	}

	assignments, conflicts := Schedule(cs)

	itinerary := BuildItinerary(tour.ID, assignments, conflicts, g.now())

	if err := g.Itineraries.SaveItinerary(ctx, itinerary); err != nil {
		// The computation succeeded; surface the save failure as a flag
		// rather than losing the schedule.
		log.Printf("save itinerary failed: tour_id=%s itinerary_id=%s err=%v", tour.ID, itinerary.ID, err)
		itinerary.PersistenceFailed = true
	}

	return itinerary, nil
}

func (g *Generator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}
