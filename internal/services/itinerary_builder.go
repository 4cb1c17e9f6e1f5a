package services

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"tour-itinerary-service/internal/domain"
)

// BuildItinerary assembles scheduler output into the day-grouped itinerary
// returned to the caller. Assignments are ordered chronologically and grouped
// by UTC calendar day. The conflict list is attached verbatim; the builder
// never resolves conflicts on its own.
func BuildItinerary(
	tourID string,
	assignments []domain.Assignment,
	conflicts []domain.Conflict,
	generatedAt time.Time,
) *domain.Itinerary {
	ordered := make([]domain.Assignment, len(assignments))
	copy(ordered, assignments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start.Before(ordered[j].Start)
	})

	var days []domain.ItineraryDay
	for _, a := range ordered {
		date := a.Start.UTC().Format("2006-01-02")
		if len(days) == 0 || days[len(days)-1].Date != date {
			days = append(days, domain.ItineraryDay{Date: date})
		}
		last := &days[len(days)-1]
		last.Assignments = append(last.Assignments, a)
	}

	if conflicts == nil {
		conflicts = []domain.Conflict{}
	}

	return &domain.Itinerary{
		ID:          uuid.NewString(),
		TourID:      tourID,
		GeneratedAt: generatedAt.UTC(),
		Days:        days,
		Conflicts:   conflicts,
	}
}
