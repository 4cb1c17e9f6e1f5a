package handlers

import (
	"errors"
	"net/http"
	"time"

	"tour-itinerary-service/internal/api/dto"
	"tour-itinerary-service/internal/domain"
	"tour-itinerary-service/internal/platform/metrics"
	"tour-itinerary-service/internal/ports"
	"tour-itinerary-service/internal/services"
)

// ItineraryHandler exposes itinerary generation and retrieval.
type ItineraryHandler struct {
	Generator *services.Generator
	Repo      ports.ItineraryRepository
}

// Generate runs the full generation pipeline for a tour. The response always
// carries both the itinerary and the conflict list; a generation that
// schedules nothing but completes is a 200 with conflicts, not an error.
func (h *ItineraryHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req dto.GenerateItineraryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	genReq := services.GenerateRequest{TourID: req.TourID}
	if req.Options != nil {
		genReq.Options.Objective = req.Options.Objective
	}

	start := time.Now()
	itinerary, err := h.Generator.Generate(r.Context(), genReq)
	metrics.GenerationDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.GenerationRuns.WithLabelValues(generationOutcome(err)).Inc()
		writeDomainError(w, r, err)
		return
	}

	metrics.GenerationRuns.WithLabelValues("ok").Inc()
	for _, c := range itinerary.Conflicts {
		metrics.GenerationConflicts.WithLabelValues(string(c.Reason)).Inc()
	}

	res := dto.GenerateItineraryResponse{
		Itinerary: itineraryResponse(itinerary),
		Conflicts: conflictResponses(itinerary.Conflicts),
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *ItineraryHandler) List(w http.ResponseWriter, r *http.Request) {
	tourID := r.URL.Query().Get("tour_id")
	if tourID == "" {
		writeError(w, r, http.StatusBadRequest, "tour_id query parameter is required")
		return
	}

	itineraries, err := h.Repo.ListItinerariesByTour(r.Context(), tourID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	res := dto.ListItinerariesResponse{
		Itineraries: make([]dto.ItineraryResponse, 0, len(itineraries)),
	}
	for _, it := range itineraries {
		res.Itineraries = append(res.Itineraries, itineraryResponse(it))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func generationOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrTravelLookup):
		return "travel_lookup_failed"
	case errors.Is(err, domain.ErrLockTimeout):
		return "lock_timeout"
	case errors.Is(err, ports.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func itineraryResponse(it *domain.Itinerary) dto.ItineraryResponse {
	days := make([]dto.ItineraryDayResponse, 0, len(it.Days))
	for _, d := range it.Days {
		assignments := make([]dto.AssignmentResponse, 0, len(d.Assignments))
		for _, a := range d.Assignments {
			assignments = append(assignments, dto.AssignmentResponse{
				EventID:             a.EventID,
				VenueID:             a.VenueID,
				Start:               a.Start,
				End:                 a.End,
				TravelBufferSeconds: int(a.TravelBuffer.Seconds()),
			})
		}
		days = append(days, dto.ItineraryDayResponse{Date: d.Date, Assignments: assignments})
	}

	return dto.ItineraryResponse{
		ID:                it.ID,
		TourID:            it.TourID,
		GeneratedAt:       it.GeneratedAt,
		Days:              days,
		Conflicts:         conflictResponses(it.Conflicts),
		PersistenceFailed: it.PersistenceFailed,
	}
}

func conflictResponses(conflicts []domain.Conflict) []dto.ConflictResponse {
	out := make([]dto.ConflictResponse, 0, len(conflicts))
	for _, c := range conflicts {
		out = append(out, dto.ConflictResponse{
			EventID: c.EventID,
			Reason:  string(c.Reason),
			Detail:  c.Detail,
		})
	}
	return out
}
