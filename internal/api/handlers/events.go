package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"tour-itinerary-service/internal/api/dto"
	"tour-itinerary-service/internal/domain"
	"tour-itinerary-service/internal/ports"
)

// EventHandler exposes CRUD endpoints for tour events.
type EventHandler struct {
	Repo  ports.EventRepository
	Tours ports.TourRepository
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.EventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.TourID) == "" {
		writeError(w, r, http.StatusBadRequest, "tour_id is required")
		return
	}

	// Reject events for tours that do not exist up front; a dangling
	// tour reference would only surface at generation time otherwise.
	if _, err := h.Tours.GetTour(r.Context(), req.TourID); err != nil {
		writeDomainError(w, r, err)
		return
	}

	e, ok := eventFromRequest(w, r, uuid.NewString(), req.TourID, &req)
	if !ok {
		return
	}

	if err := h.Repo.CreateEvent(r.Context(), e); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, eventResponse(e))
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	tourID := r.URL.Query().Get("tour_id")
	if tourID == "" {
		writeError(w, r, http.StatusBadRequest, "tour_id query parameter is required")
		return
	}

	events, err := h.Repo.ListEventsByTour(r.Context(), tourID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	res := dto.ListEventsResponse{Events: make([]dto.EventResponse, 0, len(events))}
	for _, e := range events {
		res.Events = append(res.Events, eventResponse(e))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.Repo.GetEvent(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, eventResponse(e))
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.EventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	existing, err := h.Repo.GetEvent(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	// Events cannot move between tours.
	e, ok := eventFromRequest(w, r, existing.ID, existing.TourID, &req)
	if !ok {
		return
	}

	if err := h.Repo.UpdateEvent(r.Context(), e); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, eventResponse(e))
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.DeleteEvent(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func eventFromRequest(w http.ResponseWriter, r *http.Request, id, tourID string, req *dto.EventRequest) (*domain.Event, bool) {
	if strings.TrimSpace(req.VenueID) == "" {
		writeError(w, r, http.StatusBadRequest, "venue_id is required")
		return nil, false
	}
	if req.DurationSeconds <= 0 {
		writeError(w, r, http.StatusBadRequest, "duration_seconds must be > 0")
		return nil, false
	}
	if req.SetupSeconds < 0 || req.TeardownSeconds < 0 {
		writeError(w, r, http.StatusBadRequest, "setup_seconds and teardown_seconds must be >= 0")
		return nil, false
	}
	if req.FixedStart != nil && (req.EarliestStart != nil || req.LatestStart != nil) {
		writeError(w, r, http.StatusBadRequest, "fixed_start excludes earliest_start/latest_start")
		return nil, false
	}

	return &domain.Event{
		ID:            id,
		TourID:        tourID,
		VenueID:       req.VenueID,
		Title:         strings.TrimSpace(req.Title),
		Duration:      time.Duration(req.DurationSeconds) * time.Second,
		Setup:         time.Duration(req.SetupSeconds) * time.Second,
		Teardown:      time.Duration(req.TeardownSeconds) * time.Second,
		FixedStart:    utcOrNil(req.FixedStart),
		EarliestStart: utcOrNil(req.EarliestStart),
		LatestStart:   utcOrNil(req.LatestStart),
		Priority:      req.Priority,
	}, true
}

func eventResponse(e *domain.Event) dto.EventResponse {
	return dto.EventResponse{
		ID:              e.ID,
		TourID:          e.TourID,
		VenueID:         e.VenueID,
		Title:           e.Title,
		DurationSeconds: int(e.Duration.Seconds()),
		SetupSeconds:    int(e.Setup.Seconds()),
		TeardownSeconds: int(e.Teardown.Seconds()),
		FixedStart:      e.FixedStart,
		EarliestStart:   e.EarliestStart,
		LatestStart:     e.LatestStart,
		Priority:        e.Priority,
	}
}

func utcOrNil(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
