package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"tour-itinerary-service/internal/api/dto"
	"tour-itinerary-service/internal/domain"
	"tour-itinerary-service/internal/ports"
)

// TourHandler exposes CRUD endpoints for tours.
type TourHandler struct {
	Repo ports.TourRepository
}

func (h *TourHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.TourRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}
	if !req.End.After(req.Start) {
		writeError(w, r, http.StatusBadRequest, "end must be after start")
		return
	}

	tour := &domain.Tour{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(req.Name),
		Start:    req.Start.UTC(),
		End:      req.End.UTC(),
		EventIDs: req.EventIDs,
	}

	if err := h.Repo.CreateTour(r.Context(), tour); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, tourResponse(tour))
}

func (h *TourHandler) List(w http.ResponseWriter, r *http.Request) {
	tours, err := h.Repo.ListTours(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	res := dto.ListToursResponse{Tours: make([]dto.TourResponse, 0, len(tours))}
	for _, t := range tours {
		res.Tours = append(res.Tours, tourResponse(t))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *TourHandler) Get(w http.ResponseWriter, r *http.Request) {
	tour, err := h.Repo.GetTour(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, tourResponse(tour))
}

func (h *TourHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.TourRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}
	if !req.End.After(req.Start) {
		writeError(w, r, http.StatusBadRequest, "end must be after start")
		return
	}

	tour := &domain.Tour{
		ID:       r.PathValue("id"),
		Name:     strings.TrimSpace(req.Name),
		Start:    req.Start.UTC(),
		End:      req.End.UTC(),
		EventIDs: req.EventIDs,
	}

	if err := h.Repo.UpdateTour(r.Context(), tour); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, tourResponse(tour))
}

func (h *TourHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.DeleteTour(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func tourResponse(t *domain.Tour) dto.TourResponse {
	eventIDs := t.EventIDs
	if eventIDs == nil {
		eventIDs = []string{}
	}
	return dto.TourResponse{
		ID:       t.ID,
		Name:     t.Name,
		Start:    t.Start,
		End:      t.End,
		EventIDs: eventIDs,
	}
}
