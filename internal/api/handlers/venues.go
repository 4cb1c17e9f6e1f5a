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

// VenueHandler exposes CRUD endpoints for venues.
type VenueHandler struct {
	Repo ports.VenueRepository
}

func (h *VenueHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.VenueRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	v, ok := venueFromRequest(w, r, uuid.NewString(), &req)
	if !ok {
		return
	}

	if err := h.Repo.CreateVenue(r.Context(), v); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, venueResponse(v))
}

func (h *VenueHandler) List(w http.ResponseWriter, r *http.Request) {
	venues, err := h.Repo.ListVenues(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	res := dto.ListVenuesResponse{Venues: make([]dto.VenueResponse, 0, len(venues))}
	for _, v := range venues {
		res.Venues = append(res.Venues, venueResponse(v))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *VenueHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.Repo.GetVenue(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, venueResponse(v))
}

func (h *VenueHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.VenueRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	v, ok := venueFromRequest(w, r, r.PathValue("id"), &req)
	if !ok {
		return
	}

	if err := h.Repo.UpdateVenue(r.Context(), v); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, venueResponse(v))
}

func (h *VenueHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.DeleteVenue(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func venueFromRequest(w http.ResponseWriter, r *http.Request, id string, req *dto.VenueRequest) (*domain.Venue, bool) {
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, r, http.StatusBadRequest, "name is required")
		return nil, false
	}
	if (req.Lat == nil) != (req.Lon == nil) {
		writeError(w, r, http.StatusBadRequest, "lat and lon must be provided together")
		return nil, false
	}
	if req.Lat == nil && strings.TrimSpace(req.Address) == "" {
		writeError(w, r, http.StatusBadRequest, "either coordinates or an address is required")
		return nil, false
	}
	if req.OpenMinute < 0 || req.CloseMinute > 24*60 || req.CloseMinute < req.OpenMinute {
		writeError(w, r, http.StatusBadRequest, "open_minute/close_minute must describe a valid daily window")
		return nil, false
	}
	if req.SetupSeconds < 0 {
		writeError(w, r, http.StatusBadRequest, "setup_seconds must be >= 0")
		return nil, false
	}

	v := &domain.Venue{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		Address:     strings.TrimSpace(req.Address),
		OpenMinute:  req.OpenMinute,
		CloseMinute: req.CloseMinute,
		SetupTime:   time.Duration(req.SetupSeconds) * time.Second,
	}
	if req.Lat != nil {
		v.Coords = &domain.Coordinates{Lat: *req.Lat, Lon: *req.Lon}
	}
	return v, true
}

func venueResponse(v *domain.Venue) dto.VenueResponse {
	res := dto.VenueResponse{
		ID:           v.ID,
		Name:         v.Name,
		Address:      v.Address,
		OpenMinute:   v.OpenMinute,
		CloseMinute:  v.CloseMinute,
		SetupSeconds: int(v.SetupTime.Seconds()),
	}
	if v.Coords != nil {
		lat, lon := v.Coords.Lat, v.Coords.Lon
		res.Lat, res.Lon = &lat, &lon
	}
	return res
}
