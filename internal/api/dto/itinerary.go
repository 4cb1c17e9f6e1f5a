package dto

import "time"

type GenerateOptions struct {
	Objective string `json:"objective"`
}

type GenerateItineraryRequest struct {
	TourID  string           `json:"tour_id"`
	Options *GenerateOptions `json:"options"`
}

type AssignmentResponse struct {
	EventID             string    `json:"event_id"`
	VenueID             string    `json:"venue_id"`
	Start               time.Time `json:"start"`
	End                 time.Time `json:"end"`
	TravelBufferSeconds int       `json:"travel_buffer_seconds"`
}

type ItineraryDayResponse struct {
	Date        string               `json:"date"`
	Assignments []AssignmentResponse `json:"assignments"`
}

type ConflictResponse struct {
	EventID string `json:"event_id"`
	Reason  string `json:"reason"`
	Detail  string `json:"detail"`
}

type ItineraryResponse struct {
	ID                string                 `json:"id"`
	TourID            string                 `json:"tour_id"`
	GeneratedAt       time.Time              `json:"generated_at"`
	Days              []ItineraryDayResponse `json:"days"`
	Conflicts         []ConflictResponse     `json:"conflicts"`
	PersistenceFailed bool                   `json:"persistence_failed"`
}

type GenerateItineraryResponse struct {
	Itinerary ItineraryResponse  `json:"itinerary"`
	Conflicts []ConflictResponse `json:"conflicts"`
}

type ListItinerariesResponse struct {
	Itineraries []ItineraryResponse `json:"itineraries"`
}
