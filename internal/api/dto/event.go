package dto

import "time"

type EventRequest struct {
	TourID          string     `json:"tour_id"`
	VenueID         string     `json:"venue_id"`
	Title           string     `json:"title"`
	DurationSeconds int        `json:"duration_seconds"`
	SetupSeconds    int        `json:"setup_seconds"`
	TeardownSeconds int        `json:"teardown_seconds"`
	FixedStart      *time.Time `json:"fixed_start"`
	EarliestStart   *time.Time `json:"earliest_start"`
	LatestStart     *time.Time `json:"latest_start"`
	Priority        int        `json:"priority"`
}

type EventResponse struct {
	ID              string     `json:"id"`
	TourID          string     `json:"tour_id"`
	VenueID         string     `json:"venue_id"`
	Title           string     `json:"title"`
	DurationSeconds int        `json:"duration_seconds"`
	SetupSeconds    int        `json:"setup_seconds"`
	TeardownSeconds int        `json:"teardown_seconds"`
	FixedStart      *time.Time `json:"fixed_start"`
	EarliestStart   *time.Time `json:"earliest_start"`
	LatestStart     *time.Time `json:"latest_start"`
	Priority        int        `json:"priority"`
}

type ListEventsResponse struct {
	Events []EventResponse `json:"events"`
}
