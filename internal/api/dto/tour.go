package dto

import "time"

type TourRequest struct {
	Name     string    `json:"name"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	EventIDs []string  `json:"event_ids"`
}

type TourResponse struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	EventIDs []string  `json:"event_ids"`
}

type ListToursResponse struct {
	Tours []TourResponse `json:"tours"`
}
