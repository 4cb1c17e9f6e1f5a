package dto

type VenueRequest struct {
	Name         string   `json:"name"`
	Address      string   `json:"address"`
	Lat          *float64 `json:"lat"`
	Lon          *float64 `json:"lon"`
	OpenMinute   int      `json:"open_minute"`
	CloseMinute  int      `json:"close_minute"`
	SetupSeconds int      `json:"setup_seconds"`
}

type VenueResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Address      string   `json:"address"`
	Lat          *float64 `json:"lat"`
	Lon          *float64 `json:"lon"`
	OpenMinute   int      `json:"open_minute"`
	CloseMinute  int      `json:"close_minute"`
	SetupSeconds int      `json:"setup_seconds"`
}

type ListVenuesResponse struct {
	Venues []VenueResponse `json:"venues"`
}
