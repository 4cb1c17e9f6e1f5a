package ports

import "context"

// Distance and travel duration between two venue locations.
type TravelResult struct {
	DistanceMeters  int
	DurationSeconds int
}

// Contract for retrieving travel time between venue locations.
// Keys are venue location strings (coordinates or addresses), already
// normalized by the caller.
type TravelTimeProvider interface {
	// Return travel distance and estimated duration between two locations.
	TravelTime(ctx context.Context, origin string, destination string) (TravelResult, error)
}
