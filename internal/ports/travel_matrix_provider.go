package ports

import "context"

// Optional extension of TravelTimeProvider that supports batched lookups.
type TravelMatrixProvider interface {
	TravelTimeProvider
	// Return travel results from one origin to many destinations.
	TravelTimes(ctx context.Context, origin string, destinations []string) (map[string]TravelResult, error)
}
