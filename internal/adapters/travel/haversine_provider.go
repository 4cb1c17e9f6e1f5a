package travel

import (
	"context"
	"fmt"
	"math"

	"tour-itinerary-service/internal/domain"
	"tour-itinerary-service/internal/ports"
)

const earthRadiusMeters = 6371000.0

// HaversineTravelProvider estimates travel time from great-circle distance
// at a constant average speed. It only understands "lat,lon" location keys
// and needs no network access or API key, which makes it the default
// provider for local runs where every venue carries coordinates.
type HaversineTravelProvider struct {
	// Average speed in meters per second used to derive durations.
	SpeedMPS float64
}

func NewHaversineTravelProvider() *HaversineTravelProvider {
	// Roughly highway driving pace.
	return &HaversineTravelProvider{SpeedMPS: 18.0}
}

func (p *HaversineTravelProvider) TravelTime(
	ctx context.Context,
	origin string,
	destination string,
) (ports.TravelResult, error) {
	from, ok := domain.ParseCoordinates(origin)
	if !ok {
		return ports.TravelResult{}, fmt.Errorf(
			"haversine travel time: origin %q is not a coordinate pair (venue coordinates required)", origin,
		)
	}
	to, ok := domain.ParseCoordinates(destination)
	if !ok {
		return ports.TravelResult{}, fmt.Errorf(
			"haversine travel time: destination %q is not a coordinate pair (venue coordinates required)", destination,
		)
	}

	meters := haversineMeters(from, to)
	seconds := 0
	if p.SpeedMPS > 0 {
		seconds = int(math.Round(meters / p.SpeedMPS))
	}

	return ports.TravelResult{
		DistanceMeters:  int(math.Round(meters)),
		DurationSeconds: seconds,
	}, nil
}

func haversineMeters(a, b domain.Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}
