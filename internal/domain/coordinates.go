package domain

import (
	"strconv"
	"strings"
)

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64
	Lat float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// ParseCoordinates parses a "lat,lon" location key. Returns false for
// anything that is not a plain coordinate pair (e.g. a street address).
func ParseCoordinates(s string) (Coordinates, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Coordinates{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinates{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinates{}, false
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Coordinates{}, false
	}
	return Coordinates{Lat: lat, Lon: lon}, true
}
