package domain

import (
	"fmt"
	"time"
)

const minutesPerDay = 24 * 60

// Represents a location hosting events. A venue has a daily availability
// window expressed in minutes from midnight UTC and a setup-time requirement
// applied between consecutive events held at the same venue.
// Venues are immutable for the duration of one generation run.
type Venue struct {
	ID          string
	Name        string
	Address     string
	Coords      *Coordinates
	OpenMinute  int
	CloseMinute int
	SetupTime   time.Duration
}

// LocationKey returns the string used to key travel-time lookups and caches.
// Coordinates take precedence over the address when both are present.
func (v *Venue) LocationKey() string {
	if v.Coords != nil {
		return fmt.Sprintf("%.6f,%.6f", v.Coords.Lat, v.Coords.Lon)
	}
	return v.Address
}

// Report whether the venue declares an availability window.
// An unset window (both bounds zero) means the venue is open all day.
func (v *Venue) HasWindow() bool {
	return !(v.OpenMinute == 0 && v.CloseMinute == 0)
}

// WindowLength returns the usable length of the daily window.
func (v *Venue) WindowLength() time.Duration {
	if !v.HasWindow() {
		return minutesPerDay * time.Minute
	}
	return time.Duration(v.CloseMinute-v.OpenMinute) * time.Minute
}
