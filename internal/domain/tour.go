package domain

import "time"

// Represents a tour: a named collection of events bounded by a date range.
// EventIDs preserves the order events were attached to the tour; the
// scheduler uses this order as the deterministic tie-breaker of last resort.
type Tour struct {
	ID       string
	Name     string
	Start    time.Time
	End      time.Time
	EventIDs []string
}

// Report whether the half-open interval [start, start+d) lies inside the tour range.
func (t *Tour) Contains(start time.Time, d time.Duration) bool {
	return !start.Before(t.Start) && !start.Add(d).After(t.End)
}
