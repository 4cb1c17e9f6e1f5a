package domain

import "time"

// ConflictReason classifies why an event could not be scheduled.
type ConflictReason string

const (
	// No feasible gap remained on the tour timeline before the event's
	// latest allowed start.
	ReasonNoSlot ConflictReason = "NO_SLOT"
	// The event cannot fit the venue's daily availability window.
	ReasonVenueUnavailable ConflictReason = "VENUE_UNAVAILABLE"
	// The event's own earliest/latest window is empty or violated.
	ReasonWindowViolation ConflictReason = "WINDOW_VIOLATION"
	// Two fixed-date events overlap at the same venue.
	ReasonFixedOverlap ConflictReason = "FIXED_OVERLAP"
)

// An event the scheduler could not place, with the reason it was rejected.
// Conflicts are data, not errors: they ride alongside successful assignments.
type Conflict struct {
	EventID string
	Reason  ConflictReason
	Detail  string
}

// A scheduled event with its assigned time slot. TravelBuffer is the gap
// required after the chronological predecessor (travel plus teardown/setup,
// or the venue setup time for same-venue neighbors); zero for the first
// assignment of a tour.
type Assignment struct {
	EventID      string
	VenueID      string
	Start        time.Time
	End          time.Time
	TravelBuffer time.Duration
}

// One calendar day of an itinerary. Date is the UTC day in YYYY-MM-DD form.
type ItineraryDay struct {
	Date        string
	Assignments []Assignment
}

// The ordered, time-assigned output of one generation run for a tour.
// PersistenceFailed marks an itinerary that was computed but could not be
// saved; the computation result is still valid.
type Itinerary struct {
	ID                string
	TourID            string
	GeneratedAt       time.Time
	Days              []ItineraryDay
	Conflicts         []Conflict
	PersistenceFailed bool
}

// Assignments returns the flattened day-ordered assignment sequence.
func (it *Itinerary) Assignments() []Assignment {
	var out []Assignment
	for _, d := range it.Days {
		out = append(out, d.Assignments...)
	}
	return out
}
