package domain

import "time"

// Represents a single scheduled activity (show, rehearsal, load-in) tied to
// a venue and a tour. A non-nil FixedStart pins the event to a mandated time
// the scheduler must not move; otherwise EarliestStart/LatestStart bound the
// flexible placement window and nil bounds fall back to the tour range.
// Assigned times live on the Itinerary, never on the Event itself.
type Event struct {
	ID            string
	TourID        string
	VenueID       string
	Title         string
	Duration      time.Duration
	Setup         time.Duration
	Teardown      time.Duration
	FixedStart    *time.Time
	EarliestStart *time.Time
	LatestStart   *time.Time
	Priority      int
}

func (e *Event) IsFixed() bool { return e.FixedStart != nil }
