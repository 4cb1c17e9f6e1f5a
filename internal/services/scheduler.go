package services

import (
	"fmt"
	"sort"
	"time"

	"tour-itinerary-service/internal/domain"
)

// placement is one occupied slot on the tour timeline. Scheduled events form
// a single chronological chain: every successor starts at or after its
// predecessor's end plus the required travel/setup gap, so slots never
// overlap regardless of venue.
type placement struct {
	c     *Constraint
	start time.Time
	end   time.Time
}

// Schedule assigns each event a start time using earliest-feasible-start
// greedy placement and reports the events it could not place as conflicts.
//
// Fixed events go first, pinned at their mandated times; flexible events
// follow ordered by earliest allowed start, then ascending duration, then
// input order, each placed first-fit into the earliest timeline slot that
// respects the predecessor gap, the event's own window, and the venue's
// daily availability. The run always completes: per-event conflicts never
// abort the batch, and the output is deterministic for identical input.
//
// This is a deliberate simplicity tradeoff, not an optimal scheduler; it
// maximizes neither makespan nor the scheduled count globally.
func Schedule(cs *ConstraintSet) ([]domain.Assignment, []domain.Conflict) {
	var timeline []placement
	var conflicts []domain.Conflict

	fixed := make([]*Constraint, 0, len(cs.Constraints))
	flexible := make([]*Constraint, 0, len(cs.Constraints))
	for i := range cs.Constraints {
		c := &cs.Constraints[i]
		if c.Fixed {
			fixed = append(fixed, c)
		} else {
			flexible = append(flexible, c)
		}
	}

	sort.SliceStable(fixed, func(i, j int) bool {
		if !fixed[i].Start.Equal(fixed[j].Start) {
			return fixed[i].Start.Before(fixed[j].Start)
		}
		return fixed[i].InputIndex < fixed[j].InputIndex
	})

	// Same-venue overlap among fixed events is unrecoverable: every member
	// of an overlapping pair is conflicted and none of them is scheduled.
	overlapping := fixedOverlaps(fixed)
	for _, c := range fixed {
		if _, ok := overlapping[c.EventID]; ok {
			conflicts = append(conflicts, domain.Conflict{
				EventID: c.EventID,
				Reason:  domain.ReasonFixedOverlap,
				Detail:  fmt.Sprintf("overlaps another fixed event at venue %s", c.VenueID),
			})
		}
	}

	for _, c := range fixed {
		if _, ok := overlapping[c.EventID]; ok {
			continue
		}

		venue := cs.Venue(c)
		if !fitsVenueDay(venue, c.Start, c.Duration) {
			conflicts = append(conflicts, domain.Conflict{
				EventID: c.EventID,
				Reason:  domain.ReasonVenueUnavailable,
				Detail:  fmt.Sprintf("fixed start %s falls outside venue availability", c.Start.Format(time.RFC3339)),
			})
			continue
		}

		// Fixed events never move, so a gap violation against an already
		// placed fixed neighbor conflicts this one.
		if ok, detail := gapHolds(cs, timeline, c, c.Start); !ok {
			conflicts = append(conflicts, domain.Conflict{
				EventID: c.EventID,
				Reason:  domain.ReasonNoSlot,
				Detail:  detail,
			})
			continue
		}

		timeline = insertPlacement(timeline, placement{c: c, start: c.Start, end: c.Start.Add(c.Duration)})
	}

	sort.SliceStable(flexible, func(i, j int) bool {
		if !flexible[i].Earliest.Equal(flexible[j].Earliest) {
			return flexible[i].Earliest.Before(flexible[j].Earliest)
		}
		if flexible[i].Duration != flexible[j].Duration {
			return flexible[i].Duration < flexible[j].Duration
		}
		return flexible[i].InputIndex < flexible[j].InputIndex
	})

	for _, c := range flexible {
		venue := cs.Venue(c)

		if c.Latest.Before(c.Earliest) {
			conflicts = append(conflicts, domain.Conflict{
				EventID: c.EventID,
				Reason:  domain.ReasonWindowViolation,
				Detail:  "earliest/latest window is empty",
			})
			continue
		}
		if venue.HasWindow() && (venue.CloseMinute <= venue.OpenMinute || c.Duration > venue.WindowLength()) {
			conflicts = append(conflicts, domain.Conflict{
				EventID: c.EventID,
				Reason:  domain.ReasonVenueUnavailable,
				Detail:  fmt.Sprintf("duration %s cannot fit venue %s daily window", c.Duration, c.VenueID),
			})
			continue
		}

		start, ok := placeFlexible(cs, timeline, c)
		if !ok {
			conflicts = append(conflicts, domain.Conflict{
				EventID: c.EventID,
				Reason:  domain.ReasonNoSlot,
				Detail:  fmt.Sprintf("no feasible slot before latest start %s", c.Latest.Format(time.RFC3339)),
			})
			continue
		}

		timeline = insertPlacement(timeline, placement{c: c, start: start, end: start.Add(c.Duration)})
	}

	return assignmentsFromTimeline(cs, timeline), conflicts
}

// fixedOverlaps returns the ids of fixed events that overlap another fixed
// event at the same venue. Input must be sorted by start time.
func fixedOverlaps(fixed []*Constraint) map[string]struct{} {
	out := make(map[string]struct{})
	for i, a := range fixed {
		endA := a.Start.Add(a.Duration)
		for _, b := range fixed[i+1:] {
			if !b.Start.Before(endA) {
				break
			}
			if a.VenueID == b.VenueID {
				out[a.EventID] = struct{}{}
				out[b.EventID] = struct{}{}
			}
		}
	}
	return out
}

// fitsVenueDay reports whether a pinned slot [start, start+dur) lies within
// the venue's availability window of that UTC day.
func fitsVenueDay(venue *domain.Venue, start time.Time, dur time.Duration) bool {
	if !venue.HasWindow() {
		return true
	}
	if venue.CloseMinute <= venue.OpenMinute {
		return false
	}
	day := start.Truncate(24 * time.Hour)
	open := day.Add(time.Duration(venue.OpenMinute) * time.Minute)
	close := day.Add(time.Duration(venue.CloseMinute) * time.Minute)
	return !start.Before(open) && !start.Add(dur).After(close)
}

// gapHolds checks that placing c at start keeps the required buffer to both
// chronological neighbors on the timeline.
func gapHolds(cs *ConstraintSet, timeline []placement, c *Constraint, start time.Time) (bool, string) {
	end := start.Add(c.Duration)
	idx := sort.Search(len(timeline), func(i int) bool {
		return timeline[i].start.After(start)
	})

	if idx > 0 {
		prev := timeline[idx-1]
		if start.Before(prev.end.Add(cs.Gap(prev.c, c))) {
			return false, fmt.Sprintf("insufficient travel/setup buffer after event %s", prev.c.EventID)
		}
	}
	if idx < len(timeline) {
		next := timeline[idx]
		if next.start.Before(end.Add(cs.Gap(c, next.c))) {
			return false, fmt.Sprintf("insufficient travel/setup buffer before event %s", next.c.EventID)
		}
	}
	return true, ""
}

// placeFlexible finds the earliest feasible start for c by scanning timeline
// slots in chronological order. The first feasible slot yields the earliest
// start because slot lower bounds are monotonically non-decreasing.
func placeFlexible(cs *ConstraintSet, timeline []placement, c *Constraint) (time.Time, bool) {
	venue := cs.Venue(c)

	for i := 0; i <= len(timeline); i++ {
		lower := c.Earliest
		if i > 0 {
			prev := timeline[i-1]
			bound := prev.end.Add(cs.Gap(prev.c, c))
			if bound.After(lower) {
				lower = bound
			}
		}

		start, ok := alignToVenueWindow(venue, lower, c.Duration, c.Latest)
		if !ok {
			// Later slots only begin later; no point scanning further.
			return time.Time{}, false
		}

		if i < len(timeline) {
			next := timeline[i]
			if next.start.Before(start.Add(c.Duration).Add(cs.Gap(c, next.c))) {
				continue
			}
		}
		return start, true
	}

	return time.Time{}, false
}

// alignToVenueWindow rolls t forward until [t, t+dur) fits inside the
// venue's daily availability window, jumping to the next day's opening when
// the remainder of the current window is too short. Fails once t would pass
// latest.
func alignToVenueWindow(venue *domain.Venue, t time.Time, dur time.Duration, latest time.Time) (time.Time, bool) {
	if !venue.HasWindow() {
		if t.After(latest) {
			return time.Time{}, false
		}
		return t, true
	}

	for {
		day := t.Truncate(24 * time.Hour)
		open := day.Add(time.Duration(venue.OpenMinute) * time.Minute)
		close := day.Add(time.Duration(venue.CloseMinute) * time.Minute)

		if t.Before(open) {
			t = open
		}
		if t.After(latest) {
			return time.Time{}, false
		}
		if !t.Add(dur).After(close) {
			return t, true
		}

		t = open.Add(24 * time.Hour)
	}
}

func insertPlacement(timeline []placement, p placement) []placement {
	idx := sort.Search(len(timeline), func(i int) bool {
		return timeline[i].start.After(p.start)
	})
	timeline = append(timeline, placement{})
	copy(timeline[idx+1:], timeline[idx:])
	timeline[idx] = p
	return timeline
}

// assignmentsFromTimeline materializes the final chain, computing each
// assignment's travel buffer against its actual chronological predecessor.
func assignmentsFromTimeline(cs *ConstraintSet, timeline []placement) []domain.Assignment {
	out := make([]domain.Assignment, 0, len(timeline))
	for i, p := range timeline {
		var buffer time.Duration
		if i > 0 {
			buffer = cs.Gap(timeline[i-1].c, p.c)
		}
		out = append(out, domain.Assignment{
			EventID:      p.c.EventID,
			VenueID:      p.c.VenueID,
			Start:        p.start,
			End:          p.end,
			TravelBuffer: buffer,
		})
	}
	return out
}
