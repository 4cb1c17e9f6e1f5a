package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"tour-itinerary-service/internal/domain"
	"tour-itinerary-service/internal/ports"
)

// A normalized per-event scheduling constraint. Fixed events carry their
// mandated Start and a degenerate Earliest==Latest window; flexible events
// carry the placement window derived from the event and the tour range.
type Constraint struct {
	EventID    string
	VenueID    string
	Fixed      bool
	Start      time.Time
	Earliest   time.Time
	Latest     time.Time
	Duration   time.Duration
	Setup      time.Duration
	Teardown   time.Duration
	InputIndex int
}

// ConstraintSet is the canonical input of the feasibility scheduler:
// one constraint per event plus the venue set and the pairwise travel
// matrix needed to compute predecessor gaps. It is created fresh per
// generation request and discarded after.
type ConstraintSet struct {
	TourID      string
	Constraints []Constraint

	venues map[string]*domain.Venue
	travel map[string]time.Duration
}

// Venue returns the venue a constraint is bound to.
func (cs *ConstraintSet) Venue(c *Constraint) *domain.Venue {
	return cs.venues[c.VenueID]
}

// Gap returns the required buffer between a predecessor and its successor:
// the predecessor's teardown, plus travel time between the venues (or the
// venue setup time when both events share a venue), plus the successor's
// own setup.
func (cs *ConstraintSet) Gap(prev, next *Constraint) time.Duration {
	var base time.Duration
	if prev.VenueID == next.VenueID {
		base = cs.venues[prev.VenueID].SetupTime
	} else {
		from := cs.venues[prev.VenueID].LocationKey()
		to := cs.venues[next.VenueID].LocationKey()
		base = cs.travel[from+"|"+to]
	}
	return prev.Teardown + base + next.Setup
}

type travelRowResult struct {
	origin  string
	results map[string]ports.TravelResult
	err     error
}

// BuildConstraints normalizes a tour's venues and events into a ConstraintSet.
//
// It validates structural input (unknown venue references, non-positive
// durations, fixed dates outside the tour range) and fails with
// domain.ErrInvalidInput before any provider call. Travel buffers between
// every pair of distinct venue locations are resolved through the provider;
// a provider failure is wrapped as domain.ErrTravelLookup and propagated,
// never swallowed.
func BuildConstraints(
	ctx context.Context,
	tour *domain.Tour,
	venues []*domain.Venue,
	events []*domain.Event,
	provider ports.TravelTimeProvider,
) (*ConstraintSet, error) {
	if tour == nil {
		return nil, fmt.Errorf("build constraints: %w: tour must be non-nil", domain.ErrInvalidInput)
	}
	if !tour.End.After(tour.Start) {
		return nil, fmt.Errorf(
			"build constraints: %w: tour %q date range is empty or inverted",
			domain.ErrInvalidInput, tour.ID,
		)
	}

	venueByID := make(map[string]*domain.Venue, len(venues))
	for _, v := range venues {
		venueByID[v.ID] = v
	}

	ordered := orderEvents(tour, events)

	constraints := make([]Constraint, 0, len(ordered))
	for i, e := range ordered {
		v, ok := venueByID[e.VenueID]
		if !ok {
			return nil, fmt.Errorf(
				"build constraints: %w: event %q references unknown venue %q",
				domain.ErrInvalidInput, e.ID, e.VenueID,
			)
		}
		if e.Duration <= 0 {
			return nil, fmt.Errorf(
				"build constraints: %w: event %q duration must be > 0",
				domain.ErrInvalidInput, e.ID,
			)
		}

		c := Constraint{
			EventID:    e.ID,
			VenueID:    v.ID,
			Duration:   e.Duration,
			Setup:      e.Setup,
			Teardown:   e.Teardown,
			InputIndex: i,
		}

		if e.IsFixed() {
			start := e.FixedStart.UTC()
			if !tour.Contains(start, e.Duration) {
				return nil, fmt.Errorf(
					"build constraints: %w: event %q fixed date %s falls outside tour range",
					domain.ErrInvalidInput, e.ID, start.Format(time.RFC3339),
				)
			}
			c.Fixed = true
			c.Start = start
			c.Earliest = start
			c.Latest = start
		} else {
			earliest := tour.Start
			if e.EarliestStart != nil && e.EarliestStart.After(earliest) {
				earliest = e.EarliestStart.UTC()
			}
			latest := tour.End.Add(-e.Duration)
			if e.LatestStart != nil && e.LatestStart.Before(latest) {
				latest = e.LatestStart.UTC()
			}
			// An empty window is not an input error: the scheduler
			// reports it as a WINDOW_VIOLATION conflict.
			c.Earliest = earliest
			c.Latest = latest
		}

		constraints = append(constraints, c)
	}

	travel, err := fetchTravelMatrix(ctx, venueByID, constraints, provider)
	if err != nil {
		return nil, fmt.Errorf("build constraints: %w", err)
	}

	return &ConstraintSet{
		TourID:      tour.ID,
		Constraints: constraints,
		venues:      venueByID,
		travel:      travel,
	}, nil
}

// orderEvents arranges events by their position in the tour's EventIDs list,
// with unlisted events following in repository order. The resulting index is
// the deterministic tie-breaker of last resort.
func orderEvents(tour *domain.Tour, events []*domain.Event) []*domain.Event {
	pos := make(map[string]int, len(tour.EventIDs))
	for i, id := range tour.EventIDs {
		pos[id] = i
	}

	ordered := make([]*domain.Event, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		pi, iOK := pos[ordered[i].ID]
		pj, jOK := pos[ordered[j].ID]
		switch {
		case iOK && jOK:
			return pi < pj
		case iOK:
			return true
		default:
			return false
		}
	})
	return ordered
}

// fetchTravelMatrix resolves travel durations between every ordered pair of
// distinct venue locations used by the tour. Lookups fan out per origin with
// bounded concurrency; matrix providers get one batched call per origin.
func fetchTravelMatrix(
	ctx context.Context,
	venues map[string]*domain.Venue,
	constraints []Constraint,
	provider ports.TravelTimeProvider,
) (map[string]time.Duration, error) {
	seen := make(map[string]struct{})
	keys := make([]string, 0, len(venues))
	for _, c := range constraints {
		k := venues[c.VenueID].LocationKey()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	travel := make(map[string]time.Duration)
	if len(keys) < 2 {
		return travel, nil
	}

	mp, hasMatrix := provider.(ports.TravelMatrixProvider)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, 5)
	resultsCh := make(chan travelRowResult, len(keys))
	var wg sync.WaitGroup

	for _, origin := range keys {
		targets := make([]string, 0, len(keys)-1)
		for _, t := range keys {
			if t != origin {
				targets = append(targets, t)
			}
		}

		wg.Add(1)
		go func(orig string) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			var res map[string]ports.TravelResult
			if hasMatrix {
				var e error
				res, e = mp.TravelTimes(ctx, orig, targets)
				if e != nil {
					resultsCh <- travelRowResult{origin: orig, err: wrapTravelErr(orig, "", e)}
					cancel()
					return
				}
			} else {
				res = make(map[string]ports.TravelResult, len(targets))
				for _, t := range targets {
					r, e := provider.TravelTime(ctx, orig, t)
					if e != nil {
						resultsCh <- travelRowResult{origin: orig, err: wrapTravelErr(orig, t, e)}
						cancel()
						return
					}
					res[t] = r
				}
			}

			resultsCh <- travelRowResult{origin: orig, results: res}
		}(origin)
	}

	wg.Wait()
	close(resultsCh)

	var rowErr error
	for res := range resultsCh {
		if res.err != nil {
			if rowErr == nil {
				rowErr = res.err
			}
			continue
		}
		for _, t := range keys {
			if t == res.origin {
				continue
			}
			r, ok := res.results[t]
			if !ok {
				return nil, fmt.Errorf(
					"%w: missing travel result from %q to %q",
					domain.ErrTravelLookup, res.origin, t,
				)
			}
			travel[res.origin+"|"+t] = time.Duration(r.DurationSeconds) * time.Second
		}
	}
	if rowErr != nil {
		return nil, rowErr
	}

	return travel, nil
}

func wrapTravelErr(origin, destination string, err error) error {
	if destination == "" {
		return fmt.Errorf("%w: from %q: %v", domain.ErrTravelLookup, origin, err)
	}
	return fmt.Errorf("%w: from %q to %q: %v", domain.ErrTravelLookup, origin, destination, err)
}
