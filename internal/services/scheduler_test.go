package services

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"tour-itinerary-service/internal/adapters/travel"
	"tour-itinerary-service/internal/domain"
)

func testTour(start, end time.Time, eventIDs ...string) *domain.Tour {
	return &domain.Tour{
		ID:       "tour-1",
		Name:     "Test Tour",
		Start:    start,
		End:      end,
		EventIDs: eventIDs,
	}
}

func ts(day, hour int) time.Time {
	return time.Date(2026, 7, day, hour, 0, 0, 0, time.UTC)
}

func tp(t time.Time) *time.Time { return &t }

func TestScheduleFixedAndFlexible(t *testing.T) {
	tour := testTour(ts(1, 0), ts(8, 0), "show-a", "show-b")
	venues := []*domain.Venue{
		{ID: "venue-a", Name: "Arena A", Address: "A"},
		{ID: "venue-b", Name: "Arena B", Address: "B"},
	}
	events := []*domain.Event{
		{ID: "show-a", TourID: tour.ID, VenueID: "venue-a", Duration: 2 * time.Hour, FixedStart: tp(ts(1, 18))},
		{ID: "show-b", TourID: tour.ID, VenueID: "venue-b", Duration: 2 * time.Hour},
	}

	provider := travel.NewMockTravelProvider([]travel.MockPair{
		{From: "A", To: "B", Meters: 90000, Seconds: 3600},
		{From: "B", To: "A", Meters: 90000, Seconds: 3600},
	})

	cs, err := BuildConstraints(context.Background(), tour, venues, events, provider)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assignments, conflicts := Schedule(cs)
	if len(conflicts) != 0 {
		t.Fatalf("expected no conflicts, got %v", conflicts)
	}
	if len(assignments) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(assignments))
	}

	// The flexible event starts at the tour opening, well clear of the
	// fixed slot later that day.
	if assignments[0].EventID != "show-b" || !assignments[0].Start.Equal(ts(1, 0)) {
		t.Fatalf("first assignment = %+v, want show-b at %v", assignments[0], ts(1, 0))
	}
	if assignments[1].EventID != "show-a" || !assignments[1].Start.Equal(ts(1, 18)) {
		t.Fatalf("second assignment = %+v, want show-a at %v", assignments[1], ts(1, 18))
	}
	if assignments[1].TravelBuffer != time.Hour {
		t.Fatalf("travel buffer = %v, want 1h", assignments[1].TravelBuffer)
	}
}

func TestScheduleFixedOverlapConflictsAll(t *testing.T) {
	tour := testTour(ts(1, 0), ts(8, 0), "show-1", "show-2")
	venues := []*domain.Venue{{ID: "venue-a", Name: "Arena A", Address: "A"}}
	events := []*domain.Event{
		{ID: "show-1", TourID: tour.ID, VenueID: "venue-a", Duration: 3 * time.Hour, FixedStart: tp(ts(2, 18))},
		{ID: "show-2", TourID: tour.ID, VenueID: "venue-a", Duration: 3 * time.Hour, FixedStart: tp(ts(2, 19))},
	}

	cs, err := BuildConstraints(context.Background(), tour, venues, events, travel.NewMockTravelProvider(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assignments, conflicts := Schedule(cs)
	if len(assignments) != 0 {
		t.Fatalf("expected no assignments, got %v", assignments)
	}
	if len(conflicts) != 2 {
		t.Fatalf("expected 2 conflicts, got %v", conflicts)
	}
	for _, c := range conflicts {
		if c.Reason != domain.ReasonFixedOverlap {
			t.Errorf("conflict %s reason = %s, want %s", c.EventID, c.Reason, domain.ReasonFixedOverlap)
		}
	}
}

func TestScheduleFixedOutsideVenueWindow(t *testing.T) {
	tour := testTour(ts(1, 0), ts(8, 0), "matinee", "late-show")
	venues := []*domain.Venue{
		// Open 09:00-17:00 UTC.
		{ID: "venue-a", Name: "Hall A", Address: "A", OpenMinute: 540, CloseMinute: 1020},
	}
	events := []*domain.Event{
		{ID: "matinee", TourID: tour.ID, VenueID: "venue-a", Duration: 2 * time.Hour, FixedStart: tp(ts(2, 10))},
		{ID: "late-show", TourID: tour.ID, VenueID: "venue-a", Duration: 2 * time.Hour, FixedStart: tp(ts(2, 18))},
	}

	cs, err := BuildConstraints(context.Background(), tour, venues, events, travel.NewMockTravelProvider(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assignments, conflicts := Schedule(cs)

	// A pinned slot past closing time conflicts; the in-window fixed event
	// still schedules.
	if len(assignments) != 1 || assignments[0].EventID != "matinee" {
		t.Fatalf("assignments = %v, want only matinee", assignments)
	}
	if len(conflicts) != 1 || conflicts[0].EventID != "late-show" || conflicts[0].Reason != domain.ReasonVenueUnavailable {
		t.Fatalf("conflicts = %v, want late-show VENUE_UNAVAILABLE", conflicts)
	}
}

func TestScheduleFixedTravelGapConflict(t *testing.T) {
	tour := testTour(ts(1, 0), ts(8, 0), "show-1", "show-2")
	venues := []*domain.Venue{
		{ID: "venue-a", Name: "Arena A", Address: "A"},
		{ID: "venue-b", Name: "Arena B", Address: "B"},
	}
	// Two hours of travel between the venues, but the fixed slots sit only
	// one hour apart. Fixed events never move, so the later one conflicts.
	events := []*domain.Event{
		{ID: "show-1", TourID: tour.ID, VenueID: "venue-a", Duration: time.Hour, FixedStart: tp(ts(1, 10))},
		{ID: "show-2", TourID: tour.ID, VenueID: "venue-b", Duration: time.Hour, FixedStart: tp(ts(1, 12))},
	}
	provider := travel.NewMockTravelProvider([]travel.MockPair{
		{From: "A", To: "B", Meters: 180000, Seconds: 7200},
		{From: "B", To: "A", Meters: 180000, Seconds: 7200},
	})

	cs, err := BuildConstraints(context.Background(), tour, venues, events, provider)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assignments, conflicts := Schedule(cs)
	if len(assignments) != 1 || assignments[0].EventID != "show-1" {
		t.Fatalf("assignments = %v, want only show-1", assignments)
	}
	if len(conflicts) != 1 || conflicts[0].EventID != "show-2" || conflicts[0].Reason != domain.ReasonNoSlot {
		t.Fatalf("conflicts = %v, want show-2 NO_SLOT", conflicts)
	}
}

func TestScheduleSameVenueSetupGap(t *testing.T) {
	tour := testTour(ts(1, 0), ts(8, 0), "show", "soundcheck")
	venues := []*domain.Venue{
		{ID: "venue-a", Name: "Arena A", Address: "A", SetupTime: 30 * time.Minute},
	}
	events := []*domain.Event{
		{ID: "show", TourID: tour.ID, VenueID: "venue-a", Duration: 2 * time.Hour, FixedStart: tp(ts(1, 10))},
		{ID: "soundcheck", TourID: tour.ID, VenueID: "venue-a", Duration: time.Hour, EarliestStart: tp(ts(1, 10))},
	}

	cs, err := BuildConstraints(context.Background(), tour, venues, events, travel.NewMockTravelProvider(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assignments, conflicts := Schedule(cs)
	if len(conflicts) != 0 {
		t.Fatalf("expected no conflicts, got %v", conflicts)
	}
	if len(assignments) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(assignments))
	}

	// The flexible event cannot start during the fixed show, so it lands
	// right after the show plus the venue changeover.
	want := ts(1, 12).Add(30 * time.Minute)
	got := assignments[1]
	if got.EventID != "soundcheck" || !got.Start.Equal(want) {
		t.Fatalf("soundcheck = %+v, want start %v", got, want)
	}
	if got.TravelBuffer != 30*time.Minute {
		t.Fatalf("travel buffer = %v, want 30m", got.TravelBuffer)
	}
}

func TestScheduleEmptyWindowConflict(t *testing.T) {
	tour := testTour(ts(1, 0), ts(8, 0), "show")
	venues := []*domain.Venue{{ID: "venue-a", Name: "Arena A", Address: "A"}}
	events := []*domain.Event{
		{
			ID: "show", TourID: tour.ID, VenueID: "venue-a", Duration: time.Hour,
			EarliestStart: tp(ts(5, 0)),
			LatestStart:   tp(ts(2, 0)),
		},
	}

	cs, err := BuildConstraints(context.Background(), tour, venues, events, travel.NewMockTravelProvider(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assignments, conflicts := Schedule(cs)
	if len(assignments) != 0 {
		t.Fatalf("expected no assignments, got %v", assignments)
	}
	if len(conflicts) != 1 || conflicts[0].Reason != domain.ReasonWindowViolation {
		t.Fatalf("conflicts = %v, want one WINDOW_VIOLATION", conflicts)
	}
}

func TestScheduleAlignsToVenueWindow(t *testing.T) {
	tour := testTour(ts(1, 0), ts(8, 0), "matinee", "marathon")
	venues := []*domain.Venue{
		// Open 09:00-17:00 UTC.
		{ID: "venue-a", Name: "Hall A", Address: "A", OpenMinute: 540, CloseMinute: 1020},
	}
	events := []*domain.Event{
		{ID: "matinee", TourID: tour.ID, VenueID: "venue-a", Duration: 2 * time.Hour},
		{ID: "marathon", TourID: tour.ID, VenueID: "venue-a", Duration: 10 * time.Hour},
	}

	cs, err := BuildConstraints(context.Background(), tour, venues, events, travel.NewMockTravelProvider(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assignments, conflicts := Schedule(cs)
	if len(assignments) != 1 {
		t.Fatalf("expected 1 assignment, got %v", assignments)
	}
	if assignments[0].EventID != "matinee" || !assignments[0].Start.Equal(ts(1, 9)) {
		t.Fatalf("matinee = %+v, want start %v", assignments[0], ts(1, 9))
	}

	// A 10h event can never fit an 8h daily window.
	if len(conflicts) != 1 || conflicts[0].EventID != "marathon" || conflicts[0].Reason != domain.ReasonVenueUnavailable {
		t.Fatalf("conflicts = %v, want marathon VENUE_UNAVAILABLE", conflicts)
	}
}

func TestScheduleNoSlotBeforeLatest(t *testing.T) {
	tour := testTour(ts(1, 0), ts(2, 0), "residency", "encore")
	venues := []*domain.Venue{{ID: "venue-a", Name: "Arena A", Address: "A"}}
	events := []*domain.Event{
		{ID: "residency", TourID: tour.ID, VenueID: "venue-a", Duration: 23 * time.Hour, FixedStart: tp(ts(1, 0))},
		{ID: "encore", TourID: tour.ID, VenueID: "venue-a", Duration: 2 * time.Hour},
	}

	cs, err := BuildConstraints(context.Background(), tour, venues, events, travel.NewMockTravelProvider(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assignments, conflicts := Schedule(cs)
	if len(assignments) != 1 || assignments[0].EventID != "residency" {
		t.Fatalf("assignments = %v, want only residency", assignments)
	}
	if len(conflicts) != 1 || conflicts[0].EventID != "encore" || conflicts[0].Reason != domain.ReasonNoSlot {
		t.Fatalf("conflicts = %v, want encore NO_SLOT", conflicts)
	}
}

func TestScheduleDeterministic(t *testing.T) {
	tour := testTour(ts(1, 0), ts(8, 0), "show-a", "show-b", "show-c")
	venues := []*domain.Venue{
		{ID: "venue-a", Name: "Arena A", Address: "A"},
		{ID: "venue-b", Name: "Arena B", Address: "B"},
	}
	events := []*domain.Event{
		{ID: "show-a", TourID: tour.ID, VenueID: "venue-a", Duration: 2 * time.Hour, FixedStart: tp(ts(2, 18))},
		{ID: "show-b", TourID: tour.ID, VenueID: "venue-b", Duration: 2 * time.Hour},
		{ID: "show-c", TourID: tour.ID, VenueID: "venue-a", Duration: time.Hour},
	}
	provider := travel.NewMockTravelProvider([]travel.MockPair{
		{From: "A", To: "B", Meters: 90000, Seconds: 3600},
		{From: "B", To: "A", Meters: 90000, Seconds: 3600},
	})

	run := func() ([]domain.Assignment, []domain.Conflict) {
		cs, err := BuildConstraints(context.Background(), tour, venues, events, provider)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return Schedule(cs)
	}

	a1, c1 := run()
	a2, c2 := run()
	if len(a1) != 3 || len(c1) != 0 {
		t.Fatalf("assignments = %v, conflicts = %v, want all 3 scheduled", a1, c1)
	}
	if !reflect.DeepEqual(a1, a2) {
		t.Fatalf("assignments differ between runs:\n%v\n%v", a1, a2)
	}
	if !reflect.DeepEqual(c1, c2) {
		t.Fatalf("conflicts differ between runs:\n%v\n%v", c1, c2)
	}
}

func TestBuildConstraintsInvalidInput(t *testing.T) {
	tour := testTour(ts(1, 0), ts(8, 0), "show")
	venues := []*domain.Venue{{ID: "venue-a", Name: "Arena A", Address: "A"}}
	provider := travel.NewMockTravelProvider(nil)

	cases := []struct {
		name  string
		event *domain.Event
	}{
		{
			name:  "unknown venue",
			event: &domain.Event{ID: "show", TourID: tour.ID, VenueID: "ghost", Duration: time.Hour},
		},
		{
			name:  "non-positive duration",
			event: &domain.Event{ID: "show", TourID: tour.ID, VenueID: "venue-a", Duration: 0},
		},
		{
			name: "fixed date outside tour",
			event: &domain.Event{
				ID: "show", TourID: tour.ID, VenueID: "venue-a",
				Duration: time.Hour, FixedStart: tp(ts(9, 12)),
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildConstraints(context.Background(), tour, venues, []*domain.Event{tc.event}, provider)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestBuildConstraintsTravelLookupFailure(t *testing.T) {
	tour := testTour(ts(1, 0), ts(8, 0), "show-a", "show-b")
	venues := []*domain.Venue{
		{ID: "venue-a", Name: "Arena A", Address: "A"},
		{ID: "venue-b", Name: "Arena B", Address: "B"},
	}
	events := []*domain.Event{
		{ID: "show-a", TourID: tour.ID, VenueID: "venue-a", Duration: time.Hour},
		{ID: "show-b", TourID: tour.ID, VenueID: "venue-b", Duration: time.Hour},
	}

	// Empty mock: every pair lookup fails.
	_, err := BuildConstraints(context.Background(), tour, venues, events, travel.NewMockTravelProvider(nil))
	if !errors.Is(err, domain.ErrTravelLookup) {
		t.Fatalf("err = %v, want ErrTravelLookup", err)
	}
}
