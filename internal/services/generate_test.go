package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"tour-itinerary-service/internal/adapters/lock"
	"tour-itinerary-service/internal/adapters/travel"
	"tour-itinerary-service/internal/domain"
	"tour-itinerary-service/internal/ports"
)

type fakeTours struct {
	tour *domain.Tour
}

func (f *fakeTours) CreateTour(ctx context.Context, t *domain.Tour) error { return nil }
func (f *fakeTours) GetTour(ctx context.Context, id string) (*domain.Tour, error) {
	if f.tour == nil || f.tour.ID != id {
		return nil, ports.ErrNotFound
	}
	return f.tour, nil
}
func (f *fakeTours) ListTours(ctx context.Context) ([]*domain.Tour, error) { return nil, nil }
func (f *fakeTours) UpdateTour(ctx context.Context, t *domain.Tour) error  { return nil }
func (f *fakeTours) DeleteTour(ctx context.Context, id string) error       { return nil }

type fakeVenues struct {
	venues []*domain.Venue
}

func (f *fakeVenues) CreateVenue(ctx context.Context, v *domain.Venue) error { return nil }
func (f *fakeVenues) GetVenue(ctx context.Context, id string) (*domain.Venue, error) {
	return nil, ports.ErrNotFound
}
func (f *fakeVenues) ListVenues(ctx context.Context) ([]*domain.Venue, error) { return f.venues, nil }
func (f *fakeVenues) ListVenuesByIDs(ctx context.Context, ids []string) ([]*domain.Venue, error) {
	var out []*domain.Venue
	for _, v := range f.venues {
		for _, id := range ids {
			if v.ID == id {
				out = append(out, v)
				break
			}
		}
	}
	return out, nil
}
func (f *fakeVenues) UpdateVenue(ctx context.Context, v *domain.Venue) error { return nil }
func (f *fakeVenues) DeleteVenue(ctx context.Context, id string) error       { return nil }

type fakeEvents struct {
	events []*domain.Event
}

func (f *fakeEvents) CreateEvent(ctx context.Context, e *domain.Event) error { return nil }
func (f *fakeEvents) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	return nil, ports.ErrNotFound
}
func (f *fakeEvents) ListEventsByTour(ctx context.Context, tourID string) ([]*domain.Event, error) {
	return f.events, nil
}
func (f *fakeEvents) UpdateEvent(ctx context.Context, e *domain.Event) error { return nil }
func (f *fakeEvents) DeleteEvent(ctx context.Context, id string) error       { return nil }

type fakeItineraries struct {
	saved   []*domain.Itinerary
	saveErr error
}

func (f *fakeItineraries) SaveItinerary(ctx context.Context, it *domain.Itinerary) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, it)
	return nil
}
func (f *fakeItineraries) ListItinerariesByTour(ctx context.Context, tourID string) ([]*domain.Itinerary, error) {
	return f.saved, nil
}

func testGenerator(itineraries *fakeItineraries) *Generator {
	tour := testTour(ts(1, 0), ts(8, 0), "show-a", "show-b")
	return &Generator{
		Tours: &fakeTours{tour: tour},
		Venues: &fakeVenues{venues: []*domain.Venue{
			{ID: "venue-a", Name: "Arena A", Address: "A"},
			{ID: "venue-b", Name: "Arena B", Address: "B"},
		}},
		Events: &fakeEvents{events: []*domain.Event{
			{ID: "show-a", TourID: tour.ID, VenueID: "venue-a", Duration: 2 * time.Hour, FixedStart: tp(ts(2, 18))},
			{ID: "show-b", TourID: tour.ID, VenueID: "venue-b", Duration: 2 * time.Hour},
		}},
		Itineraries: itineraries,
		Provider: travel.NewMockTravelProvider([]travel.MockPair{
			{From: "A", To: "B", Meters: 90000, Seconds: 3600},
			{From: "B", To: "A", Meters: 90000, Seconds: 3600},
		}),
		Locker: lock.NewMemoryTourLocker(),
		Now:    func() time.Time { return ts(1, 12) },
	}
}

func TestGeneratorGenerate(t *testing.T) {
	store := &fakeItineraries{}
	g := testGenerator(store)

	it, err := g.Generate(context.Background(), GenerateRequest{TourID: "tour-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if it.TourID != "tour-1" {
		t.Fatalf("tour id = %q, want tour-1", it.TourID)
	}
	if !it.GeneratedAt.Equal(ts(1, 12)) {
		t.Fatalf("generated at = %v, want %v", it.GeneratedAt, ts(1, 12))
	}
	if got := len(it.Assignments()); got != 2 {
		t.Fatalf("assignments = %d, want 2", got)
	}
	if len(it.Conflicts) != 0 {
		t.Fatalf("conflicts = %v, want none", it.Conflicts)
	}
	if it.PersistenceFailed {
		t.Fatal("persistence flagged as failed")
	}
	if len(store.saved) != 1 || store.saved[0].ID != it.ID {
		t.Fatalf("itinerary was not persisted: %v", store.saved)
	}
}

func TestGeneratorValidatesRequest(t *testing.T) {
	g := testGenerator(&fakeItineraries{})

	if _, err := g.Generate(context.Background(), GenerateRequest{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("missing tour id: err = %v, want ErrInvalidInput", err)
	}

	req := GenerateRequest{TourID: "tour-1", Options: GenerateOptions{Objective: "shortest-travel"}}
	if _, err := g.Generate(context.Background(), req); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("unknown objective: err = %v, want ErrInvalidInput", err)
	}
}

func TestGeneratorUnknownTour(t *testing.T) {
	g := testGenerator(&fakeItineraries{})

	_, err := g.Generate(context.Background(), GenerateRequest{TourID: "ghost"})
	if !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGeneratorPersistenceFailure(t *testing.T) {
	store := &fakeItineraries{saveErr: errors.New("connection refused")}
	g := testGenerator(store)

	it, err := g.Generate(context.Background(), GenerateRequest{TourID: "tour-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !it.PersistenceFailed {
		t.Fatal("expected PersistenceFailed to be set")
	}
	if got := len(it.Assignments()); got != 2 {
		t.Fatalf("assignments = %d, want 2 despite save failure", got)
	}
}

func TestGeneratorSerializesPerTour(t *testing.T) {
	g := testGenerator(&fakeItineraries{})
	locker := lock.NewMemoryTourLocker()
	locker.WaitTimeout = 50 * time.Millisecond
	g.Locker = locker

	// Hold the tour lock so generation cannot acquire it in time.
	release, err := locker.AcquireTourLock(context.Background(), "tour-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer release()

	_, err = g.Generate(context.Background(), GenerateRequest{TourID: "tour-1"})
	if !errors.Is(err, domain.ErrLockTimeout) {
		t.Fatalf("err = %v, want ErrLockTimeout", err)
	}
}
