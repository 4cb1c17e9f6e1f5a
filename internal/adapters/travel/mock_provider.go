package travel

import (
	"context"
	"fmt"

	"tour-itinerary-service/internal/ports"
)

type MockPair struct {
	From, To string
	Meters   int
	Seconds  int
}

type MockTravelProvider struct {
	m map[string]ports.TravelResult
}

func NewMockTravelProvider(pairs []MockPair) *MockTravelProvider {
	m := make(map[string]ports.TravelResult, len(pairs))
	for _, p := range pairs {
		m[p.From+"|"+p.To] = ports.TravelResult{DistanceMeters: p.Meters, DurationSeconds: p.Seconds}
	}
	return &MockTravelProvider{m: m}
}

func (p *MockTravelProvider) TravelTime(ctx context.Context, origin, destination string) (ports.TravelResult, error) {
	r, ok := p.m[origin+"|"+destination]
	if !ok {
		return ports.TravelResult{}, fmt.Errorf("missing pair %q -> %q", origin, destination)
	}

	return r, nil
}
