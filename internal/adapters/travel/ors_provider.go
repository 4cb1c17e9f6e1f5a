package travel

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"tour-itinerary-service/internal/adapters/cache"
	"tour-itinerary-service/internal/domain"
	"tour-itinerary-service/internal/platform/obs"
	"tour-itinerary-service/internal/ports"
)

// ORSTravelProvider implements TravelTimeProvider using OpenRouteService.
//
// It coordinates:
//   - Location key normalization (addresses or "lat,lon" pairs)
//   - Persistent geocode caching
//   - Persistent travel matrix caching
//   - External API calls with a single retry and backoff
//
// The provider is safe for concurrent use.
type ORSTravelProvider struct {
	session      *http.Client
	apiKey       string
	baseURL      string
	profile      string
	travelCache  *cache.SQLTravelCache
	geocodeCache *cache.SQLGeocodeCache
}

func NewORSTravelProvider(
	apiKey string,
	travelCache *cache.SQLTravelCache,
	geocodeCache *cache.SQLGeocodeCache,
) (*ORSTravelProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	provider := &ORSTravelProvider{
		session:      &http.Client{Timeout: 10 * time.Second},
		apiKey:       apiKey,
		baseURL:      "https://api.openrouteservice.org",
		profile:      "driving-car",
		travelCache:  travelCache,
		geocodeCache: geocodeCache,
	}

	return provider, nil
}

// normalize ensures consistent cache keys by collapsing whitespace.
func (o *ORSTravelProvider) normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Delegate to the batched path to reuse caching and matrix logic.
func (o *ORSTravelProvider) TravelTime(
	ctx context.Context,
	origin string,
	destination string,
) (ports.TravelResult, error) {
	if origin == "" || destination == "" {
		return ports.TravelResult{}, errors.New("get ORS travel time: origin and destination must be non-empty")
	}

	normOrigin := o.normalize(origin)
	if normOrigin == "" {
		return ports.TravelResult{}, errors.New("origin must be non-empty")
	}

	normDestination := o.normalize(destination)
	if normDestination == "" {
		return ports.TravelResult{}, errors.New("destination must be non-empty")
	}

	results, err := o.TravelTimes(ctx, normOrigin, []string{normDestination})
	if err != nil {
		return ports.TravelResult{}, fmt.Errorf(
			"get travel times %q -> %q: %w",
			normOrigin, normDestination, err,
		)
	}

	result, ok := results[normDestination]
	if !ok {
		return ports.TravelResult{}, fmt.Errorf("no travel result for %q -> %q", origin, destination)
	}

	return result, nil
}

// Compute travel results from a single origin to many destinations.
func (o *ORSTravelProvider) TravelTimes(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]ports.TravelResult, err error) {
	defer obs.Time(ctx, "ors.TravelTimes")(&err)

	if origin == "" {
		return nil, errors.New("origin must be non-empty")
	}

	if len(destinations) == 0 {
		return map[string]ports.TravelResult{}, nil
	}

	normOrigin := o.normalize(origin)
	if normOrigin == "" {
		return nil, errors.New("origin must be non-empty")
	}

	normDestinations := make([]string, 0, len(destinations))
	for _, d := range destinations {
		nd := o.normalize(d)
		if nd == "" {
			continue
		}
		normDestinations = append(normDestinations, nd)
	}

	seen := make(map[string]struct{}, len(normDestinations))
	destList := make([]string, 0, len(normDestinations))
	for _, d := range normDestinations {
		if d == normOrigin {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}

		seen[d] = struct{}{}
		destList = append(destList, d)
	}

	if len(destList) == 0 {
		return map[string]ports.TravelResult{}, nil
	}

	destinationHits := make(map[string]ports.TravelResult)
	// Check the persistent travel cache before issuing external API calls.
	if o.travelCache != nil {
		var err error
		destinationHits, err = o.travelCache.GetMany(ctx, normOrigin, destList)
		if err != nil {
			return nil, fmt.Errorf("ORS get travel cache: %w", err)
		}
	}

	destinationMisses := make([]string, 0, len(destList))
	for _, d := range destList {
		if _, ok := destinationHits[d]; !ok {
			destinationMisses = append(destinationMisses, d)
		}
	}

	if len(destinationMisses) == 0 {
		return destinationHits, nil
	}

	needed := make([]string, 0, 1+len(destinationMisses))
	needed = append(needed, normOrigin)
	needed = append(needed, destinationMisses...)

	coords, err := o.resolveCoordinates(ctx, needed)
	if err != nil {
		return nil, err
	}

	originCoord, ok := coords[normOrigin]
	if !ok {
		return nil, fmt.Errorf("missing coordinate for origin %q", normOrigin)
	}

	destinationCoords := make([]domain.Coordinates, 0, len(destinationMisses))
	for _, d := range destinationMisses {
		coord, ok := coords[d]
		if !ok {
			return nil, fmt.Errorf("missing coordinate for destination %q", d)
		}
		destinationCoords = append(destinationCoords, coord)
	}

	// Fetch a single origin->many matrix row for all cache misses.
	fetched, err := o.fetchMatrixRow(ctx, originCoord, destinationMisses, destinationCoords)
	if err != nil {
		return nil, fmt.Errorf("fetching matrix row: %w", err)
	}

	missing := make([]string, 0)
	for _, d := range destinationMisses {
		if _, ok := fetched[d]; !ok {
			missing = append(missing, d)
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf(
			"ORS matrix service did not return the following destinations: %s",
			strings.Join(missing, ", "),
		)
	}

	if o.travelCache != nil {
		if err := o.travelCache.PutMany(ctx, normOrigin, fetched); err != nil {
			log.Printf("travel cache write failed: %v", err)
		}
	}

	out := make(map[string]ports.TravelResult, len(destinationHits)+len(fetched))
	for k, v := range destinationHits {
		out[k] = v
	}
	for k, v := range fetched {
		out[k] = v
	}

	return out, nil
}

// resolveCoordinates maps location keys to coordinates. Keys that already
// are "lat,lon" pairs parse directly; others go through the geocode cache
// and, on a miss, the ORS geocoding endpoint.
func (o *ORSTravelProvider) resolveCoordinates(
	ctx context.Context,
	keys []string,
) (map[string]domain.Coordinates, error) {
	coords := make(map[string]domain.Coordinates, len(keys))

	addresses := make([]string, 0, len(keys))
	for _, k := range keys {
		if c, ok := domain.ParseCoordinates(k); ok {
			coords[k] = c
			continue
		}
		addresses = append(addresses, k)
	}

	if len(addresses) == 0 {
		return coords, nil
	}

	geocodeHits := make(map[string]domain.Coordinates)
	if o.geocodeCache != nil {
		var err error
		geocodeHits, err = o.geocodeCache.GetMany(ctx, addresses)
		if err != nil {
			return nil, fmt.Errorf("ORS get geocode cache: %w", err)
		}
	}

	geocodeMisses := make([]string, 0, len(addresses))
	for _, a := range addresses {
		if _, ok := geocodeHits[a]; !ok {
			geocodeMisses = append(geocodeMisses, a)
		}
	}

	fresh := make(map[string]domain.Coordinates)
	if len(geocodeMisses) > 0 {
		var err error
		fresh, err = o.geocodeMany(ctx, geocodeMisses)
		if err != nil {
			return nil, fmt.Errorf("retrieving coordinates: %w", err)
		}
	}

	if o.geocodeCache != nil && len(fresh) > 0 {
		if err := o.geocodeCache.PutMany(ctx, fresh); err != nil {
			log.Printf("geocode cache write failed: %v", err)
		}
	}

	for k, v := range geocodeHits {
		coords[k] = v
	}
	for k, v := range fresh {
		coords[k] = v
	}

	return coords, nil
}
