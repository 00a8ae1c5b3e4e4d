package distance

import (
	"context"
	"deadline-route-service/internal/domain"
	"deadline-route-service/internal/ports"
	"fmt"
	"log"
)

// CachedGeocoder resolves addresses from a GeocodeCache first and only sends
// the misses to the inner geocoder.
type CachedGeocoder struct {
	inner ports.Geocoder
	cache ports.GeocodeCache
}

func NewCachedGeocoder(inner ports.Geocoder, cache ports.GeocodeCache) *CachedGeocoder {
	return &CachedGeocoder{inner: inner, cache: cache}
}

func (g *CachedGeocoder) GeocodeMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	needed := make([]string, 0, len(addresses))
	seen := make(map[string]struct{}, len(addresses))
	for _, a := range addresses {
		n := domain.NormalizeAddress(a)
		if n == "" {
			return nil, fmt.Errorf("geocode: empty address")
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		needed = append(needed, n)
	}

	hits := make(map[string]domain.Coordinates)
	// Resolve coordinates via cache before calling the geocoding service.
	if g.cache != nil {
		var err error
		hits, err = g.cache.GetMany(ctx, needed)
		if err != nil {
			return nil, fmt.Errorf("get geocode cache: %w", err)
		}
	}

	misses := make([]string, 0, len(needed))
	for _, a := range needed {
		if _, ok := hits[a]; !ok {
			misses = append(misses, a)
		}
	}

	out := make(map[string]domain.Coordinates, len(needed))
	for k, v := range hits {
		out[k] = v
	}
	if len(misses) == 0 {
		return out, nil
	}

	fresh, err := g.inner.GeocodeMany(ctx, misses)
	if err != nil {
		return nil, fmt.Errorf("retrieving coordinates: %w", err)
	}

	if g.cache != nil && len(fresh) > 0 {
		if err := g.cache.PutMany(ctx, fresh); err != nil {
			log.Printf("geocode cache write failed: %v", err)
		}
	}

	for k, v := range fresh {
		out[k] = v
	}
	for _, a := range needed {
		if _, ok := out[a]; !ok {
			return nil, fmt.Errorf("missing coordinate for %q", a)
		}
	}

	return out, nil
}
