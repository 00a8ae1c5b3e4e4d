package distance

import (
	"context"
	"deadline-route-service/internal/domain"
	"deadline-route-service/internal/platform/obs"
	"fmt"
	"net/http"
	"net/url"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// GeocodeMany resolves addresses individually using OpenRouteService
// (/geocode/search). Results are keyed by normalized address; duplicates are
// requested once.
func (o *ORSProvider) GeocodeMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.GeocodeMany")(&err)

	endpoint := o.baseURL + "/geocode/search"

	out := make(map[string]domain.Coordinates)
	for _, a := range addresses {
		norm := domain.NormalizeAddress(a)
		if norm == "" {
			return nil, fmt.Errorf("geocode: empty address")
		}
		if _, ok := out[norm]; ok {
			continue
		}

		coords, err := o.geocodeOne(ctx, endpoint, norm)
		if err != nil {
			return nil, err
		}
		out[norm] = coords
	}

	return out, nil
}

func (o *ORSProvider) geocodeOne(ctx context.Context, endpoint, address string) (domain.Coordinates, error) {
	q := url.Values{}
	q.Set("text", address)
	q.Set("size", "1")
	if o.country != "" {
		q.Set("boundary.country", o.country)
	}

	var decoded geocodeResponse
	err := o.fetchJSON(ctx, orsCall{method: http.MethodGet, endpoint: endpoint, query: q}, &decoded)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", address, err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("no geocode results for %q", address)
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, fmt.Errorf("invalid coordinate format for %q", address)
	}

	return domain.Coordinates{Lon: coords[0], Lat: coords[1]}, nil
}
