package distance

import (
	"context"
	"deadline-route-service/internal/domain"
	"deadline-route-service/internal/ports"
	"errors"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// DefaultAirSpeed is the cruise speed used for air legs (m/s, ~900 km/h).
const DefaultAirSpeed = 250.0

// HaversineProvider computes great-circle distance and a fixed-speed travel
// time. It never fails for valid coordinates and makes no network calls.
type HaversineProvider struct {
	SpeedMetersPerSecond float64
}

func NewHaversineProvider(speed float64) (*HaversineProvider, error) {
	if speed <= 0 {
		return nil, errors.New("haversine provider: speed must be positive")
	}
	return &HaversineProvider{SpeedMetersPerSecond: speed}, nil
}

func (h *HaversineProvider) Lookup(ctx context.Context, points []domain.Point) (ports.Tables, error) {
	if err := ctx.Err(); err != nil {
		return ports.Tables{}, err
	}

	speed := h.SpeedMetersPerSecond
	if speed <= 0 {
		speed = DefaultAirSpeed
	}

	t := ports.NewTables(len(points))
	for i, a := range points {
		pa := orb.Point{a.X(), a.Y()}
		for j, b := range points {
			if i == j {
				continue
			}
			if a.Same(b) {
				t.Distance[i][j] = 0
				t.Time[i][j] = 0
				continue
			}

			meters := geo.DistanceHaversine(pa, orb.Point{b.X(), b.Y()})
			t.Distance[i][j] = meters
			t.Time[i][j] = meters / speed
		}
	}
	return t, nil
}
