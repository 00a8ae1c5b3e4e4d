package distance

import (
	"context"
	"deadline-route-service/internal/domain"
	"deadline-route-service/internal/platform/obs"
	"deadline-route-service/internal/ports"
	"fmt"
	"net/http"
)

type matrixRequest struct {
	Locations [][]float64 `json:"locations"`
	Metrics   []string    `json:"metrics"`
	Units     string      `json:"units"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// Lookup retrieves the full n×n distance/duration matrix in one request to
// the OpenRouteService matrix endpoint. Pairs ORS cannot route come back as
// null and are mapped to the unknown sentinel.
func (o *ORSProvider) Lookup(
	ctx context.Context,
	points []domain.Point,
) (_ ports.Tables, err error) {
	defer obs.Time(ctx, "ors.Lookup")(&err)

	n := len(points)
	if n < 2 {
		return ports.NewTables(n), nil
	}

	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, o.profile)

	locations := make([][]float64, 0, n)
	for _, p := range points {
		locations = append(locations, p.Coordinates().CoordsToList())
	}

	var mr matrixResponse
	err = o.fetchJSON(ctx, orsCall{
		method:   http.MethodPost,
		endpoint: endpoint,
		body: matrixRequest{
			Locations: locations,
			Metrics:   []string{"distance", "duration"},
			Units:     "m",
		},
	}, &mr)
	if err != nil {
		return ports.Tables{}, fmt.Errorf("matrix request failed: %w", err)
	}

	if !squarePtr(mr.Distances, n) || !squarePtr(mr.Durations, n) {
		return ports.Tables{}, fmt.Errorf(
			"matrix response shape mismatch: distances=%d durations=%d points=%d",
			len(mr.Distances), len(mr.Durations), n,
		)
	}

	t := ports.NewTables(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			meters, seconds := mr.Distances[i][j], mr.Durations[i][j]
			if meters == nil || seconds == nil {
				continue
			}
			t.Distance[i][j] = *meters
			t.Time[i][j] = *seconds
		}
	}

	return t, nil
}

func squarePtr(rows [][]*float64, n int) bool {
	if len(rows) != n {
		return false
	}
	for _, r := range rows {
		if len(r) != n {
			return false
		}
	}
	return true
}
