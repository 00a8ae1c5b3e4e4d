package services

import (
	"context"
	"deadline-route-service/internal/adapters/distance"
	"deadline-route-service/internal/domain"
	"deadline-route-service/internal/matrix"
	"deadline-route-service/internal/ports"
	"math"
	"testing"
)

func pt(id string, x, y float64) domain.Point {
	return domain.NewPoint(domain.KindAir, id, x, y, 0)
}

func due(id string, x, y, deadline float64) domain.Point {
	return domain.NewPoint(domain.KindAir, id, x, y, deadline)
}

// populated builds and fills a matrix over points using provider.
func populated(t *testing.T, provider ports.MatrixProvider, points ...domain.Point) *matrix.TravelMatrix {
	t.Helper()

	m, err := matrix.New(domain.KindAir, provider)
	if err != nil {
		t.Fatalf("new matrix: %v", err)
	}
	if err := m.AddAll(points); err != nil {
		t.Fatalf("add points: %v", err)
	}
	if err := m.Populate(context.Background()); err != nil {
		t.Fatalf("populate: %v", err)
	}
	return m
}

// planar returns symmetric pairs whose distance and time both equal the
// Euclidean distance between the points' X/Y values.
func planar(points ...domain.Point) []distance.MockPair {
	var pairs []distance.MockPair
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			a, b := points[i], points[j]
			d := math.Hypot(a.X()-b.X(), a.Y()-b.Y())
			pairs = append(pairs, distance.MockPair{From: a.ID(), To: b.ID(), Meters: d, Seconds: d})
		}
	}
	return pairs
}

func ids(order []domain.Point) []string {
	out := make([]string, 0, len(order))
	for _, p := range order {
		out = append(out, p.ID())
	}
	return out
}
