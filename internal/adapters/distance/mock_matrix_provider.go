package distance

import (
	"context"
	"deadline-route-service/internal/domain"
	"deadline-route-service/internal/ports"
	"errors"
)

// ErrMockUnavailable is returned by a MockMatrixProvider configured to fail.
var ErrMockUnavailable = errors.New("mock matrix provider: unavailable")

// MockPair is one directed edge keyed by point ids.
type MockPair struct {
	From, To string
	Meters   float64
	Seconds  float64
}

// MockMatrixProvider serves fixed edges; pairs not listed are unknown.
type MockMatrixProvider struct {
	m     map[string]ports.Edge
	Fail  bool
	Calls int
}

func NewMockMatrixProvider(pairs []MockPair) *MockMatrixProvider {
	m := make(map[string]ports.Edge, len(pairs))
	for _, p := range pairs {
		m[p.From+"|"+p.To] = ports.Edge{DistanceMeters: p.Meters, DurationSeconds: p.Seconds}
	}
	return &MockMatrixProvider{m: m}
}

// NewSymmetricMockMatrixProvider registers each pair in both directions.
func NewSymmetricMockMatrixProvider(pairs []MockPair) *MockMatrixProvider {
	all := make([]MockPair, 0, 2*len(pairs))
	for _, p := range pairs {
		all = append(all, p, MockPair{From: p.To, To: p.From, Meters: p.Meters, Seconds: p.Seconds})
	}
	return NewMockMatrixProvider(all)
}

func (p *MockMatrixProvider) Lookup(ctx context.Context, points []domain.Point) (ports.Tables, error) {
	p.Calls++
	if p.Fail {
		return ports.Tables{}, ErrMockUnavailable
	}
	if err := ctx.Err(); err != nil {
		return ports.Tables{}, err
	}

	t := ports.NewTables(len(points))
	for i, a := range points {
		for j, b := range points {
			if i == j {
				continue
			}
			if e, ok := p.m[a.ID()+"|"+b.ID()]; ok {
				t.Distance[i][j] = e.DistanceMeters
				t.Time[i][j] = e.DurationSeconds
			}
		}
	}
	return t, nil
}
