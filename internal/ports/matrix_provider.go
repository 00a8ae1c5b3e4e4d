package ports

import (
	"context"
	"deadline-route-service/internal/domain"
)

// Pairwise travel tables for an ordered point list.
// Distance[i][j] is meters and Time[i][j] seconds from points[i] to points[j].
// Entries may hold domain.Unknown() for pairs with no known cost.
type Tables struct {
	Distance [][]float64
	Time     [][]float64
}

// Contract for filling a travel matrix for a fixed point list.
type MatrixProvider interface {
	// Return n×n tables aligned with points. A non-nil error means nothing
	// usable was produced; callers must not keep partial tables.
	Lookup(ctx context.Context, points []domain.Point) (Tables, error)
}

// MatrixProviderFunc adapts a function to MatrixProvider.
type MatrixProviderFunc func(ctx context.Context, points []domain.Point) (Tables, error)

func (f MatrixProviderFunc) Lookup(ctx context.Context, points []domain.Point) (Tables, error) {
	return f(ctx, points)
}

// NewTables allocates n×n tables filled with unknown entries and a zero diagonal.
func NewTables(n int) Tables {
	t := Tables{
		Distance: make([][]float64, n),
		Time:     make([][]float64, n),
	}
	for i := 0; i < n; i++ {
		t.Distance[i] = make([]float64, n)
		t.Time[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			t.Distance[i][j] = domain.Unknown()
			t.Time[i][j] = domain.Unknown()
		}
	}
	return t
}
