package services

import (
	"context"
	"deadline-route-service/internal/adapters/distance"
	"deadline-route-service/internal/domain"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solveWith(t *testing.T, opts Options, provider *distance.MockMatrixProvider, depot domain.Point, points ...domain.Point) *domain.Route {
	t.Helper()

	m := populated(t, provider, append([]domain.Point{depot}, points...)...)
	s, err := NewSolver(m, opts)
	require.NoError(t, err)

	r, err := s.Solve(context.Background(), depot)
	require.NoError(t, err)
	return r
}

func assertFeasibleClosed(t *testing.T, r *domain.Route, depot domain.Point) {
	t.Helper()

	require.True(t, r.Valid, r.Diagnostic)
	require.True(t, r.IsClosed())
	assert.True(t, r.Path[0].Same(depot))

	depotVisits := 0
	for i, p := range r.Path {
		if p.Same(depot) {
			depotVisits++
		}
		if p.HasDeadline() {
			assert.LessOrEqual(t, r.Arrivals[i], p.Deadline(), "late at %s", p.ID())
		}
	}
	assert.Equal(t, 2, depotVisits)
}

// Direct travel to U2 already misses its deadline.
func TestSolveReportsInfeasibleUpFront(t *testing.T) {
	d, u1, u2 := pt("D", 0, 0), due("U1", 1, 0, 100), due("U2", 0, 1, 60)
	provider := distance.NewSymmetricMockMatrixProvider([]distance.MockPair{
		{From: "D", To: "U1", Meters: 500, Seconds: 50},
		{From: "D", To: "U2", Meters: 800, Seconds: 80},
		{From: "U1", To: "U2", Meters: 300, Seconds: 30},
	})

	r := solveWith(t, DefaultOptions(), provider, d, u1, u2)

	assert.False(t, r.Valid)
	assert.Equal(t, domain.StatusInfeasible, r.Status)
	assert.Equal(t, 1, r.Len())
	assert.Contains(t, r.Diagnostic, "U2")
	assert.NotContains(t, r.Diagnostic, "U1")
}

// Four flexible points and the depot on a convex polygon.
func TestSolveConvexPolygonFollowsPerimeter(t *testing.T) {
	d := pt("D", 0, 0)
	points := []domain.Point{pt("B", 30, 20), pt("A", 30, 0), pt("E", 15, 25), pt("C", 0, 20)}
	perimeter := 70 + 2*math.Sqrt(250)

	for _, strategy := range []Strategy{StrategyFull, StrategyFast} {
		t.Run(string(strategy), func(t *testing.T) {
			provider := distance.NewSymmetricMockMatrixProvider(planar(append([]domain.Point{d}, points...)...))
			opts := Options{Strategy: strategy, RandomTries: 5, MaxPasses: 50, Seed: 3}

			r := solveWith(t, opts, provider, d, points...)

			assertFeasibleClosed(t, r, d)
			assert.Equal(t, domain.StatusSolved, r.Status)
			assert.Len(t, r.Path, 6)
			assert.InDelta(t, perimeter, r.TotalDistance, 1e-6)
		})
	}
}

// D->P is unknown but P is still reachable through Q.
func TestSolveRoutesAroundUnknownEdge(t *testing.T) {
	d, p, q := pt("D", 0, 0), pt("P", 1, 1), pt("Q", 2, 0)
	provider := distance.NewMockMatrixProvider([]distance.MockPair{
		{From: "P", To: "D", Meters: 10, Seconds: 10},
		{From: "D", To: "Q", Meters: 10, Seconds: 10},
		{From: "Q", To: "D", Meters: 10, Seconds: 10},
		{From: "Q", To: "P", Meters: 10, Seconds: 10},
		{From: "P", To: "Q", Meters: 10, Seconds: 10},
	})

	r := solveWith(t, DefaultOptions(), provider, d, p, q)

	assertFeasibleClosed(t, r, d)
	assert.Equal(t, []string{"D", "Q", "P", "D"}, ids(r.Path))
	assert.Equal(t, 30.0, r.TotalDistance)
}

// A depot-only instance is a trivial valid route.
func TestSolveDepotOnly(t *testing.T) {
	d := pt("D", 0, 0)

	r := solveWith(t, DefaultOptions(), distance.NewMockMatrixProvider(nil), d)

	assert.True(t, r.Valid)
	assert.Equal(t, domain.StatusSolved, r.Status)
	assert.Equal(t, 1, r.Len())
	assert.Zero(t, r.TotalDistance)
	assert.Zero(t, r.TotalTime)
}

func TestSolvePartialWhenFlexiblePointDoesNotFit(t *testing.T) {
	d, u, f := pt("D", 0, 0), due("U", 1, 0, 100), pt("F", 0, 1)
	provider := distance.NewSymmetricMockMatrixProvider([]distance.MockPair{
		{From: "D", To: "U", Meters: 10, Seconds: 10},
		{From: "D", To: "F", Meters: 10, Seconds: 10},
	})

	r := solveWith(t, DefaultOptions(), provider, d, u, f)

	assertFeasibleClosed(t, r, d)
	assert.Equal(t, domain.StatusPartial, r.Status)
	require.Len(t, r.Excluded, 1)
	assert.Equal(t, "F", r.Excluded[0].ID())
	assert.Contains(t, r.Diagnostic, "F")
}

func TestSolveFallsBackToBestEffort(t *testing.T) {
	d, u1, u2 := pt("D", 0, 0), due("U1", 1, 0, 15), due("U2", 0, 1, 15)
	pairs := []distance.MockPair{
		{From: "D", To: "U1", Meters: 10, Seconds: 10},
		{From: "D", To: "U2", Meters: 10, Seconds: 10},
		{From: "U1", To: "U2", Meters: 10, Seconds: 10},
	}

	full := solveWith(t, DefaultOptions(), distance.NewSymmetricMockMatrixProvider(pairs), d, u1, u2)
	assert.False(t, full.Valid)
	assert.Equal(t, domain.StatusBestEffort, full.Status)
	assert.Equal(t, 30.0, full.TotalTime)
	assert.Contains(t, full.Diagnostic, "Missed deadline")

	opts := DefaultOptions()
	opts.Strategy = StrategyFast
	fast := solveWith(t, opts, distance.NewSymmetricMockMatrixProvider(pairs), d, u1, u2)
	assert.False(t, fast.Valid)
	assert.Equal(t, domain.StatusBestEffort, fast.Status)
	assert.True(t, strings.HasPrefix(fast.Diagnostic, "Urgent-only route"))
}

// U1 has the later deadline but the smaller slack, so the deadline and slack
// orderings differ: U2,U1 and U1,U2 are both tried.
func twoOrderingInstance() (d, u1, u2 domain.Point) {
	return pt("D", 0, 0), due("U1", 1, 0, 100), due("U2", 0, 1, 90)
}

func TestSolvePrefersShorterTourOverFewerExclusions(t *testing.T) {
	d, u1, u2 := twoOrderingInstance()
	f := pt("F", 1, 1)
	provider := distance.NewMockMatrixProvider([]distance.MockPair{
		// D,U2,U1,D: short, but F has no usable edges around it.
		{From: "D", To: "U2", Meters: 5, Seconds: 5},
		{From: "U2", To: "U1", Meters: 5, Seconds: 5},
		{From: "U1", To: "D", Meters: 5, Seconds: 5},
		// D,U1,U2,F,D: visits everything for 40.
		{From: "D", To: "U1", Meters: 10, Seconds: 60},
		{From: "U1", To: "U2", Meters: 10, Seconds: 10},
		{From: "U2", To: "D", Meters: 10, Seconds: 5},
		{From: "U2", To: "F", Meters: 10, Seconds: 5},
		{From: "F", To: "D", Meters: 10, Seconds: 5},
	})
	opts := Options{Strategy: StrategyFull, RandomTries: 0, MaxPasses: 8, Seed: 1}

	r := solveWith(t, opts, provider, d, u1, u2, f)

	assertFeasibleClosed(t, r, d)
	assert.Equal(t, domain.StatusPartial, r.Status)
	assert.Equal(t, []string{"D", "U2", "U1", "D"}, ids(r.Path))
	assert.Equal(t, 15.0, r.TotalDistance)
	require.Len(t, r.Excluded, 1)
	assert.Equal(t, "F", r.Excluded[0].ID())
}

func TestSolveFallbackKeepsLowestTotalTime(t *testing.T) {
	d, u1, u2 := twoOrderingInstance()
	provider := distance.NewMockMatrixProvider([]distance.MockPair{
		// D,U2,U1,D reaches U1 at 205 and totals 210.
		{From: "D", To: "U2", Meters: 5, Seconds: 5},
		{From: "U2", To: "U1", Meters: 5, Seconds: 200},
		{From: "U1", To: "D", Meters: 5, Seconds: 5},
		// D,U1,U2,D reaches U2 at 160 and totals 165.
		{From: "D", To: "U1", Meters: 50, Seconds: 60},
		{From: "U1", To: "U2", Meters: 50, Seconds: 100},
		{From: "U2", To: "D", Meters: 50, Seconds: 5},
	})
	opts := Options{Strategy: StrategyFull, RandomTries: 0, MaxPasses: 8, Seed: 1}

	r := solveWith(t, opts, provider, d, u1, u2)

	assert.False(t, r.Valid)
	assert.Equal(t, domain.StatusBestEffort, r.Status)
	assert.Equal(t, []string{"D", "U1", "U2", "D"}, ids(r.Path))
	assert.Equal(t, 165.0, r.TotalTime)
}

func TestSolveFallbackRanksUnknownTimeLast(t *testing.T) {
	d, u1, u2 := twoOrderingInstance()
	provider := distance.NewMockMatrixProvider([]distance.MockPair{
		// D,U2,U1 stops at the unknown U2->U1 edge.
		{From: "D", To: "U2", Meters: 5, Seconds: 5},
		{From: "U1", To: "D", Meters: 5, Seconds: 5},
		{From: "D", To: "U1", Meters: 50, Seconds: 60},
		{From: "U1", To: "U2", Meters: 50, Seconds: 100},
		{From: "U2", To: "D", Meters: 50, Seconds: 5},
	})
	opts := Options{Strategy: StrategyFull, RandomTries: 0, MaxPasses: 8, Seed: 1}

	r := solveWith(t, opts, provider, d, u1, u2)

	assert.Equal(t, domain.StatusBestEffort, r.Status)
	assert.Equal(t, []string{"D", "U1", "U2", "D"}, ids(r.Path))
	assert.Equal(t, 165.0, r.TotalTime)
}

func TestSolveIgnoresDepotDeadline(t *testing.T) {
	d, f := due("D", 0, 0, 5), pt("F", 1, 0)
	provider := distance.NewSymmetricMockMatrixProvider([]distance.MockPair{
		{From: "D", To: "F", Meters: 10, Seconds: 10},
	})

	for _, strategy := range []Strategy{StrategyFull, StrategyFast} {
		t.Run(string(strategy), func(t *testing.T) {
			opts := DefaultOptions()
			opts.Strategy = strategy

			r := solveWith(t, opts, provider, d, f)

			assertFeasibleClosed(t, r, d)
			assert.Equal(t, domain.StatusSolved, r.Status)
			assert.Equal(t, []string{"D", "F", "D"}, ids(r.Path))
			assert.Equal(t, 20.0, r.TotalTime)
		})
	}
}

func TestSolveIsReproducibleWithSeed(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	d := pt("D", 0.5, 0.5)
	points := []domain.Point{d}
	for i := 0; i < 9; i++ {
		x, y := rng.Float64(), rng.Float64()
		if i%3 == 0 {
			points = append(points, due(fmt.Sprintf("U%d", i), x, y, 3600))
			continue
		}
		points = append(points, pt(fmt.Sprintf("P%d", i), x, y))
	}

	provider, err := distance.NewHaversineProvider(distance.DefaultAirSpeed)
	require.NoError(t, err)

	var runs []*domain.Route
	for i := 0; i < 2; i++ {
		m := populated(t, provider, points...)
		s, err := NewSolver(m, Options{Strategy: StrategyFull, RandomTries: 10, MaxPasses: 8, Seed: 42})
		require.NoError(t, err)

		r, err := s.Solve(context.Background(), d)
		require.NoError(t, err)
		runs = append(runs, r)
	}

	assertFeasibleClosed(t, runs[0], d)
	assert.Equal(t, domain.StatusSolved, runs[0].Status)
	assert.Equal(t, ids(runs[0].Path), ids(runs[1].Path))
	assert.Equal(t, runs[0].TotalDistance, runs[1].TotalDistance)
}

func TestSolveMisuse(t *testing.T) {
	m := populated(t, distance.NewMockMatrixProvider(nil), pt("D", 0, 0))
	s, err := NewSolver(m, DefaultOptions())
	require.NoError(t, err)

	_, err = s.Solve(context.Background(), domain.Point{})
	assert.True(t, errors.Is(err, ErrMissingDepot))

	m.Clear()
	_, err = s.Solve(context.Background(), pt("D", 0, 0))
	assert.True(t, errors.Is(err, ErrNoPoints))

	_, err = NewSolver(nil, DefaultOptions())
	assert.ErrorIs(t, err, ErrNoMatrix)
}

func TestSolveReportsSolverErrors(t *testing.T) {
	d, a := pt("D", 0, 0), pt("A", 1, 0)

	provider := distance.NewMockMatrixProvider(nil)
	m := populated(t, provider, d, a)
	s, err := NewSolver(m, DefaultOptions())
	require.NoError(t, err)

	r, err := s.Solve(context.Background(), pt("X", 9, 9))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSolverError, r.Status)
	assert.Contains(t, r.Diagnostic, "not inside")

	m.Invalidate()
	provider.Fail = true
	r, err = s.Solve(context.Background(), d)
	require.NoError(t, err)
	assert.False(t, r.Valid)
	assert.Equal(t, domain.StatusSolverError, r.Status)
	assert.Contains(t, r.Diagnostic, "SOLVER ERROR")
	assert.Contains(t, r.Diagnostic, distance.ErrMockUnavailable.Error())
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy(" FAST ")
	require.NoError(t, err)
	assert.Equal(t, StrategyFast, s)

	s, err = ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyFull, s)

	_, err = ParseStrategy("greedy")
	assert.Error(t, err)
}
