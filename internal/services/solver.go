package services

import (
	"context"
	"deadline-route-service/internal/domain"
	"deadline-route-service/internal/matrix"
	"deadline-route-service/internal/platform/obs"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"strings"
	"time"
)

var (
	// ErrNoMatrix is returned when a solver is built without a matrix.
	ErrNoMatrix = errors.New("solver: travel matrix is nil")
	// ErrMissingDepot is returned when Solve is called with a zero Point.
	ErrMissingDepot = errors.New("solver: start point is missing")
	// ErrNoPoints is returned when the matrix holds no points at all.
	ErrNoPoints = errors.New("solver: point set is empty")
)

// Strategy selects the speed/quality trade-off of a solve.
type Strategy string

const (
	// StrategyFull tries many urgent orderings with relocate + global 2-opt.
	StrategyFull Strategy = "full"
	// StrategyFast runs one slack-ordered pass with segment-restricted 2-opt.
	StrategyFast Strategy = "fast"
)

// ParseStrategy accepts "", "full" or "fast".
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyFull:
		return StrategyFull, nil
	case StrategyFast:
		return StrategyFast, nil
	default:
		return "", fmt.Errorf("parse strategy: unknown strategy %q", s)
	}
}

// Options tunes a Solver.
type Options struct {
	Strategy Strategy
	// RandomTries is the number of shuffled urgent orderings tried by StrategyFull.
	RandomTries int
	// MaxPasses bounds relocate + 2-opt passes per ordering.
	MaxPasses int
	// Seed drives the shuffles. 0 seeds from the clock.
	Seed int64
}

func DefaultOptions() Options {
	return Options{
		Strategy:    StrategyFull,
		RandomTries: 25,
		MaxPasses:   8,
	}
}

// Solver computes deadline-feasible closed tours over a caller-owned matrix.
// It is not safe for concurrent use; give each concurrent solve its own
// Solver and matrix.
type Solver struct {
	matrix *matrix.TravelMatrix
	opts   Options
}

func NewSolver(m *matrix.TravelMatrix, opts Options) (*Solver, error) {
	if m == nil {
		return nil, ErrNoMatrix
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyFull
	}
	if opts.RandomTries < 0 {
		opts.RandomTries = 0
	}
	if opts.MaxPasses <= 0 {
		opts.MaxPasses = DefaultOptions().MaxPasses
	}
	return &Solver{matrix: m, opts: opts}, nil
}

// Solve returns a closed tour starting and ending at depot.
//
// Misuse (zero depot, empty point set) is reported as an error. Every other
// outcome is a Route: feasible (Solved/Partial), the least-bad infeasible one
// (BestEffort), an up-front Infeasible verdict, or a SolverError route when the
// depot is unknown or the matrix cannot be populated.
func (s *Solver) Solve(ctx context.Context, depot domain.Point) (_ *domain.Route, err error) {
	defer obs.Time(ctx, "solver.Solve")(&err)

	if depot.ID() == "" {
		return nil, ErrMissingDepot
	}
	if s.matrix.Len() == 0 {
		return nil, ErrNoPoints
	}
	if !s.matrix.Contains(depot) {
		return failRoute(depot, "Start point is not inside the matrix point set."), nil
	}

	if !s.matrix.CheckIntegrity() {
		if perr := s.matrix.Populate(ctx); perr != nil || !s.matrix.CheckIntegrity() {
			msg := "Matrix could not be populated."
			if perr != nil {
				msg = fmt.Sprintf("Matrix could not be populated: %v", perr)
			}
			return failRoute(depot, msg), nil
		}
	}

	// The tour closes at the depot whenever it finishes; its deadline never applies.
	points := s.matrix.Points()
	depot = points[s.matrix.IndexOf(depot)].WithoutDeadline()

	if len(points) == 1 {
		r := Evaluate([]domain.Point{depot}, s.matrix)
		r.Status = domain.StatusSolved
		r.Diagnostic = "Only the depot is present; nothing to visit."
		return r, nil
	}

	c := newConstruction(depot, points, s.matrix)
	if u, direct, bad := c.unreachableUrgent(); bad {
		r := domain.NewRoute(depot)
		r.Invalidate(fmt.Sprintf(
			"No valid route: direct travel to urgent point %s already misses its deadline (direct %.1f s > due %.0f s).",
			u.ID(), direct, u.Deadline(),
		))
		r.Status = domain.StatusInfeasible
		return r, nil
	}

	var route *domain.Route
	switch s.opts.Strategy {
	case StrategyFast:
		route = s.solveFast(c)
	default:
		route = s.solveFull(c)
	}

	log.Printf(
		"solve strategy=%s points=%d urgent=%d status=%s valid=%t dist=%.1f time=%.1f excluded=%d",
		s.opts.Strategy, len(points), len(c.urgent), route.Status, route.Valid,
		route.TotalDistance, route.TotalTime, len(route.Excluded),
	)
	return route, nil
}

// solveFull tries every urgent ordering, fills in flexible points, improves
// with relocate + 2-opt and keeps the best feasible tour. Orderings whose
// urgent-only tour already fails are kept only as fallbacks.
func (s *Solver) solveFull(c *construction) *domain.Route {
	var best, fallback *domain.Route

	for _, urgentOrder := range c.orderings(s.rng(), s.opts.RandomTries) {
		tour := c.closedTour(urgentOrder)

		urgentOnly := Evaluate(tour, s.matrix)
		if !urgentOnly.Valid {
			fallback = betterFallback(fallback, urgentOnly)
			continue
		}

		tour, remaining := InsertFlexible(tour, c.flexible, s.matrix)
		tour = ImproveClosed(tour, s.matrix, s.opts.MaxPasses)

		r := Evaluate(tour, s.matrix)
		if !r.Valid {
			fallback = betterFallback(fallback, r)
			continue
		}

		r.Excluded = remaining
		if best == nil || betterFeasible(r, best) {
			best = r
		}
	}

	if best != nil {
		return finishFeasible(best, "optimized: relocate + global 2-opt")
	}
	if fallback != nil {
		return finishFallback(fallback)
	}
	return failRoute(c.depot, "Solver failed unexpectedly.")
}

// solveFast runs a single slack-ordered construction followed by 2-opt
// restricted to the stretches between urgent points.
func (s *Solver) solveFast(c *construction) *domain.Route {
	tour := c.closedTour(c.bySlack())

	urgentOnly := Evaluate(tour, s.matrix)
	if !urgentOnly.Valid {
		urgentOnly.Status = domain.StatusBestEffort
		urgentOnly.Diagnostic = "Urgent-only route already misses a deadline. " + urgentOnly.Diagnostic
		return urgentOnly
	}

	tour, remaining := InsertFlexible(tour, c.flexible, s.matrix)
	tour = SegmentTwoOpt(tour, s.matrix)

	r := Evaluate(tour, s.matrix)
	if !r.Valid {
		return finishFallback(r)
	}
	r.Excluded = remaining
	return finishFeasible(r, "fast: slack insertion + segment 2-opt")
}

func (s *Solver) rng() *rand.Rand {
	seed := s.opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// betterFeasible prefers the shorter tour, however many flexible points it
// left out. Ties keep the earlier route.
func betterFeasible(a, b *domain.Route) bool {
	return a.TotalDistance < b.TotalDistance
}

// betterFallback keeps the invalid route with the lower total time; unknown
// totals rank last and ties keep the earlier route.
func betterFallback(cur, cand *domain.Route) *domain.Route {
	if cur == nil {
		return cand
	}
	if sortableTime(cand) < sortableTime(cur) {
		return cand
	}
	return cur
}

func sortableTime(r *domain.Route) float64 {
	if domain.IsUnknown(r.TotalTime) {
		return math.Inf(1)
	}
	return r.TotalTime
}

func finishFeasible(r *domain.Route, label string) *domain.Route {
	if len(r.Excluded) == 0 {
		r.Status = domain.StatusSolved
		r.Diagnostic = fmt.Sprintf("Valid route found successfully (%s).", label)
		return r
	}

	ids := make([]string, 0, len(r.Excluded))
	for _, p := range r.Excluded {
		ids = append(ids, p.ID())
	}
	r.Status = domain.StatusPartial
	r.Diagnostic = fmt.Sprintf(
		"Valid route found (%s), but %d flexible point(s) could not be inserted without missing deadlines: %s.",
		label, len(r.Excluded), strings.Join(ids, ", "),
	)
	return r
}

func finishFallback(r *domain.Route) *domain.Route {
	cause := r.Diagnostic
	r.Status = domain.StatusBestEffort
	r.Valid = false
	r.Diagnostic = "No valid route found. Returning best invalid route found by the heuristic."
	if cause != "" {
		r.Diagnostic += " Cause: " + cause
	}
	return r
}

func failRoute(start domain.Point, msg string) *domain.Route {
	r := domain.NewRoute(start)
	r.Invalidate("SOLVER ERROR: " + msg)
	r.Status = domain.StatusSolverError
	return r
}
