package domain

import (
	"fmt"
	"math"
	"strings"
)

// Status classifies how a route was produced.
type Status string

const (
	// StatusEvaluated is a plain evaluation result with no solver verdict.
	StatusEvaluated Status = "evaluated"
	// StatusSolved means every point was visited and every deadline met.
	StatusSolved Status = "solved"
	// StatusPartial means the route is feasible but some flexible points were left out.
	StatusPartial Status = "partial"
	// StatusBestEffort means no ordering was feasible; the least-bad one is returned.
	StatusBestEffort Status = "best_effort"
	// StatusInfeasible means an urgent point cannot be reached in time even directly.
	StatusInfeasible Status = "infeasible"
	// StatusSolverError means the solve could not run (matrix or depot problems).
	StatusSolverError Status = "solver_error"
)

// Represents a visiting order together with its arrival-time trace.
//
// Arrivals[i] is the arrival time at Path[i]; Arrivals[0] is always 0.
// Valid turns false on the first unknown edge or missed deadline and never
// turns back. A Route is planning data: solvers build fresh ones rather than
// editing an existing Route.
type Route struct {
	Path          []Point
	Arrivals      []float64
	TotalDistance float64
	TotalTime     float64
	Valid         bool
	Status        Status
	Excluded      []Point
	Diagnostic    string
}

// NewRoute starts a route at start with zero totals.
func NewRoute(start Point) *Route {
	return &Route{
		Path:     []Point{start},
		Arrivals: []float64{0},
		Valid:    true,
		Status:   StatusEvaluated,
	}
}

// AddStep appends next reached over a known edge.
// A missed deadline invalidates the route but totals keep accumulating.
func (r *Route) AddStep(next Point, distance, duration float64) {
	r.TotalDistance += distance
	r.TotalTime += duration

	r.Path = append(r.Path, next)
	r.Arrivals = append(r.Arrivals, r.TotalTime)

	if next.HasDeadline() && r.TotalTime > next.Deadline() {
		r.Invalidate(fmt.Sprintf("Missed deadline at %s (arrival %.1f > due %.0f).", next.ID(), r.TotalTime, next.Deadline()))
	}
}

// AddUnknownStep appends next reached over an edge with unknown cost.
// The arrival and total time become unknown; the distance keeps the known prefix.
func (r *Route) AddUnknownStep(from, next Point) {
	r.Path = append(r.Path, next)
	r.Arrivals = append(r.Arrivals, Unknown())
	r.TotalTime = Unknown()
	r.Invalidate(fmt.Sprintf("Unknown travel cost on edge %s -> %s.", from.ID(), next.ID()))
}

// Invalidate marks the route infeasible. The first reason sticks.
func (r *Route) Invalidate(msg string) {
	if r.Valid || r.Diagnostic == "" {
		r.Diagnostic = msg
	}
	r.Valid = false
}

func (r *Route) Len() int { return len(r.Path) }

func (r *Route) Last() Point { return r.Path[len(r.Path)-1] }

// Order returns a copy of the visiting order.
func (r *Route) Order() []Point {
	out := make([]Point, len(r.Path))
	copy(out, r.Path)
	return out
}

// IsClosed reports whether the route starts and ends at the same point.
func (r *Route) IsClosed() bool {
	return len(r.Path) >= 2 && r.Path[0].Same(r.Path[len(r.Path)-1])
}

// String renders a human readable itinerary report.
func (r *Route) String() string {
	var sb strings.Builder

	sb.WriteString("=== ROUTE REPORT ===\n")
	status := "VALID"
	if !r.Valid {
		status = "INVALID"
	}
	fmt.Fprintf(&sb, "Status: %s (%s)\n", status, r.Status)
	fmt.Fprintf(&sb, "Total Distance: %s m\n", formatCost(r.TotalDistance, 2))
	fmt.Fprintf(&sb, "Total Time: %s s\n", formatCost(r.TotalTime, 2))
	if r.Diagnostic != "" {
		fmt.Fprintf(&sb, "Log: %s\n", r.Diagnostic)
	}

	sb.WriteString("\n--- Itinerary ---\n")
	for i, p := range r.Path {
		arrival := math.NaN()
		if i < len(r.Arrivals) {
			arrival = r.Arrivals[i]
		}

		note := ""
		if p.HasDeadline() {
			if !IsUnknown(arrival) && arrival > p.Deadline() {
				note = fmt.Sprintf(" [LATE! Due: %.0f]", p.Deadline())
			} else {
				note = fmt.Sprintf(" [Due: %.0f]", p.Deadline())
			}
		}
		fmt.Fprintf(&sb, "%-2d | %-8s | %-15s%s\n", i+1, formatCost(arrival, 1), p.ID(), note)
	}

	if len(r.Excluded) > 0 {
		ids := make([]string, 0, len(r.Excluded))
		for _, p := range r.Excluded {
			ids = append(ids, p.ID())
		}
		fmt.Fprintf(&sb, "\nExcluded: %s\n", strings.Join(ids, ", "))
	}

	return sb.String()
}

func formatCost(v float64, prec int) string {
	if IsUnknown(v) {
		return "N/A"
	}
	return fmt.Sprintf("%.*f", prec, v)
}
