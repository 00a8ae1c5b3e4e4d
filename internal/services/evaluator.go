package services

import (
	"deadline-route-service/internal/domain"
)

// CostLookup is the read side of a populated travel matrix.
type CostLookup interface {
	IndexOf(p domain.Point) int
	Distance(i, j int) float64
	Time(i, j int) float64
}

// Evaluate walks order edge by edge and builds a fresh Route.
//
// The first unknown edge ends the walk: the point is appended with an
// unknown arrival and nothing after it is looked at. A missed deadline
// invalidates the route but the walk continues, so late routes still carry
// complete totals.
func Evaluate(order []domain.Point, costs CostLookup) *domain.Route {
	if len(order) == 0 {
		return &domain.Route{Status: domain.StatusEvaluated, Diagnostic: "Empty visiting order."}
	}

	route := domain.NewRoute(order[0])
	for k := 1; k < len(order); k++ {
		prev, next := order[k-1], order[k]
		i, j := costs.IndexOf(prev), costs.IndexOf(next)

		dist := costs.Distance(i, j)
		dur := costs.Time(i, j)
		if domain.IsUnknown(dist) || domain.IsUnknown(dur) {
			route.AddUnknownStep(prev, next)
			return route
		}

		route.AddStep(next, dist, dur)
	}

	return route
}

// DeltaIfInsert returns the change in distance from splicing p in before
// order[position]. Position 0 and positions at or past the end are invalid.
// Any unknown edge yields the unknown sentinel.
func DeltaIfInsert(order []domain.Point, position int, p domain.Point, costs CostLookup) float64 {
	if position <= 0 || position >= len(order) {
		return domain.Unknown()
	}

	ia := costs.IndexOf(order[position-1])
	ib := costs.IndexOf(order[position])
	ic := costs.IndexOf(p)

	oldEdge := costs.Distance(ia, ib)
	newEdge1 := costs.Distance(ia, ic)
	newEdge2 := costs.Distance(ic, ib)
	if domain.IsUnknown(oldEdge) || domain.IsUnknown(newEdge1) || domain.IsUnknown(newEdge2) {
		return domain.Unknown()
	}

	return newEdge1 + newEdge2 - oldEdge
}

func insertAt(order []domain.Point, position int, p domain.Point) []domain.Point {
	out := make([]domain.Point, 0, len(order)+1)
	out = append(out, order[:position]...)
	out = append(out, p)
	out = append(out, order[position:]...)
	return out
}

func removeAt(order []domain.Point, position int) []domain.Point {
	out := make([]domain.Point, 0, len(order)-1)
	out = append(out, order[:position]...)
	out = append(out, order[position+1:]...)
	return out
}

func clonePoints(order []domain.Point) []domain.Point {
	out := make([]domain.Point, len(order))
	copy(out, order)
	return out
}

func contains(order []domain.Point, p domain.Point) bool {
	for _, q := range order {
		if q.Same(p) {
			return true
		}
	}
	return false
}
