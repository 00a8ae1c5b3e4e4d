package services

import (
	"deadline-route-service/internal/domain"
)

// Insertion is a feasible splice of Point before order[Position].
type Insertion struct {
	Position int
	Point    domain.Point
	Delta    float64
}

// BestFeasibleInsertion scans every interior position and returns the one
// with the smallest distance increase whose whole resulting route is still
// feasible. A detour can push a later urgent point past its deadline, so the
// three-edge delta alone is not enough. Ties go to the earliest position.
func BestFeasibleInsertion(order []domain.Point, p domain.Point, costs CostLookup) (Insertion, bool) {
	var (
		best  Insertion
		found bool
	)
	if len(order) < 2 || contains(order, p) {
		return best, false
	}

	for idx := 1; idx < len(order); idx++ {
		delta := DeltaIfInsert(order, idx, p, costs)
		if domain.IsUnknown(delta) {
			continue
		}
		if found && delta >= best.Delta {
			continue
		}

		if !Evaluate(insertAt(order, idx, p), costs).Valid {
			continue
		}

		best = Insertion{Position: idx, Point: p, Delta: delta}
		found = true
	}

	return best, found
}

// InsertFlexible greedily applies the cheapest feasible insertion across all
// candidates until none fits. It returns the new order and the candidates that
// could not be placed, in their original order.
func InsertFlexible(order []domain.Point, candidates []domain.Point, costs CostLookup) ([]domain.Point, []domain.Point) {
	out := clonePoints(order)
	remaining := clonePoints(candidates)

	for len(remaining) > 0 {
		var (
			best    Insertion
			bestIdx = -1
		)

		for ci, c := range remaining {
			ins, ok := BestFeasibleInsertion(out, c, costs)
			if !ok {
				continue
			}
			if bestIdx < 0 || ins.Delta < best.Delta {
				best = ins
				bestIdx = ci
			}
		}

		if bestIdx < 0 {
			break
		}

		out = insertAt(out, best.Position, best.Point)
		remaining = removeAt(remaining, bestIdx)
	}

	return out, remaining
}
