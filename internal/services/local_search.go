package services

import (
	"deadline-route-service/internal/domain"
)

// improvementEps is the minimum distance gain for a move to count.
const improvementEps = 1e-6

// ImproveClosed runs relocate and 2-opt first-improvement passes over a
// feasible closed tour and returns the improved copy. Each pass accepts at
// most one relocate and one 2-opt move; a pass that accepts nothing stops
// the search. Inputs that are open, too short, or infeasible come back unchanged.
func ImproveClosed(order []domain.Point, costs CostLookup, maxPasses int) []domain.Point {
	cur := clonePoints(order)
	if !improvable(cur, costs) {
		return cur
	}

	for pass := 0; pass < maxPasses; pass++ {
		improved := false

		if next, ok := relocateMove(cur, costs); ok {
			cur = next
			improved = true
		}
		if next, ok := twoOptMove(cur, costs); ok {
			cur = next
			improved = true
		}

		if !improved {
			break
		}
	}

	return cur
}

func improvable(order []domain.Point, costs CostLookup) bool {
	if len(order) < 4 || !order[0].Same(order[len(order)-1]) {
		return false
	}
	return Evaluate(order, costs).Valid
}

// relocateMove removes one interior point and reinserts it elsewhere,
// returning the first feasible order that is strictly shorter.
func relocateMove(order []domain.Point, costs CostLookup) ([]domain.Point, bool) {
	base := Evaluate(order, costs)
	if !base.Valid {
		return nil, false
	}

	n := len(order)
	for from := 1; from <= n-2; from++ {
		node := order[from]
		if node.Same(order[0]) {
			continue
		}

		removed := removeAt(order, from)
		for to := 1; to <= len(removed)-1; to++ {
			if to == from {
				continue
			}

			trial := insertAt(removed, to, node)
			r := Evaluate(trial, costs)
			if r.Valid && r.TotalDistance+improvementEps < base.TotalDistance {
				return trial, true
			}
		}
	}

	return nil, false
}

// twoOptMove reverses one interior sub-sequence, returning the first
// feasible order that is strictly shorter.
func twoOptMove(order []domain.Point, costs CostLookup) ([]domain.Point, bool) {
	base := Evaluate(order, costs)
	if !base.Valid {
		return nil, false
	}

	n := len(order)
	for i := 1; i <= n-3; i++ {
		for k := i + 1; k <= n-2; k++ {
			trial := clonePoints(order)
			reverse(trial, i, k)

			r := Evaluate(trial, costs)
			if r.Valid && r.TotalDistance+improvementEps < base.TotalDistance {
				return trial, true
			}
		}
	}

	return nil, false
}

// SegmentTwoOpt applies 2-opt only inside the stretches between consecutive
// urgent points (and the depot at both ends), so urgent points keep their
// positions. Reversals that break feasibility or fail to shorten the tour are
// undone on the spot.
func SegmentTwoOpt(order []domain.Point, costs CostLookup) []domain.Point {
	cur := clonePoints(order)
	if !improvable(cur, costs) {
		return cur
	}

	best := Evaluate(cur, costs).TotalDistance

	fixed := []int{0}
	for i := 1; i < len(cur)-1; i++ {
		if cur[i].HasDeadline() {
			fixed = append(fixed, i)
		}
	}
	fixed = append(fixed, len(cur)-1)

	for f := 0; f < len(fixed)-1; f++ {
		segStart, segEnd := fixed[f], fixed[f+1]
		if segEnd-segStart < 3 {
			continue
		}

		for improved := true; improved; {
			improved = false

			for i := segStart + 1; i < segEnd-1; i++ {
				for k := i + 1; k < segEnd; k++ {
					gain := gainIf2Opt(cur, i, k, costs)
					if domain.IsUnknown(gain) || gain >= -1e-9 {
						continue
					}

					reverse(cur, i, k)
					r := Evaluate(cur, costs)
					if !r.Valid || r.TotalDistance+improvementEps >= best {
						reverse(cur, i, k)
						continue
					}

					best = r.TotalDistance
					improved = true
				}
			}
		}
	}

	return cur
}

// gainIf2Opt is the distance change from replacing edges (a,b),(c,d) with
// (a,c),(b,d) where a=order[i-1], b=order[i], c=order[k], d=order[k+1].
func gainIf2Opt(order []domain.Point, i, k int, costs CostLookup) float64 {
	ia := costs.IndexOf(order[i-1])
	ib := costs.IndexOf(order[i])
	ic := costs.IndexOf(order[k])
	id := costs.IndexOf(order[k+1])

	ab := costs.Distance(ia, ib)
	cd := costs.Distance(ic, id)
	ac := costs.Distance(ia, ic)
	bd := costs.Distance(ib, id)
	if domain.IsUnknown(ab) || domain.IsUnknown(cd) || domain.IsUnknown(ac) || domain.IsUnknown(bd) {
		return domain.Unknown()
	}

	return ac + bd - ab - cd
}

func reverse(order []domain.Point, i, k int) {
	for i < k {
		order[i], order[k] = order[k], order[i]
		i++
		k--
	}
}
