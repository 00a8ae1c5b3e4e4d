package services

import (
	"deadline-route-service/internal/domain"
	"math"
	"math/rand"
	"slices"
	"strconv"
	"strings"
)

// construction holds the inputs shared by every ordering tried in one solve.
type construction struct {
	costs    CostLookup
	depot    domain.Point
	urgent   []domain.Point
	flexible []domain.Point
}

// newConstruction splits every non-depot point into urgent (has a deadline)
// and flexible, keeping the input order inside each group.
func newConstruction(depot domain.Point, points []domain.Point, costs CostLookup) *construction {
	c := &construction{costs: costs, depot: depot}
	for _, p := range points {
		if p.Same(depot) {
			continue
		}
		if p.HasDeadline() {
			c.urgent = append(c.urgent, p)
		} else {
			c.flexible = append(c.flexible, p)
		}
	}
	return c
}

// directTime is depot -> p travel time, +Inf when unknown.
func (c *construction) directTime(p domain.Point) float64 {
	t := travelTime(c.costs, c.depot, p)
	if domain.IsUnknown(t) {
		return math.Inf(1)
	}
	return t
}

// slack is how much later than the direct trip p may still be reached.
func (c *construction) slack(p domain.Point) float64 {
	return p.Deadline() - c.directTime(p)
}

// unreachableUrgent returns the first urgent point whose known direct travel
// time already exceeds its deadline. Such an instance has no feasible tour.
func (c *construction) unreachableUrgent() (domain.Point, float64, bool) {
	for _, u := range c.urgent {
		direct := travelTime(c.costs, c.depot, u)
		if !domain.IsUnknown(direct) && direct > u.Deadline() {
			return u, direct, true
		}
	}
	return domain.Point{}, 0, false
}

func (c *construction) sortedUrgent(key func(domain.Point) float64) []domain.Point {
	out := clonePoints(c.urgent)
	slices.SortStableFunc(out, func(a, b domain.Point) int {
		ka, kb := key(a), key(b)
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		default:
			return 0
		}
	})
	return out
}

func (c *construction) bySlack() []domain.Point {
	return c.sortedUrgent(c.slack)
}

// orderings lists the urgent orderings to try: by deadline, by slack, by
// direct travel time, then randomTries shuffles. Duplicate orderings are
// dropped so small instances do not repeat work.
func (c *construction) orderings(rng *rand.Rand, randomTries int) [][]domain.Point {
	candidates := [][]domain.Point{
		c.sortedUrgent(func(p domain.Point) float64 { return p.Deadline() }),
		c.bySlack(),
		c.sortedUrgent(c.directTime),
	}

	for i := 0; i < randomTries; i++ {
		shuf := clonePoints(c.urgent)
		rng.Shuffle(len(shuf), func(a, b int) { shuf[a], shuf[b] = shuf[b], shuf[a] })
		candidates = append(candidates, shuf)
	}

	seen := make(map[string]struct{}, len(candidates))
	out := make([][]domain.Point, 0, len(candidates))
	for _, ord := range candidates {
		sig := signature(ord)
		if _, ok := seen[sig]; ok {
			continue
		}
		seen[sig] = struct{}{}
		out = append(out, ord)
	}
	return out
}

// closedTour builds depot -> urgent... -> depot.
func (c *construction) closedTour(urgentOrder []domain.Point) []domain.Point {
	tour := make([]domain.Point, 0, len(urgentOrder)+2+len(c.flexible))
	tour = append(tour, c.depot)
	tour = append(tour, urgentOrder...)
	tour = append(tour, c.depot)
	return tour
}

func travelTime(costs CostLookup, a, b domain.Point) float64 {
	return costs.Time(costs.IndexOf(a), costs.IndexOf(b))
}

func signature(order []domain.Point) string {
	var sb strings.Builder
	for _, p := range order {
		k := p.Key()
		sb.WriteString(strconv.FormatInt(k.X, 10))
		sb.WriteByte(',')
		sb.WriteString(strconv.FormatInt(k.Y, 10))
		sb.WriteByte(';')
	}
	return sb.String()
}
