package services

import (
	"deadline-route-service/internal/adapters/distance"
	"deadline-route-service/internal/domain"
	"testing"
)

// The cheapest three-edge splice would make U late, so the search must
// pick the later position.
func insertionFixture(t *testing.T) ([]domain.Point, domain.Point, CostLookup) {
	t.Helper()

	d, u, f := pt("D", 0, 0), due("U", 1, 0, 12), pt("F", 0.5, 0.5)
	provider := distance.NewMockMatrixProvider([]distance.MockPair{
		{From: "D", To: "U", Meters: 10, Seconds: 10},
		{From: "U", To: "D", Meters: 10, Seconds: 10},
		{From: "D", To: "F", Meters: 1, Seconds: 1},
		{From: "F", To: "U", Meters: 1, Seconds: 12},
		{From: "U", To: "F", Meters: 5, Seconds: 5},
		{From: "F", To: "D", Meters: 5, Seconds: 5},
	})
	m := populated(t, provider, d, u, f)
	return []domain.Point{d, u, d}, f, m
}

func TestBestFeasibleInsertionRevalidatesWholeRoute(t *testing.T) {
	order, f, m := insertionFixture(t)

	ins, ok := BestFeasibleInsertion(order, f, m)
	if !ok {
		t.Fatalf("expected a feasible insertion")
	}
	if ins.Position != 2 || ins.Delta != 0 {
		t.Fatalf("expected position 2 with delta 0, got position %d delta %v", ins.Position, ins.Delta)
	}
}

func TestBestFeasibleInsertionIsIdempotent(t *testing.T) {
	order, f, m := insertionFixture(t)

	first, ok1 := BestFeasibleInsertion(order, f, m)
	second, ok2 := BestFeasibleInsertion(order, f, m)
	if ok1 != ok2 || first.Position != second.Position || first.Delta != second.Delta || !first.Point.Same(second.Point) {
		t.Fatalf("results differ: %+v vs %+v", first, second)
	}
	if len(order) != 3 {
		t.Fatalf("input order was modified: %v", ids(order))
	}
}

func TestBestFeasibleInsertionTieGoesToFirstPosition(t *testing.T) {
	d, a, c := pt("D", 0, 0), pt("A", 2, 0), pt("C", 1, 0)
	provider := distance.NewSymmetricMockMatrixProvider([]distance.MockPair{
		{From: "D", To: "A", Meters: 10, Seconds: 10},
		{From: "D", To: "C", Meters: 5, Seconds: 5},
		{From: "C", To: "A", Meters: 5, Seconds: 5},
	})
	m := populated(t, provider, d, a, c)

	ins, ok := BestFeasibleInsertion([]domain.Point{d, a, d}, c, m)
	if !ok || ins.Position != 1 {
		t.Fatalf("expected first of two equal positions, got %+v ok=%t", ins, ok)
	}
}

func TestBestFeasibleInsertionRejectsPresentPoint(t *testing.T) {
	order, _, m := insertionFixture(t)
	if _, ok := BestFeasibleInsertion(order, order[1], m); ok {
		t.Fatalf("expected no insertion for a point already on the route")
	}
}

func TestInsertFlexibleReportsLeftovers(t *testing.T) {
	d, u, f, g := pt("D", 0, 0), due("U", 1, 0, 10), pt("F", 0, 1), pt("G", 5, 5)
	provider := distance.NewSymmetricMockMatrixProvider([]distance.MockPair{
		{From: "D", To: "U", Meters: 10, Seconds: 10},
		{From: "D", To: "F", Meters: 3, Seconds: 3},
		{From: "U", To: "F", Meters: 8, Seconds: 8},
		{From: "D", To: "G", Meters: 50, Seconds: 50},
	})
	m := populated(t, provider, d, u, f, g)

	out, remaining := InsertFlexible([]domain.Point{d, u, d}, []domain.Point{g, f}, m)

	if len(remaining) != 1 || remaining[0].ID() != "G" {
		t.Fatalf("expected G left over, got %v", ids(remaining))
	}
	want := []string{"D", "U", "F", "D"}
	got := ids(out)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if !Evaluate(out, m).Valid {
		t.Fatalf("result should stay feasible")
	}
}
