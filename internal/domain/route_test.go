package domain

import (
	"strings"
	"testing"
)

func TestRouteAddStepKeepsAccumulatingAfterLateArrival(t *testing.T) {
	depot := NewPoint(KindAir, "D", 0, 0, 0)
	a := NewPoint(KindAir, "A", 1, 0, 5)
	b := NewPoint(KindAir, "B", 2, 0, 0)

	r := NewRoute(depot)
	r.AddStep(a, 100, 10)
	r.AddStep(b, 50, 4)

	if r.Valid {
		t.Fatalf("route should be invalid after late arrival at A")
	}
	if r.TotalDistance != 150 {
		t.Fatalf("distance = %v, want 150", r.TotalDistance)
	}
	if r.TotalTime != 14 {
		t.Fatalf("time = %v, want 14", r.TotalTime)
	}
	if !strings.Contains(r.Diagnostic, "A") {
		t.Fatalf("diagnostic should cite A, got %q", r.Diagnostic)
	}
}

func TestRouteAddUnknownStep(t *testing.T) {
	depot := NewPoint(KindAir, "D", 0, 0, 0)
	a := NewPoint(KindAir, "A", 1, 0, 0)
	b := NewPoint(KindAir, "B", 2, 0, 0)

	r := NewRoute(depot)
	r.AddStep(a, 100, 10)
	r.AddUnknownStep(a, b)

	if r.Valid {
		t.Fatalf("route should be invalid")
	}
	if r.TotalDistance != 100 {
		t.Fatalf("distance = %v, want 100", r.TotalDistance)
	}
	if !IsUnknown(r.TotalTime) || !IsUnknown(r.Arrivals[2]) {
		t.Fatalf("time should be unknown, got %v", r.TotalTime)
	}
	if !strings.Contains(r.String(), "N/A") {
		t.Fatalf("report should render unknown arrival as N/A")
	}
}

func TestRouteInvalidateKeepsFirstReason(t *testing.T) {
	r := NewRoute(NewPoint(KindAir, "D", 0, 0, 0))
	r.Invalidate("first")
	r.Invalidate("second")

	if r.Diagnostic != "first" {
		t.Fatalf("diagnostic = %q, want first", r.Diagnostic)
	}
}
