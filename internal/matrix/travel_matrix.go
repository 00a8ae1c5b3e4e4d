// Package matrix owns the pairwise travel tables a solve runs against.
//
// A TravelMatrix is an explicit, caller-owned instance bound to one point
// kind and one provider. Concurrent solves must each use their own instance.
package matrix

import (
	"context"
	"deadline-route-service/internal/domain"
	"deadline-route-service/internal/platform/obs"
	"deadline-route-service/internal/ports"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoProvider   = errors.New("travel matrix: no provider configured")
	ErrEmptyMatrix  = errors.New("travel matrix: no points")
	ErrKindMismatch = errors.New("travel matrix: point kind does not match matrix kind")
	ErrUnknownKind  = errors.New("travel matrix: kind is not registered")
	ErrShape        = errors.New("travel matrix: provider returned tables of the wrong shape")
)

// TravelMatrix memoizes distance/time tables for the current point set.
// Any membership change discards the tables; Populate must run again
// before they can be read.
type TravelMatrix struct {
	kind     domain.Kind
	provider ports.MatrixProvider

	members   []domain.Point
	memberIdx map[domain.Key]int

	snapshot []domain.Point
	index    map[domain.Key]int
	distance [][]float64
	time     [][]float64
}

func New(kind domain.Kind, provider ports.MatrixProvider) (*TravelMatrix, error) {
	if _, ok := domain.LookupKind(kind); !ok {
		return nil, fmt.Errorf("new travel matrix: %w: %q", ErrUnknownKind, kind)
	}
	if provider == nil {
		return nil, fmt.Errorf("new travel matrix for %q: %w", kind, ErrNoProvider)
	}

	return &TravelMatrix{
		kind:      kind,
		provider:  provider,
		memberIdx: make(map[domain.Key]int),
	}, nil
}

func (m *TravelMatrix) Kind() domain.Kind { return m.kind }

// RequiresExternal reports whether populating this matrix needs a network call.
func (m *TravelMatrix) RequiresExternal() bool {
	spec, _ := domain.LookupKind(m.kind)
	return spec.RequiresExternal
}

// Add inserts p unless a point at the same location is already present.
// It reports whether membership changed.
func (m *TravelMatrix) Add(p domain.Point) (bool, error) {
	if p.Kind() != m.kind {
		return false, fmt.Errorf("add point %q: %w (point=%s matrix=%s)", p.ID(), ErrKindMismatch, p.Kind(), m.kind)
	}
	if _, ok := m.memberIdx[p.Key()]; ok {
		return false, nil
	}

	m.memberIdx[p.Key()] = len(m.members)
	m.members = append(m.members, p)
	m.Invalidate()
	return true, nil
}

// AddAll adds every point, stopping at the first kind mismatch.
func (m *TravelMatrix) AddAll(points []domain.Point) error {
	for _, p := range points {
		if _, err := m.Add(p); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes the point at p's location and reports whether it was present.
func (m *TravelMatrix) Remove(p domain.Point) bool {
	i, ok := m.memberIdx[p.Key()]
	if !ok {
		return false
	}

	m.members = append(m.members[:i], m.members[i+1:]...)
	m.memberIdx = make(map[domain.Key]int, len(m.members))
	for j, q := range m.members {
		m.memberIdx[q.Key()] = j
	}
	m.Invalidate()
	return true
}

// Clear removes every point.
func (m *TravelMatrix) Clear() {
	m.members = nil
	m.memberIdx = make(map[domain.Key]int)
	m.Invalidate()
}

// Invalidate discards the tables and the index snapshot.
func (m *TravelMatrix) Invalidate() {
	m.snapshot = nil
	m.index = nil
	m.distance = nil
	m.time = nil
}

// Len returns the number of member points.
func (m *TravelMatrix) Len() int { return len(m.members) }

func (m *TravelMatrix) Contains(p domain.Point) bool {
	_, ok := m.memberIdx[p.Key()]
	return ok
}

// Points returns the indexed snapshot when populated, membership order otherwise.
func (m *TravelMatrix) Points() []domain.Point {
	src := m.members
	if len(m.snapshot) > 0 {
		src = m.snapshot
	}
	out := make([]domain.Point, len(src))
	copy(out, src)
	return out
}

// IndexOf returns p's row/column, or -1 when p is not a member.
func (m *TravelMatrix) IndexOf(p domain.Point) int {
	if len(m.snapshot) > 0 {
		if i, ok := m.index[p.Key()]; ok {
			return i
		}
		return -1
	}
	if i, ok := m.memberIdx[p.Key()]; ok {
		return i
	}
	return -1
}

// Populate snapshots the current membership and fills both tables from the
// provider. On any failure the matrix is left invalidated, never half-filled.
func (m *TravelMatrix) Populate(ctx context.Context) (err error) {
	defer obs.Time(ctx, "matrix.Populate")(&err)

	m.Invalidate()
	if len(m.members) == 0 {
		return fmt.Errorf("populate %s matrix: %w", m.kind, ErrEmptyMatrix)
	}

	snapshot := make([]domain.Point, len(m.members))
	copy(snapshot, m.members)

	tables, err := m.provider.Lookup(ctx, snapshot)
	if err != nil {
		return fmt.Errorf("populate %s matrix: provider lookup: %w", m.kind, err)
	}

	n := len(snapshot)
	if !square(tables.Distance, n) || !square(tables.Time, n) {
		return fmt.Errorf("populate %s matrix: %w (want %dx%d)", m.kind, ErrShape, n, n)
	}

	dist := make([][]float64, n)
	tm := make([][]float64, n)
	index := make(map[domain.Key]int, n)
	for i := 0; i < n; i++ {
		dist[i] = append([]float64(nil), tables.Distance[i]...)
		tm[i] = append([]float64(nil), tables.Time[i]...)
		dist[i][i] = 0
		tm[i][i] = 0
		index[snapshot[i].Key()] = i
	}

	m.snapshot = snapshot
	m.index = index
	m.distance = dist
	m.time = tm
	return nil
}

// CheckIntegrity reports whether the tables are present, square, and sized
// to the current snapshot and membership.
func (m *TravelMatrix) CheckIntegrity() bool {
	n := len(m.snapshot)
	if n == 0 || n != len(m.members) {
		return false
	}
	return square(m.distance, n) && square(m.time, n)
}

// Distance returns meters from i to j, or the unknown sentinel for any bad index.
func (m *TravelMatrix) Distance(i, j int) float64 { return at(m.distance, i, j) }

// Time returns seconds from i to j, or the unknown sentinel for any bad index.
func (m *TravelMatrix) Time(i, j int) float64 { return at(m.time, i, j) }

// DistanceBetween looks up by point identity.
func (m *TravelMatrix) DistanceBetween(a, b domain.Point) float64 {
	return m.Distance(m.IndexOf(a), m.IndexOf(b))
}

// TimeBetween looks up by point identity.
func (m *TravelMatrix) TimeBetween(a, b domain.Point) float64 {
	return m.Time(m.IndexOf(a), m.IndexOf(b))
}

func at(t [][]float64, i, j int) float64 {
	if t == nil || i < 0 || j < 0 || i >= len(t) || j >= len(t[i]) {
		return domain.Unknown()
	}
	return t[i][j]
}

func square(t [][]float64, n int) bool {
	if len(t) != n {
		return false
	}
	for _, row := range t {
		if len(row) != n {
			return false
		}
	}
	return true
}

// String renders both tables, showing N/A for unknown entries.
func (m *TravelMatrix) String() string {
	if len(m.members) == 0 {
		return "MATRIX : [Empty]"
	}
	if !m.CheckIntegrity() {
		return fmt.Sprintf("MATRIX : [Not Populated] (Points: %d)", len(m.members))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "=== MATRIX (Kind: %s) ===\n\n", m.kind)
	sb.WriteString("--- Distance Matrix (Meters) ---\n")
	m.writeTable(&sb, m.distance)
	sb.WriteString("\n--- Time Matrix (Seconds) ---\n")
	m.writeTable(&sb, m.time)
	return sb.String()
}

func (m *TravelMatrix) writeTable(sb *strings.Builder, data [][]float64) {
	fmt.Fprintf(sb, "%-15s", "[To ->]")
	for _, p := range m.snapshot {
		fmt.Fprintf(sb, "%-12s", truncate(p.ID(), 10))
	}
	sb.WriteString("\n")

	for i, p := range m.snapshot {
		fmt.Fprintf(sb, "%-15s", truncate(p.ID(), 14))
		for j := range m.snapshot {
			v := data[i][j]
			if domain.IsUnknown(v) {
				fmt.Fprintf(sb, "%-12s", "N/A")
				continue
			}
			fmt.Fprintf(sb, "%-12.2f", v)
		}
		sb.WriteString("\n")
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "."
}
