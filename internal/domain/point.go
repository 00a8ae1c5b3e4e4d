package domain

import (
	"fmt"
	"math"
	"strings"
)

// NoDeadline marks a point that may be visited at any time.
var NoDeadline = math.Inf(1)

// Point is an immutable labeled location with an optional delivery deadline
// (seconds after departure from the depot).
//
// Two points are the same point when their coordinates agree after rounding
// to 1e-6 degrees, regardless of id.
type Point struct {
	id       string
	kind     Kind
	coords   Coordinates
	deadline float64
	address  string
}

// NewPoint builds a point, normalizing out-of-range coordinates and replacing
// blank or reserved ids with a generated one. Non-positive or non-finite
// deadlines mean "no deadline".
func NewPoint(kind Kind, id string, lon, lat, deadline float64) Point {
	return NewPointNamed(DefaultNamer, kind, id, lon, lat, deadline)
}

// NewPointNamed is NewPoint with an explicit id generator.
func NewPointNamed(namer *Namer, kind Kind, id string, lon, lat, deadline float64) Point {
	id = strings.TrimSpace(id)
	if id == "" || hasReservedPrefix(id) {
		id = namer.Next(kind)
	}

	if deadline <= 0 || math.IsNaN(deadline) || math.IsInf(deadline, 0) {
		deadline = NoDeadline
	}

	return Point{
		id:       id,
		kind:     kind,
		coords:   Coordinates{Lon: lon, Lat: lat}.Normalize(),
		deadline: deadline,
	}
}

// WithAddress returns a copy of p carrying a street address.
func (p Point) WithAddress(address string) Point {
	p.address = strings.TrimSpace(address)
	return p
}

// WithoutDeadline returns a copy of p that may be reached at any time.
func (p Point) WithoutDeadline() Point {
	p.deadline = NoDeadline
	return p
}

func (p Point) ID() string               { return p.id }
func (p Point) Kind() Kind               { return p.kind }
func (p Point) Coordinates() Coordinates { return p.coords }
func (p Point) X() float64               { return p.coords.Lon }
func (p Point) Y() float64               { return p.coords.Lat }
func (p Point) Deadline() float64        { return p.deadline }
func (p Point) HasDeadline() bool        { return !math.IsInf(p.deadline, 1) }
func (p Point) Key() Key                 { return p.coords.Key() }

// Address returns the street address, or "{lat, lon}" when none was given.
func (p Point) Address() string {
	if p.address != "" {
		return p.address
	}
	return fmt.Sprintf("{%.6f, %.6f}", p.coords.Lat, p.coords.Lon)
}

// HasAddress reports whether an explicit address was supplied.
func (p Point) HasAddress() bool { return p.address != "" }

// Same reports location identity.
func (p Point) Same(o Point) bool { return p.Key() == o.Key() }

func (p Point) String() string {
	s := fmt.Sprintf("%s - {%.2f, %.2f}", p.id, p.coords.Lon, p.coords.Lat)
	if p.HasDeadline() {
		s += fmt.Sprintf(" Due - %.0f", p.deadline)
	}
	return s
}

// Unknown returns the sentinel for a travel cost that is not known.
// Any arithmetic involving it stays non-finite.
func Unknown() float64 { return math.NaN() }

// IsUnknown reports whether v is a non-finite cost.
func IsUnknown(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }
