package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPointNormalizesCoordinates(t *testing.T) {
	p := NewPoint(KindAir, "P", 190, 95, 0)

	assert.InDelta(t, -170, p.X(), 1e-9)
	assert.InDelta(t, 90, p.Y(), 1e-9)
	assert.False(t, p.HasDeadline())
}

func TestAntimeridianIsOneLocation(t *testing.T) {
	east := NewPoint(KindAir, "E", 180, 10, 0)
	west := NewPoint(KindAir, "W", -180, 10, 0)
	nearEast := NewPoint(KindAir, "N", 179.9999997, 10, 0)

	assert.InDelta(t, -180, east.X(), 1e-9)
	assert.True(t, east.Same(west))
	assert.True(t, nearEast.Same(west))
	assert.Equal(t, west.Key(), Coordinates{Lon: 180, Lat: 10}.Key())
}

func TestNewPointGeneratesIDs(t *testing.T) {
	namer := &Namer{}

	blank := NewPointNamed(namer, KindAir, "  ", 1, 1, 0)
	reserved := NewPointNamed(namer, KindAir, "ground-station", 2, 2, 0)
	kept := NewPointNamed(namer, KindAir, "Depot", 3, 3, 0)

	assert.Equal(t, "Air1", blank.ID())
	assert.Equal(t, "Air2", reserved.ID())
	assert.Equal(t, "Depot", kept.ID())
}

func TestPointIdentityIgnoresID(t *testing.T) {
	a := NewPoint(KindAir, "A", 10.0000001, 20.0000002, 0)
	b := NewPoint(KindAir, "B", 10.0000004, 20.0000001, 100)
	c := NewPoint(KindAir, "C", 10.000002, 20, 0)

	assert.True(t, a.Same(b))
	assert.False(t, a.Same(c))
}

func TestPointDeadlines(t *testing.T) {
	for _, d := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		p := NewPoint(KindAir, "P", 0, 0, d)
		assert.False(t, p.HasDeadline(), "deadline %v", d)
	}

	p := NewPoint(KindAir, "P", 0, 0, 120)
	require.True(t, p.HasDeadline())
	assert.Equal(t, 120.0, p.Deadline())
}

func TestPointDefaultAddress(t *testing.T) {
	p := NewPoint(KindGround, "G", -112.1, 33.45, 0)
	assert.Equal(t, "{33.450000, -112.100000}", p.Address())
	assert.False(t, p.HasAddress())

	q := p.WithAddress(" 1901 W Madison St ")
	assert.Equal(t, "1901 W Madison St", q.Address())
	assert.True(t, q.Same(p))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" AIR ")
	require.NoError(t, err)
	assert.Equal(t, KindAir, k)

	_, err = ParseKind("sea")
	assert.Error(t, err)

	spec, ok := LookupKind(KindGround)
	require.True(t, ok)
	assert.True(t, spec.RequiresExternal)
}
