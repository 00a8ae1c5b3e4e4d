package matrix

import (
	"context"
	"errors"
	"math"
	"testing"

	"deadline-route-service/internal/adapters/distance"
	"deadline-route-service/internal/domain"
	"deadline-route-service/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func airPoint(id string, lon, lat float64) domain.Point {
	return domain.NewPoint(domain.KindAir, id, lon, lat, 0)
}

func TestTravelMatrixPopulateAndLookup(t *testing.T) {
	provider := distance.NewMockMatrixProvider([]distance.MockPair{
		{From: "D", To: "A", Meters: 100, Seconds: 10},
		{From: "A", To: "D", Meters: 120, Seconds: 12},
	})
	m, err := New(domain.KindAir, provider)
	require.NoError(t, err)

	d, a := airPoint("D", 0, 0), airPoint("A", 1, 1)
	require.NoError(t, m.AddAll([]domain.Point{d, a}))
	assert.False(t, m.CheckIntegrity())

	require.NoError(t, m.Populate(context.Background()))
	require.True(t, m.CheckIntegrity())

	assert.Equal(t, 100.0, m.DistanceBetween(d, a))
	assert.Equal(t, 12.0, m.TimeBetween(a, d))
	assert.Equal(t, 0.0, m.Distance(0, 0))
	assert.True(t, math.IsNaN(m.Distance(0, 5)))
	assert.True(t, math.IsNaN(m.Time(-1, 0)))
}

func TestTravelMatrixMembershipChangeInvalidates(t *testing.T) {
	p, err := distance.NewHaversineProvider(250)
	require.NoError(t, err)
	m, err := New(domain.KindAir, p)
	require.NoError(t, err)

	_, err = m.Add(airPoint("D", 0, 0))
	require.NoError(t, err)
	require.NoError(t, m.Populate(context.Background()))
	require.True(t, m.CheckIntegrity())

	added, err := m.Add(airPoint("A", 1, 0))
	require.NoError(t, err)
	require.True(t, added)
	assert.False(t, m.CheckIntegrity())
	assert.True(t, math.IsNaN(m.Distance(0, 1)))

	require.NoError(t, m.Populate(context.Background()))
	assert.True(t, m.Remove(airPoint("other-id", 1, 0)))
	assert.False(t, m.CheckIntegrity())
	assert.Equal(t, 1, m.Len())
}

func TestTravelMatrixDeduplicatesByLocation(t *testing.T) {
	m, err := New(domain.KindAir, distance.NewMockMatrixProvider(nil))
	require.NoError(t, err)

	added, err := m.Add(airPoint("A", 5, 5))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = m.Add(airPoint("B", 5.0000001, 5))
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 1, m.Len())
}

func TestTravelMatrixRejectsOtherKinds(t *testing.T) {
	m, err := New(domain.KindAir, distance.NewMockMatrixProvider(nil))
	require.NoError(t, err)

	_, err = m.Add(domain.NewPoint(domain.KindGround, "G", 0, 0, 0))
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestTravelMatrixFailedPopulateLeavesNothing(t *testing.T) {
	provider := distance.NewMockMatrixProvider(nil)
	m, err := New(domain.KindGround, provider)
	require.NoError(t, err)
	require.NoError(t, m.AddAll([]domain.Point{
		domain.NewPoint(domain.KindGround, "D", 0, 0, 0),
		domain.NewPoint(domain.KindGround, "A", 1, 0, 0),
	}))

	provider.Fail = true
	err = m.Populate(context.Background())
	assert.ErrorIs(t, err, distance.ErrMockUnavailable)
	assert.False(t, m.CheckIntegrity())
	assert.True(t, m.RequiresExternal())
}

func TestTravelMatrixRejectsWrongShape(t *testing.T) {
	bad := ports.MatrixProviderFunc(func(ctx context.Context, points []domain.Point) (ports.Tables, error) {
		return ports.NewTables(len(points) + 1), nil
	})
	m, err := New(domain.KindAir, bad)
	require.NoError(t, err)
	require.NoError(t, m.AddAll([]domain.Point{airPoint("D", 0, 0)}))

	err = m.Populate(context.Background())
	assert.True(t, errors.Is(err, ErrShape))
	assert.False(t, m.CheckIntegrity())
}

func TestTravelMatrixEmptyPopulate(t *testing.T) {
	m, err := New(domain.KindAir, distance.NewMockMatrixProvider(nil))
	require.NoError(t, err)
	assert.ErrorIs(t, m.Populate(context.Background()), ErrEmptyMatrix)
	assert.Equal(t, "MATRIX : [Empty]", m.String())
}

func TestTravelMatrixString(t *testing.T) {
	provider := distance.NewMockMatrixProvider([]distance.MockPair{
		{From: "D", To: "A", Meters: 100, Seconds: 10},
	})
	m, err := New(domain.KindAir, provider)
	require.NoError(t, err)
	require.NoError(t, m.AddAll([]domain.Point{airPoint("D", 0, 0), airPoint("A", 1, 1)}))
	require.NoError(t, m.Populate(context.Background()))

	s := m.String()
	assert.Contains(t, s, "100.00")
	assert.Contains(t, s, "N/A")
}

func TestNewRequiresRegisteredKindAndProvider(t *testing.T) {
	_, err := New("sea", distance.NewMockMatrixProvider(nil))
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = New(domain.KindAir, nil)
	assert.ErrorIs(t, err, ErrNoProvider)
}
