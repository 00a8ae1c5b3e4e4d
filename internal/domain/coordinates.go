package domain

import "math"

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64
	Lat float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Normalize wraps longitude into [-180, 180) and clamps latitude into [-90, 90].
// In-range coordinates are returned unchanged; longitude 180 becomes -180.
func (c Coordinates) Normalize() Coordinates {
	if c.Lon >= -180 && c.Lon < 180 && c.Lat >= -90 && c.Lat <= 90 {
		return c
	}

	lon := math.Mod(math.Mod(c.Lon+180, 360)+360, 360) - 180
	lat := math.Max(-90, math.Min(90, c.Lat))
	return Coordinates{Lon: lon, Lat: lat}
}

// Key is the identity of a location: coordinates rounded to 1e-6 degrees.
type Key struct {
	X int64
	Y int64
}

// Key rounds c to its identity. Longitudes that round onto the antimeridian
// share the -180 key.
func (c Coordinates) Key() Key {
	x := int64(math.Round(c.Lon * 1e6))
	if x == antimeridian {
		x = -antimeridian
	}
	return Key{X: x, Y: int64(math.Round(c.Lat * 1e6))}
}

const antimeridian = 180_000_000
