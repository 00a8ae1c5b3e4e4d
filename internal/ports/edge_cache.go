package ports

import "context"

// Known travel cost for one ordered pair of locations.
type Edge struct {
	DistanceMeters  float64
	DurationSeconds float64
}

// Persistent store of known edges keyed by normalized location strings.
type EdgeCache interface {
	// Fetch cached edges from one origin to many destinations. Misses are absent.
	GetMany(ctx context.Context, origin string, destinations []string) (map[string]Edge, error)
	// Store edges from a single origin.
	PutMany(ctx context.Context, origin string, edges map[string]Edge) error
}
