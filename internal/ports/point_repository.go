package ports

import (
	"context"
	"deadline-route-service/internal/domain"
)

// Port: a boundary for retrieving stored destination points.
type PointRepository interface {
	// Retrieve all stored points of the given kind.
	ListPoints(ctx context.Context, kind domain.Kind) ([]domain.Point, error)
}
