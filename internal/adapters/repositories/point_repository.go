package repositories

import (
	"context"
	"database/sql"
	"deadline-route-service/internal/domain"
	"deadline-route-service/internal/platform/db"
	"deadline-route-service/internal/platform/obs"
	"errors"
	"fmt"
)

// SQL-backed implementation of the PointRepository port. Driver selects the
// placeholder style.
type SQLPointRepository struct {
	DB     *sql.DB
	Driver string
}

func NewSQLPointRepository(conn *sql.DB, driver string) *SQLPointRepository {
	return &SQLPointRepository{DB: conn, Driver: driver}
}

// Return all stored points of kind, ordered by id.
func (s *SQLPointRepository) ListPoints(ctx context.Context, kind domain.Kind) (_ []domain.Point, err error) {
	defer obs.Time(ctx, "points.List")(&err)

	if s.DB == nil {
		return nil, errors.New("point repository: DB is nil")
	}

	query := db.Rebind(s.Driver, `
	SELECT
		id,
		lon,
		lat,
		deadline_seconds,
		address
	FROM points
	WHERE kind = ?
	ORDER BY id;
	`)
	rows, err := s.DB.QueryContext(ctx, query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list points: query points table: %w", err)
	}
	defer rows.Close()

	points := make([]domain.Point, 0, 64)
	for rows.Next() {
		var (
			id, address string
			lon, lat    float64
			deadline    sql.NullFloat64
		)
		if err := rows.Scan(&id, &lon, &lat, &deadline, &address); err != nil {
			return nil, fmt.Errorf("list points: scan row: %w", err)
		}

		p := domain.NewPoint(kind, id, lon, lat, deadline.Float64)
		if address != "" {
			p = p.WithAddress(address)
		}
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list points: row iteration: %w", err)
	}

	return points, nil
}
