package cache

import (
	"context"
	"database/sql"
	"deadline-route-service/internal/platform/obs"
	"deadline-route-service/internal/ports"
	"errors"
	"fmt"
	"strings"
)

// SQLEdgeCache is a Postgres-backed cache of origin->destination travel costs.
type SQLEdgeCache struct {
	DB *sql.DB
}

func NewSQLEdgeCache(db *sql.DB) *SQLEdgeCache {
	return &SQLEdgeCache{DB: db}
}

// Fetch cached edges for one origin and multiple destinations.
func (s *SQLEdgeCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]ports.Edge, err error) {
	defer obs.Time(ctx, "edge.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("edge cache: db is nil")
	}

	if origin == "" {
		return nil, errors.New("get edge cache: origin must not be empty")
	}

	uniq := uniqueKeys(destinations)
	if len(uniq) == 0 {
		return map[string]ports.Edge{}, nil
	}

	q := `
	SELECT destination, distance_meters, duration_seconds
	FROM edge_cache
	WHERE origin = $1
		AND destination = ANY($2::text[]);
	`

	rows, err := s.DB.QueryContext(ctx, q, origin, uniq)
	if err != nil {
		return nil, fmt.Errorf("get edge cache: query edge_cache table: %w", err)
	}
	defer rows.Close()

	return scanEdges(rows, len(uniq))
}

// Store many edges for a single origin.
func (s *SQLEdgeCache) PutMany(
	ctx context.Context,
	origin string,
	edges map[string]ports.Edge,
) (err error) {
	defer obs.Time(ctx, "edge.cache.PutMany")(&err)

	if s.DB == nil {
		return errors.New("edge cache: db is nil")
	}

	return putEdges(ctx, s.DB, origin, edges, `
	INSERT INTO edge_cache (origin, destination, distance_meters, duration_seconds)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (origin, destination) DO UPDATE
	SET distance_meters = EXCLUDED.distance_meters,
		duration_seconds = EXCLUDED.duration_seconds;
	`)
}

func scanEdges(rows *sql.Rows, sizeHint int) (map[string]ports.Edge, error) {
	out := make(map[string]ports.Edge, sizeHint)
	for rows.Next() {
		var dest string
		var meters, seconds float64
		if err := rows.Scan(&dest, &meters, &seconds); err != nil {
			return nil, fmt.Errorf("get edge cache: scan rows: %w", err)
		}
		out[dest] = ports.Edge{DistanceMeters: meters, DurationSeconds: seconds}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get edge cache: row iteration: %w", err)
	}
	return out, nil
}

// putEdges upserts edges in one transaction using the dialect's upsert.
func putEdges(ctx context.Context, db *sql.DB, origin string, edges map[string]ports.Edge, upsert string) error {
	if origin == "" {
		return errors.New("insert edge cache: origin must not be empty")
	}

	if len(edges) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert edge cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsert)
	if err != nil {
		return fmt.Errorf("insert edge cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for dest, e := range edges {
		if strings.TrimSpace(dest) == "" {
			return fmt.Errorf("insert edge cache: empty destination key")
		}

		if _, err := stmt.ExecContext(ctx, origin, dest, e.DistanceMeters, e.DurationSeconds); err != nil {
			return fmt.Errorf("insert edge cache dest=%q: %w", dest, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert edge cache commit: %w", err)
	}

	return nil
}
