package cache

import (
	"context"
	"database/sql"
	"deadline-route-service/internal/platform/obs"
	"deadline-route-service/internal/ports"
	"errors"
	"fmt"
)

// SQLite-backed cache of origin->destination travel costs.
type SqliteEdgeCache struct {
	DB *sql.DB
}

func NewSqliteEdgeCache(db *sql.DB) *SqliteEdgeCache {
	return &SqliteEdgeCache{DB: db}
}

func (s *SqliteEdgeCache) GetMany(
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

	placeholders, args := inClause(uniq)
	q := fmt.Sprintf(`
	SELECT destination, distance_meters, duration_seconds
	FROM edge_cache
	WHERE origin = ?
		AND destination IN (%s);
	`, placeholders)

	rows, err := s.DB.QueryContext(ctx, q, append([]any{origin}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("get edge cache: query edge_cache table: %w", err)
	}
	defer rows.Close()

	return scanEdges(rows, len(uniq))
}

func (s *SqliteEdgeCache) PutMany(
	ctx context.Context,
	origin string,
	edges map[string]ports.Edge,
) (err error) {
	defer obs.Time(ctx, "edge.cache.PutMany")(&err)

	if s.DB == nil {
		return errors.New("edge cache: db is nil")
	}

	return putEdges(ctx, s.DB, origin, edges, `
	INSERT OR REPLACE INTO edge_cache (origin, destination, distance_meters, duration_seconds)
	VALUES (?, ?, ?, ?);
	`)
}
