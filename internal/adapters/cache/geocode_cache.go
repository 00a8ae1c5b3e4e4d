package cache

import (
	"context"
	"database/sql"
	"deadline-route-service/internal/domain"
	"deadline-route-service/internal/platform/obs"
	"errors"
	"fmt"
	"math"
)

var errNilDB = errors.New("geocode cache: db is nil")

// geocodeDialect holds the statements that differ between Postgres and SQLite.
type geocodeDialect struct {
	name   string
	lookup func(addresses []string) (string, []any)
	upsert string
}

var postgresGeocode = geocodeDialect{
	name: "postgres",
	lookup: func(addresses []string) (string, []any) {
		return `SELECT address, lon, lat FROM geocode_cache WHERE address = ANY($1::text[])`,
			[]any{addresses}
	},
	upsert: `
	INSERT INTO geocode_cache (address, lon, lat)
	VALUES ($1, $2, $3)
	ON CONFLICT (address) DO UPDATE
	SET lon = EXCLUDED.lon, lat = EXCLUDED.lat`,
}

var sqliteGeocode = geocodeDialect{
	name: "sqlite",
	lookup: func(addresses []string) (string, []any) {
		placeholders, args := inClause(addresses)
		return fmt.Sprintf(`SELECT address, lon, lat FROM geocode_cache WHERE address IN (%s)`, placeholders), args
	},
	upsert: `INSERT OR REPLACE INTO geocode_cache (address, lon, lat) VALUES (?, ?, ?)`,
}

// GeocodeCache persists normalized address -> coordinate mappings in the
// geocode_cache table.
type GeocodeCache struct {
	DB      *sql.DB
	dialect geocodeDialect
}

func NewSQLGeocodeCache(db *sql.DB) *GeocodeCache {
	return &GeocodeCache{DB: db, dialect: postgresGeocode}
}

func NewSqliteGeocodeCache(db *sql.DB) *GeocodeCache {
	return &GeocodeCache{DB: db, dialect: sqliteGeocode}
}

func (c *GeocodeCache) GetMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "geocode.cache.GetMany")(&err)

	if c.DB == nil {
		return nil, errNilDB
	}

	uniq := uniqueKeys(addresses)
	if len(uniq) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	q, args := c.dialect.lookup(uniq)
	rows, err := c.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("geocode cache %s: query: %w", c.dialect.name, err)
	}
	defer rows.Close()

	out := make(map[string]domain.Coordinates, len(uniq))
	for rows.Next() {
		var addr string
		var coords domain.Coordinates
		if err := rows.Scan(&addr, &coords.Lon, &coords.Lat); err != nil {
			return nil, fmt.Errorf("geocode cache %s: scan: %w", c.dialect.name, err)
		}
		out[addr] = coords
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("geocode cache %s: rows: %w", c.dialect.name, err)
	}
	return out, nil
}

// PutMany upserts results in one transaction. Blank keys and non-finite
// coordinates are skipped.
func (c *GeocodeCache) PutMany(
	ctx context.Context,
	results map[string]domain.Coordinates,
) (err error) {
	defer obs.Time(ctx, "geocode.cache.PutMany")(&err)

	if c.DB == nil {
		return errNilDB
	}
	if len(results) == 0 {
		return nil
	}

	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("geocode cache %s: begin: %w", c.dialect.name, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, c.dialect.upsert)
	if err != nil {
		return fmt.Errorf("geocode cache %s: prepare: %w", c.dialect.name, err)
	}
	defer stmt.Close()

	for addr, coords := range results {
		if domain.NormalizeAddress(addr) == "" || !finite(coords.Lon) || !finite(coords.Lat) {
			continue
		}
		if _, err := stmt.ExecContext(ctx, addr, coords.Lon, coords.Lat); err != nil {
			return fmt.Errorf("geocode cache %s: upsert %q: %w", c.dialect.name, addr, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("geocode cache %s: commit: %w", c.dialect.name, err)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
