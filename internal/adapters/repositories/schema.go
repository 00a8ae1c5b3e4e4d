package repositories

import (
	"context"
	"database/sql"
	"deadline-route-service/internal/domain"
	"deadline-route-service/internal/platform/db"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
)

// Initialize the database schema. The DDL is shared by Postgres and SQLite.
func InitSchema(ctx context.Context, conn *sql.DB) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createPointsQuery := `
	CREATE TABLE IF NOT EXISTS points (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		deadline_seconds DOUBLE PRECISION,
		address TEXT NOT NULL DEFAULT ''
	);
	`

	createEdgeCacheQuery := `
	CREATE TABLE IF NOT EXISTS edge_cache (
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		distance_meters DOUBLE PRECISION NOT NULL,
		duration_seconds DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (origin, destination)
	);
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_points_kind
	ON points(kind, id);
	`

	statements := []string{
		createPointsQuery,
		createEdgeCacheQuery,
		createGeocodeCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type PointSeed struct {
	ID              string  `json:"id"`
	Kind            string  `json:"kind"`
	Lon             float64 `json:"lon"`
	Lat             float64 `json:"lat"`
	DeadlineSeconds float64 `json:"deadline_seconds,omitempty"`
	Address         string  `json:"address,omitempty"`
}

// Populate the points table from a JSON file. Existing ids are overwritten.
func SeedFromJSON(ctx context.Context, conn *sql.DB, driver, jsonPath string) (int, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed points: read %q: %w", jsonPath, err)
	}

	var data []PointSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return 0, fmt.Errorf("seed points: parse json: %w", err)
	}

	rows := make([]PointSeed, 0, len(data))
	for i, item := range data {
		item.ID = strings.TrimSpace(item.ID)
		if item.ID == "" {
			return 0, fmt.Errorf("seed points: item at index %d: id cannot be empty", i+1)
		}

		kind, err := domain.ParseKind(item.Kind)
		if err != nil {
			return 0, fmt.Errorf("seed points: item %q: %w", item.ID, err)
		}
		item.Kind = string(kind)

		if math.IsNaN(item.Lon) || math.IsNaN(item.Lat) {
			return 0, fmt.Errorf("seed points: item %q: coordinates must be numbers", item.ID)
		}
		item.Address = strings.TrimSpace(item.Address)
		rows = append(rows, item)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("seed points: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := db.Rebind(driver, `
	INSERT INTO points (
		id,
		kind,
		lon,
		lat,
		deadline_seconds,
		address
	)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE
	SET kind = excluded.kind,
		lon = excluded.lon,
		lat = excluded.lat,
		deadline_seconds = excluded.deadline_seconds,
		address = excluded.address;
	`)
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("seed points: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range rows {
		var deadline sql.NullFloat64
		if p.DeadlineSeconds > 0 {
			deadline = sql.NullFloat64{Float64: p.DeadlineSeconds, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, p.ID, p.Kind, p.Lon, p.Lat, deadline, p.Address); err != nil {
			return 0, fmt.Errorf("seed points: insert id=%q: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("seed points: commit tx: %w", err)
	}

	return len(rows), nil
}
