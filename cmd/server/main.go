package main

import (
	"context"
	"database/sql"
	"deadline-route-service/internal/adapters/cache"
	"deadline-route-service/internal/adapters/distance"
	"deadline-route-service/internal/adapters/repositories"
	"deadline-route-service/internal/api"
	"deadline-route-service/internal/config"
	"deadline-route-service/internal/domain"
	"deadline-route-service/internal/platform/db"
	"deadline-route-service/internal/platform/metrics"
	"deadline-route-service/internal/ports"
	"deadline-route-service/internal/services"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (SQL/SQLite, Redis, ORS) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	ctx := context.Background()

	port := config.Get("PORT", "8080")
	driver := config.Get("DB_DRIVER", db.DriverSQLite)
	seedPath := config.Get("SEED_PATH", "data/seeds/points.json")

	conn, err := db.Open(ctx, driver, dsn(driver))
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(ctx, conn, driver, seedPath); err != nil {
		log.Fatal(err)
	}

	m := metrics.New()

	edgeCache, closeCache, err := newEdgeCache(conn, driver)
	if err != nil {
		log.Fatal(err)
	}
	defer closeCache()

	air, err := distance.NewHaversineProvider(config.GetFloat("AIR_SPEED_MPS", distance.DefaultAirSpeed))
	if err != nil {
		log.Fatal(err)
	}
	providers := map[domain.Kind]ports.MatrixProvider{domain.KindAir: air}

	var geocoder ports.Geocoder
	if key := config.Get("ORS_API_KEY", ""); key != "" {
		profile := config.Get("ORS_PROFILE", distance.DefaultORSProfile)
		ors, err := distance.NewORSProvider(distance.ORSConfig{
			APIKey:  key,
			Profile: profile,
			Country: config.Get("ORS_COUNTRY", ""),
		})
		if err != nil {
			log.Fatal(err)
		}

		// Ground matrices and geocodes go through persistent caches to avoid repeated ORS calls.
		ground, err := distance.NewCachedMatrixProvider(ors, edgeCache, "ground:"+profile)
		if err != nil {
			log.Fatal(err)
		}
		providers[domain.KindGround] = ground
		geocoder = distance.NewCachedGeocoder(ors, newGeocodeCache(conn, driver))
	} else {
		log.Println("ORS_API_KEY not set; ground kind disabled")
	}

	defaults := services.DefaultOptions()
	defaults.RandomTries = config.GetInt("SOLVER_RANDOM_TRIES", defaults.RandomTries)
	defaults.MaxPasses = config.GetInt("SOLVER_MAX_PASSES", defaults.MaxPasses)
	defaults.Seed = config.GetInt64("SOLVER_SEED", 0)

	repo := repositories.NewSQLPointRepository(conn, driver)
	planner, err := services.NewTourPlanner(services.PlannerConfig{
		Providers:     providers,
		Geocoder:      geocoder,
		Repository:    repo,
		Recorder:      m,
		Defaults:      defaults,
		MatrixTimeout: config.GetDuration("MATRIX_TIMEOUT", 30*time.Second),
	})
	if err != nil {
		log.Fatal(err)
	}

	router := api.NewRouter(api.Deps{Repo: repo, Planner: planner, Metrics: m})

	// Timeouts are tuned for cold-cache ground solves (external API latency).
	log.Printf("Server listening addr=:%s driver=%s kinds=%v", port, driver, planner.Kinds())
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func dsn(driver string) string {
	if driver == db.DriverPostgres {
		url := config.Get("DATABASE_URL", "")
		if url == "" {
			log.Fatal("DATABASE_URL is required for DB_DRIVER=pgx")
		}
		return url
	}
	return config.Get("DB_PATH", "data/app.db")
}

// newEdgeCache prefers Redis when REDIS_ADDR is set and falls back to the
// database otherwise.
func newEdgeCache(conn *sql.DB, driver string) (ports.EdgeCache, func(), error) {
	if addr := config.Get("REDIS_ADDR", ""); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, nil, fmt.Errorf("connect redis %s: %w", addr, err)
		}
		ttl := config.GetDuration("REDIS_TTL", 7*24*time.Hour)
		return cache.NewRedisEdgeCache(client, ttl), func() { _ = client.Close() }, nil
	}

	if driver == db.DriverPostgres {
		return cache.NewSQLEdgeCache(conn), func() {}, nil
	}
	return cache.NewSqliteEdgeCache(conn), func() {}, nil
}

func newGeocodeCache(conn *sql.DB, driver string) ports.GeocodeCache {
	if driver == db.DriverPostgres {
		return cache.NewSQLGeocodeCache(conn)
	}
	return cache.NewSqliteGeocodeCache(conn)
}

func initAndSeed(ctx context.Context, conn *sql.DB, driver, seedPath string) error {
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if _, err := os.Stat(seedPath); errors.Is(err, os.ErrNotExist) {
		log.Printf("seed file %q not found; skipping seed", seedPath)
		return nil
	}

	n, err := repositories.SeedFromJSON(ctx, conn, driver, seedPath)
	if err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	log.Printf("seeded points count=%d", n)

	return nil
}
