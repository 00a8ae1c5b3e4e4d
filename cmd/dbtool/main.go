package main

import (
	"context"
	"deadline-route-service/internal/adapters/repositories"
	"deadline-route-service/internal/config"
	"deadline-route-service/internal/domain"
	"deadline-route-service/internal/platform/db"
	"log"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	ctx := context.Background()

	driver := config.Get("DB_DRIVER", db.DriverPostgres)
	dsn := config.Get("DATABASE_URL", "")
	if driver == db.DriverSQLite {
		dsn = config.Get("DB_PATH", "data/app.db")
	}
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(ctx, driver, dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	seedPath := config.Get("SEED_PATH", "data/seeds/points.json")
	log.Println("Seeding database...")
	n, err := repositories.SeedFromJSON(ctx, conn, driver, seedPath)
	if err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Printf("Seeding complete. points=%d", n)

	repo := repositories.NewSQLPointRepository(conn, driver)
	for _, k := range domain.RegisteredKinds() {
		points, err := repo.ListPoints(ctx, k)
		if err != nil {
			log.Fatalf("list %s points: %v", k, err)
		}
		log.Printf("kind=%s stored=%d", k, len(points))
	}
}
