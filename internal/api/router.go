package api

import (
	"deadline-route-service/internal/api/handlers"
	"deadline-route-service/internal/platform/metrics"
	"deadline-route-service/internal/ports"
	"net/http"
)

// Deps are the collaborators the HTTP layer needs. Repo and Metrics may be nil.
type Deps struct {
	Repo    ports.PointRepository
	Planner handlers.TourPlanner
	Metrics *metrics.Metrics
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	pointHandler := &handlers.PointHandler{Repo: deps.Repo}
	tourHandler := &handlers.TourHandler{Planner: deps.Planner}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/points", pointHandler.List)
	mux.HandleFunc("/tours", tourHandler.Solve)
	if deps.Metrics != nil {
		mux.Handle("/metrics", deps.Metrics.Handler())
	}

	return requestIDMiddleware(loggingMiddleware(deps.Metrics, mux))
}
