package handlers

import (
	"deadline-route-service/internal/domain"
	"net/http"
)

type healthResponse struct {
	Status string        `json:"status"`
	Kinds  []domain.Kind `json:"kinds"`
}

// Health is a liveness check that also lists the known point kinds.
func Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok", Kinds: domain.RegisteredKinds()})
}
