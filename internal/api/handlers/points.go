package handlers

import (
	"deadline-route-service/internal/api/dto"
	"deadline-route-service/internal/domain"
	"deadline-route-service/internal/ports"
	"log"
	"net/http"
)

// PointHandler exposes read-only retrieval of stored points.
type PointHandler struct {
	Repo ports.PointRepository
}

func (h *PointHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if h.Repo == nil {
		writeError(w, r, http.StatusNotImplemented, "point storage is not configured")
		return
	}

	kindParam := r.URL.Query().Get("kind")
	if kindParam == "" {
		kindParam = string(domain.KindAir)
	}
	kind, err := domain.ParseKind(kindParam)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	points, err := h.Repo.ListPoints(r.Context(), kind)
	if err != nil {
		log.Printf("list points failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListPointsResponse{
		Points: make([]dto.PointResponse, 0, len(points)),
	}
	for _, p := range points {
		pr := dto.PointResponse{
			ID:   p.ID(),
			Kind: string(p.Kind()),
			Lon:  p.X(),
			Lat:  p.Y(),
		}
		if p.HasDeadline() {
			pr.DeadlineSeconds = dto.Finite(p.Deadline())
		}
		if p.HasAddress() {
			pr.Address = p.Address()
		}
		res.Points = append(res.Points, pr)
	}

	writeJSON(w, r, http.StatusOK, res)
}
