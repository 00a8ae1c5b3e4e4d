package handlers

import (
	"context"
	"deadline-route-service/internal/api/dto"
	"deadline-route-service/internal/domain"
	"deadline-route-service/internal/platform/obs"
	"deadline-route-service/internal/services"
	"errors"
	"log"
	"net/http"
)

// TourPlanner is the application service behind POST /tours.
type TourPlanner interface {
	PlanTour(ctx context.Context, req services.PlanTourRequest) (*services.TourPlan, error)
}

type TourHandler struct {
	Planner TourPlanner
}

// Solve decodes a tour request, runs the planner and renders the route.
// Infeasible routes are still 200 responses; only misuse and upstream
// failures map to error statuses.
func (h *TourHandler) Solve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.TourRequest

	if err := decodeJSON(w, r, &req); err != nil {
		if errors.Is(err, errTrailingData) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	if req.Depot == nil {
		writeError(w, r, http.StatusBadRequest, "depot is required")
		return
	}

	kindParam := req.Kind
	if kindParam == "" {
		kindParam = string(domain.KindAir)
	}
	kind, err := domain.ParseKind(kindParam)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	strategy, err := services.ParseStrategy(req.Strategy)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	svcReq := services.PlanTourRequest{
		Kind:      kind,
		Strategy:  strategy,
		Seed:      req.Seed,
		UseStored: req.UseStored,
		Depot:     toStopInput(*req.Depot),
		Stops:     make([]services.StopInput, 0, len(req.Points)),
	}
	for _, p := range req.Points {
		svcReq.Stops = append(svcReq.Stops, toStopInput(p))
	}

	plan, err := h.Planner.PlanTour(r.Context(), svcReq)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			log.Printf("plan tour failed: req_id=%s err=%v", obs.RequestID(r.Context()), err)
		}
		msg := err.Error()
		if status == http.StatusInternalServerError {
			msg = "internal server error"
		}
		writeError(w, r, status, msg)
		return
	}

	route := plan.Route
	res := dto.TourResponse{
		Kind:                string(plan.Kind),
		Strategy:            string(plan.Strategy),
		Status:              string(route.Status),
		Valid:               route.Valid,
		Diagnostic:          route.Diagnostic,
		TotalDistanceMeters: dto.Finite(route.TotalDistance),
		TotalTimeSeconds:    dto.Finite(route.TotalTime),
		Stops:               dto.NewStopResponses(route),
		Excluded:            make([]string, 0, len(route.Excluded)),
	}
	for _, p := range route.Excluded {
		res.Excluded = append(res.Excluded, p.ID())
	}
	if req.Report {
		res.Report = route.String()
		if plan.Matrix != nil && plan.Matrix.CheckIntegrity() {
			res.MatrixReport = plan.Matrix.String()
		}
	}

	writeJSON(w, r, http.StatusOK, res)
}

func toStopInput(s dto.StopRequest) services.StopInput {
	in := services.StopInput{
		ID:       s.ID,
		Deadline: s.DeadlineSeconds,
		Address:  s.Address,
	}
	if s.Lon != nil && s.Lat != nil {
		in.Lon, in.Lat, in.HasCoords = *s.Lon, *s.Lat, true
	}
	return in
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrGeocode):
		return http.StatusBadGateway
	case errors.Is(err, services.ErrNoRepository):
		return http.StatusNotImplemented
	case errors.Is(err, services.ErrUnsupportedKind),
		errors.Is(err, services.ErrMissingLocation),
		errors.Is(err, services.ErrMissingDepot),
		errors.Is(err, services.ErrNoPoints):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
