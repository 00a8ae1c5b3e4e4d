package dto

import (
	"deadline-route-service/internal/domain"
)

// StopRequest locates a stop by lon/lat or, when both are absent, by address.
type StopRequest struct {
	ID              string   `json:"id"`
	Lon             *float64 `json:"lon"`
	Lat             *float64 `json:"lat"`
	DeadlineSeconds float64  `json:"deadline_seconds"`
	Address         string   `json:"address"`
}

type TourRequest struct {
	Kind      string        `json:"kind"`
	Strategy  string        `json:"strategy"`
	Seed      int64         `json:"seed"`
	UseStored bool          `json:"use_stored"`
	Report    bool          `json:"report"`
	Depot     *StopRequest  `json:"depot"`
	Points    []StopRequest `json:"points"`
}

type StopResponse struct {
	ID              string   `json:"id"`
	Lon             float64  `json:"lon"`
	Lat             float64  `json:"lat"`
	Address         string   `json:"address,omitempty"`
	ArrivalSeconds  *float64 `json:"arrival_seconds"`
	DeadlineSeconds *float64 `json:"deadline_seconds"`
	Late            bool     `json:"late"`
}

type TourResponse struct {
	Kind                string         `json:"kind"`
	Strategy            string         `json:"strategy"`
	Status              string         `json:"status"`
	Valid               bool           `json:"valid"`
	Diagnostic          string         `json:"diagnostic"`
	TotalDistanceMeters *float64       `json:"total_distance_meters"`
	TotalTimeSeconds    *float64       `json:"total_time_seconds"`
	Stops               []StopResponse `json:"stops"`
	Excluded            []string       `json:"excluded"`
	Report              string         `json:"report,omitempty"`
	MatrixReport        string         `json:"matrix_report,omitempty"`
}

// Finite returns nil for unknown values so they encode as JSON null.
func Finite(v float64) *float64 {
	if domain.IsUnknown(v) {
		return nil
	}
	return &v
}

// NewStopResponses renders a route's path with per-stop arrival and lateness.
func NewStopResponses(r *domain.Route) []StopResponse {
	out := make([]StopResponse, 0, len(r.Path))
	for i, p := range r.Path {
		arrival := domain.Unknown()
		if i < len(r.Arrivals) {
			arrival = r.Arrivals[i]
		}

		s := StopResponse{
			ID:             p.ID(),
			Lon:            p.X(),
			Lat:            p.Y(),
			ArrivalSeconds: Finite(arrival),
		}
		if p.HasAddress() {
			s.Address = p.Address()
		}
		if p.HasDeadline() {
			s.DeadlineSeconds = Finite(p.Deadline())
			s.Late = !domain.IsUnknown(arrival) && arrival > p.Deadline()
		}
		out = append(out, s)
	}
	return out
}
