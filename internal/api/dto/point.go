package dto

type PointResponse struct {
	ID              string   `json:"id"`
	Kind            string   `json:"kind"`
	Lon             float64  `json:"lon"`
	Lat             float64  `json:"lat"`
	DeadlineSeconds *float64 `json:"deadline_seconds"`
	Address         string   `json:"address"`
}

type ListPointsResponse struct {
	Points []PointResponse `json:"points"`
}
