package domain

import "time"

// TripEvent is the history-append payload recorded when a rider confirms
// a route. Persistence format is owned by the repository; this type is the
// boundary record.
type TripEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Origin    string    `json:"origin"`
	Dest      string    `json:"dest"`
	TotalMin  float64   `json:"total_min"`
	Modes     []Mode    `json:"modes"`
}

// PlanResponse wraps a selected route for delivery.
type PlanResponse struct {
	Data    PlanData `json:"data"`
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
}

// PlanData is the selected itinerary plus summary fields for rendering.
type PlanData struct {
	Index      int       `json:"candidate_index"` // 1-based; -1 when the walking fallback was used
	Segments   []Segment `json:"segments"`
	Score      float64   `json:"score"`
	TotalMin   float64   `json:"total_min"`
	Candidates int       `json:"candidates"`
	Fallback   bool      `json:"fallback"`
}
