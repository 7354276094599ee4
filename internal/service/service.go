package service

import (
	"context"

	"github.com/citycommute/backend/internal/domain"
)

// DataRepository is re-exported from domain for convenience
type DataRepository = domain.DataRepository

// Average walking speed used to derive walk-leg durations, in m/s.
const walkSpeedMPS = 1.3

// RouteSearcher yields raw candidate itineraries between two points.
// Implementations own retries and endpoint fallback; the planner only sees a
// flat list, possibly empty.
type RouteSearcher interface {
	Search(ctx context.Context, origin, dest domain.LatLng) ([]domain.RawItinerary, error)
}

// Geocoder resolves a free-text place query (or a "lat,lng" literal) to
// coordinates.
type Geocoder interface {
	Resolve(ctx context.Context, query string) (domain.LatLng, error)
}

// TripPublisher broadcasts confirmed-trip events to interested consumers.
type TripPublisher interface {
	PublishTrip(ev domain.TripEvent) error
}

// Metrics is the subset of the metrics collector the services report to.
// A nil Metrics disables reporting.
type Metrics interface {
	PlanInc()
	CandidatesObserve(n int)
	SelectedScoreObserve(score float64)
	CrowdMissInc()
	LearnInc()
}
