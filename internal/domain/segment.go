package domain

// Mode is a normalized transport mode.
type Mode string

const (
	ModeSubway Mode = "SUBWAY"
	ModeBus    Mode = "BUS"
	ModeWalk   Mode = "WALK"
)

// AllModes lists every supported mode in a stable order.
func AllModes() []Mode {
	return []Mode{ModeSubway, ModeBus, ModeWalk}
}

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Segment is one contiguous leg of a single mode, normalized from a raw
// provider leg. DurationMin is pure travel time; preference bias and crowd
// surcharges are applied only at scoring time so segments stay reusable
// across preference changes.
type Segment struct {
	Mode        Mode     `json:"mode"`
	Name        string   `json:"name"`
	DistanceM   float64  `json:"distance_m"`
	DurationMin float64  `json:"duration_min"`
	Crowd       int      `json:"crowd"`
	BestCar     *int     `json:"best_car,omitempty"`
	Poly        []LatLng `json:"poly,omitempty"`
}

// RouteCandidate is one complete end-to-end itinerary competing for
// selection. It is never mutated after construction.
type RouteCandidate struct {
	Segments []Segment `json:"segments"`
}

// TotalMinutes sums pure travel time over all segments.
func (r RouteCandidate) TotalMinutes() float64 {
	var total float64
	for _, s := range r.Segments {
		total += s.DurationMin
	}
	return total
}

// WalkMinutes sums travel time over WALK segments only.
func (r RouteCandidate) WalkMinutes() float64 {
	var total float64
	for _, s := range r.Segments {
		if s.Mode == ModeWalk {
			total += s.DurationMin
		}
	}
	return total
}

// Modes returns the distinct modes present, in AllModes order.
func (r RouteCandidate) Modes() []Mode {
	seen := make(map[Mode]bool, 3)
	for _, s := range r.Segments {
		seen[s.Mode] = true
	}
	var modes []Mode
	for _, m := range AllModes() {
		if seen[m] {
			modes = append(modes, m)
		}
	}
	return modes
}

// Raw traffic-type discriminants as reported by the route-search provider.
const (
	TrafficSubway = 1
	TrafficBus    = 2
	TrafficWalk   = 3
)

// RawLeg is one unprocessed movement from a route-search result.
type RawLeg struct {
	TrafficType int     `json:"traffic_type"`
	LaneName    string  `json:"lane_name"`  // line label or bus number
	RouteID     string  `json:"route_id"`   // bus route identifier for crowd lookup
	StartName   string  `json:"start_name"` // boarding station name
	SectionMin  float64 `json:"section_min"`
	DistanceM   float64 `json:"distance_m"`
	Stops       []LatLng `json:"stops,omitempty"`
}

// RawItinerary is one provider itinerary: an ordered list of raw legs.
type RawItinerary struct {
	Legs []RawLeg `json:"legs"`
}
