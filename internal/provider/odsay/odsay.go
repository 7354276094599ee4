// Package odsay fetches public-transit itinerary candidates from the ODsay
// path-search API and flattens them into raw legs for the planner core.
package odsay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/citycommute/backend/internal/domain"
)

// The T-variant endpoint covers intercity searches the primary endpoint
// rejects; both are tried and their results pooled.
var defaultEndpoints = []string{
	"https://api.odsay.com/v1/api/searchPubTransPath",
	"https://api.odsay.com/v1/api/searchPubTransPathT",
}

// Client is the ODsay route-search provider.
type Client struct {
	apiKey     string
	endpoints  []string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates an ODsay client. An empty API key switches the client to
// offline mode, returning a fixed demo itinerary set.
func NewClient(apiKey string, logger zerolog.Logger) *Client {
	return &Client{
		apiKey:    apiKey,
		endpoints: defaultEndpoints,
		httpClient: &http.Client{
			Timeout: 8 * time.Second,
		},
		logger: logger.With().Str("component", "odsay").Logger(),
	}
}

type odsayResponse struct {
	Result struct {
		Path []struct {
			SubPath []odsaySubPath `json:"subPath"`
		} `json:"path"`
	} `json:"result"`
}

type odsaySubPath struct {
	TrafficType  int         `json:"trafficType"`
	Distance     float64     `json:"distance"`
	SectionTime  float64     `json:"sectionTime"`
	StartName    string      `json:"startName"`
	Lane         []odsayLane `json:"lane"`
	PassStopList struct {
		Stations []odsayStation `json:"stations"`
	} `json:"passStopList"`
}

type odsayLane struct {
	Name  string      `json:"name"`
	BusNo string      `json:"busNo"`
	BusID json.Number `json:"busID"`
}

type odsayStation struct {
	X string `json:"x"`
	Y string `json:"y"`
}

// Search returns every candidate itinerary the API yields for the pair.
// Endpoint failures are tolerated as long as at least one endpoint answers;
// zero itineraries is a valid, non-error result.
func (c *Client) Search(ctx context.Context, origin, dest domain.LatLng) ([]domain.RawItinerary, error) {
	if c.apiKey == "" {
		return c.offlineItineraries(origin, dest), nil
	}

	var (
		itineraries []domain.RawItinerary
		lastErr     error
	)
	for _, endpoint := range c.endpoints {
		resp, err := c.fetch(ctx, endpoint, origin, dest)
		if err != nil {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("path search request failed")
			lastErr = err
			continue
		}
		for _, path := range resp.Result.Path {
			it := convertSubPaths(path.SubPath)
			if len(it.Legs) > 0 {
				itineraries = append(itineraries, it)
			}
		}
	}
	if len(itineraries) == 0 && lastErr != nil {
		return nil, fmt.Errorf("odsay: all endpoints failed: %w", lastErr)
	}
	return itineraries, nil
}

func (c *Client) fetch(ctx context.Context, endpoint string, origin, dest domain.LatLng) (*odsayResponse, error) {
	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	q.Set("lang", "0")
	q.Set("output", "json")
	q.Set("SX", strconv.FormatFloat(origin.Lng, 'f', -1, 64))
	q.Set("SY", strconv.FormatFloat(origin.Lat, 'f', -1, 64))
	q.Set("EX", strconv.FormatFloat(dest.Lng, 'f', -1, 64))
	q.Set("EY", strconv.FormatFloat(dest.Lat, 'f', -1, 64))
	q.Set("OPT", "0")
	q.Set("SearchType", "0")
	q.Set("SearchPathType", "0")
	q.Set("reqCoordType", "WGS84GEO")
	q.Set("resCoordType", "WGS84GEO")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("odsay: failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("odsay: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("odsay: unexpected status %d", resp.StatusCode)
	}

	var decoded odsayResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("odsay: failed to decode response: %w", err)
	}
	return &decoded, nil
}

// convertSubPaths flattens one API path into a raw itinerary. Coordinate
// strings that fail to parse are skipped rather than failing the leg.
func convertSubPaths(subPaths []odsaySubPath) domain.RawItinerary {
	var it domain.RawItinerary
	for _, sp := range subPaths {
		leg := domain.RawLeg{
			TrafficType: sp.TrafficType,
			StartName:   sp.StartName,
			SectionMin:  sp.SectionTime,
			DistanceM:   sp.Distance,
		}
		if len(sp.Lane) > 0 {
			lane := sp.Lane[0]
			switch sp.TrafficType {
			case domain.TrafficSubway:
				leg.LaneName = lane.Name
			case domain.TrafficBus:
				leg.LaneName = lane.BusNo
				leg.RouteID = lane.BusID.String()
			}
		}
		for _, st := range sp.PassStopList.Stations {
			lat, errY := strconv.ParseFloat(st.Y, 64)
			lng, errX := strconv.ParseFloat(st.X, 64)
			if errY != nil || errX != nil {
				continue
			}
			leg.Stops = append(leg.Stops, domain.LatLng{Lat: lat, Lng: lng})
		}
		it.Legs = append(it.Legs, leg)
	}
	return it
}

// offlineItineraries returns a fixed demo candidate set so the planner stays
// usable without an API key.
func (c *Client) offlineItineraries(origin, dest domain.LatLng) []domain.RawItinerary {
	mid := domain.LatLng{
		Lat: (origin.Lat + dest.Lat) / 2,
		Lng: (origin.Lng + dest.Lng) / 2,
	}
	return []domain.RawItinerary{
		{Legs: []domain.RawLeg{
			{TrafficType: domain.TrafficWalk, DistanceM: 400, Stops: []domain.LatLng{origin}},
			{TrafficType: domain.TrafficSubway, LaneName: "Line 2", StartName: "City Hall", SectionMin: 18, DistanceM: 9500, Stops: []domain.LatLng{origin, mid, dest}},
			{TrafficType: domain.TrafficWalk, DistanceM: 300, Stops: []domain.LatLng{dest}},
		}},
		{Legs: []domain.RawLeg{
			{TrafficType: domain.TrafficWalk, DistanceM: 200, Stops: []domain.LatLng{origin}},
			{TrafficType: domain.TrafficBus, LaneName: "146", RouteID: "100100083", SectionMin: 27, DistanceM: 8800, Stops: []domain.LatLng{origin, mid, dest}},
			{TrafficType: domain.TrafficWalk, DistanceM: 250, Stops: []domain.LatLng{dest}},
		}},
	}
}
