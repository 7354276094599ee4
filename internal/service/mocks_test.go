package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/citycommute/backend/internal/domain"
)

// mockCrowdRepo implements domain.CrowdRepository for testing.
type mockCrowdRepo struct {
	subway map[string]float64 // station|day|hhmm
	bus    map[string]float64 // route|hour
	err    error
}

func (m *mockCrowdRepo) SubwayCongestion(ctx context.Context, station string, dayType int, hhmm string) (float64, bool, error) {
	if m.err != nil {
		return 0, false, m.err
	}
	pct, ok := m.subway[fmt.Sprintf("%s|%d|%s", station, dayType, hhmm)]
	return pct, ok, nil
}

func (m *mockCrowdRepo) BusBoardings(ctx context.Context, routeID string, hour int) (float64, bool, error) {
	if m.err != nil {
		return 0, false, m.err
	}
	mean, ok := m.bus[fmt.Sprintf("%s|%d", routeID, hour)]
	return mean, ok, nil
}

// mockPrefStore implements domain.PreferenceStore for testing.
type mockPrefStore struct {
	mu      sync.Mutex
	prefs   *domain.Preferences
	saveErr error
	saves   int
}

func (m *mockPrefStore) LoadPreferences(ctx context.Context) domain.Preferences {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.prefs == nil {
		return domain.DefaultPreferences()
	}
	return m.prefs.Clone()
}

func (m *mockPrefStore) SavePreferences(ctx context.Context, prefs domain.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	p := prefs.Clone()
	m.prefs = &p
	m.saves++
	return nil
}

// mockHistoryStore implements domain.HistoryStore for testing.
type mockHistoryStore struct {
	mu    sync.Mutex
	trips []domain.TripEvent
	err   error
}

func (m *mockHistoryStore) AppendTrip(ctx context.Context, ev domain.TripEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.trips = append(m.trips, ev)
	return nil
}

func (m *mockHistoryStore) Trips() []domain.TripEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.TripEvent, len(m.trips))
	copy(out, m.trips)
	return out
}

// mockSearcher implements RouteSearcher for testing.
type mockSearcher struct {
	itineraries []domain.RawItinerary
	err         error
}

func (m *mockSearcher) Search(ctx context.Context, origin, dest domain.LatLng) ([]domain.RawItinerary, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.itineraries, nil
}

// mockGeocoder resolves "lat,lng" literals only.
type mockGeocoder struct{}

func (mockGeocoder) Resolve(ctx context.Context, query string) (domain.LatLng, error) {
	parts := strings.Split(query, ",")
	if len(parts) != 2 {
		return domain.LatLng{}, fmt.Errorf("unresolvable query %q", query)
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return domain.LatLng{}, fmt.Errorf("unresolvable query %q", query)
	}
	return domain.LatLng{Lat: lat, Lng: lng}, nil
}

// mockTripPublisher implements TripPublisher for testing.
type mockTripPublisher struct {
	mu     sync.Mutex
	events []domain.TripEvent
	err    error
}

func (m *mockTripPublisher) PublishTrip(ev domain.TripEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, ev)
	return nil
}

func (m *mockTripPublisher) Events() []domain.TripEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.TripEvent, len(m.events))
	copy(out, m.events)
	return out
}
