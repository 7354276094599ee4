package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/citycommute/backend/internal/domain"
)

// MockRepository implements domain.DataRepository in memory for testing and
// for running without a database.
type MockRepository struct {
	mu     sync.RWMutex
	subway map[string]float64 // station|day|hhmm -> congestion pct
	bus    map[string]float64 // routeID|hour -> mean boardings
	prefs  *domain.Preferences
	trips  []domain.TripEvent
}

// NewMockRepository creates a mock repository pre-seeded with a few
// representative Seoul rush-hour observations.
func NewMockRepository() *MockRepository {
	r := &MockRepository{
		subway: make(map[string]float64),
		bus:    make(map[string]float64),
	}
	r.SeedSubway("City Hall", 1, "0830", 145)
	r.SeedSubway("City Hall", 1, "1400", 62)
	r.SeedSubway("Gangnam", 1, "0830", 168)
	r.SeedSubway("Gangnam", 2, "1400", 88)
	r.SeedBus("100100083", 8, 34)
	r.SeedBus("100100083", 14, 12)
	return r
}

// SeedSubway records a subway congestion observation.
func (r *MockRepository) SeedSubway(station string, dayType int, hhmm string, pct float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subway[subwayKey(station, dayType, hhmm)] = pct
}

// SeedBus records a bus boarding observation.
func (r *MockRepository) SeedBus(routeID string, hour int, mean float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bus[busKey(routeID, hour)] = mean
}

// SubwayCongestion looks up a seeded subway observation.
func (r *MockRepository) SubwayCongestion(ctx context.Context, station string, dayType int, hhmm string) (float64, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pct, ok := r.subway[subwayKey(station, dayType, hhmm)]
	return pct, ok, nil
}

// BusBoardings looks up a seeded bus observation.
func (r *MockRepository) BusBoardings(ctx context.Context, routeID string, hour int) (float64, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	mean, ok := r.bus[busKey(routeID, hour)]
	return mean, ok, nil
}

// LoadPreferences returns the stored preferences, defaults when unset.
func (r *MockRepository) LoadPreferences(ctx context.Context) domain.Preferences {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.prefs == nil {
		return domain.DefaultPreferences()
	}
	return r.prefs.Clone()
}

// SavePreferences replaces the stored preferences.
func (r *MockRepository) SavePreferences(ctx context.Context, prefs domain.Preferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := prefs.Clone()
	r.prefs = &p
	return nil
}

// AppendTrip records a trip event in memory.
func (r *MockRepository) AppendTrip(ctx context.Context, ev domain.TripEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trips = append(r.trips, ev)
	return nil
}

// Trips returns the recorded trip events.
func (r *MockRepository) Trips() []domain.TripEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.TripEvent, len(r.trips))
	copy(out, r.trips)
	return out
}

// Health always returns nil in mock mode
func (r *MockRepository) Health(ctx context.Context) error {
	return nil
}

func subwayKey(station string, dayType int, hhmm string) string {
	return fmt.Sprintf("%s|%d|%s", station, dayType, hhmm)
}

func busKey(routeID string, hour int) string {
	return fmt.Sprintf("%s|%d", routeID, hour)
}
