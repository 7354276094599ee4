package domain

import (
	"context"
)

// CrowdRepository exposes historical congestion observations. Implementations
// report ok=false when no observation exists for the key; errors are reserved
// for storage-level failures and callers are expected to degrade, not fail.
type CrowdRepository interface {
	// SubwayCongestion returns the mean observed congestion percentage for a
	// station at a day-type code (1=weekday, 2=Saturday, 3=Sunday) and a
	// half-hour bucket ("HHMM", minutes 00 or 30).
	SubwayCongestion(ctx context.Context, station string, dayType int, hhmm string) (pct float64, ok bool, err error)

	// BusBoardings returns the mean boarding count for a route at an hour.
	BusBoardings(ctx context.Context, routeID string, hour int) (mean float64, ok bool, err error)
}

// PreferenceStore persists the rider's durable preferences.
type PreferenceStore interface {
	// LoadPreferences returns the stored preferences, or schema defaults when
	// nothing readable is stored. It never fails.
	LoadPreferences(ctx context.Context) Preferences

	// SavePreferences replaces the stored preferences.
	SavePreferences(ctx context.Context, prefs Preferences) error
}

// HistoryStore appends confirmed-trip events.
type HistoryStore interface {
	AppendTrip(ctx context.Context, ev TripEvent) error
}

// DataRepository is the full persistence surface, implemented by the
// postgres repository and its in-memory mock.
type DataRepository interface {
	CrowdRepository
	PreferenceStore
	HistoryStore

	// Health checks storage connectivity.
	Health(ctx context.Context) error
}
