package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/citycommute/backend/internal/domain"
)

// PostgresRepository implements domain.DataRepository
type PostgresRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool, logger zerolog.Logger) *PostgresRepository {
	return &PostgresRepository{
		pool:   pool,
		logger: logger.With().Str("component", "postgres").Logger(),
	}
}

// SubwayCongestion returns the mean observed congestion percentage for a
// station, day-type code and half-hour bucket.
func (r *PostgresRepository) SubwayCongestion(ctx context.Context, station string, dayType int, hhmm string) (float64, bool, error) {
	query := `
		SELECT AVG(congest_pct)
		FROM subway_crowd
		WHERE station_nm = $1 AND day_code = $2 AND hhmm = $3
	`

	var pct *float64
	if err := r.pool.QueryRow(ctx, query, station, dayType, hhmm).Scan(&pct); err != nil {
		return 0, false, fmt.Errorf("postgres: failed to query subway crowd: %w", err)
	}
	if pct == nil {
		return 0, false, nil
	}
	return *pct, true, nil
}

// BusBoardings returns the mean boarding count for a route at an hour.
func (r *PostgresRepository) BusBoardings(ctx context.Context, routeID string, hour int) (float64, bool, error) {
	query := `
		SELECT AVG(board_num)
		FROM bus_crowd
		WHERE route_id = $1 AND hh = $2
	`

	var mean *float64
	if err := r.pool.QueryRow(ctx, query, routeID, hour).Scan(&mean); err != nil {
		return 0, false, fmt.Errorf("postgres: failed to query bus crowd: %w", err)
	}
	if mean == nil {
		return 0, false, nil
	}
	return *mean, true, nil
}

// LoadPreferences returns the stored preferences document merged over
// schema defaults. A missing or unreadable row degrades to defaults and is
// never surfaced as an error.
func (r *PostgresRepository) LoadPreferences(ctx context.Context) domain.Preferences {
	var doc []byte
	err := r.pool.QueryRow(ctx, `SELECT doc FROM preferences WHERE id = 1`).Scan(&doc)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn().Err(err).Msg("failed to load preferences, using defaults")
		}
		return domain.DefaultPreferences()
	}
	return domain.PreferencesFromJSON(doc)
}

// SavePreferences upserts the single preferences row.
func (r *PostgresRepository) SavePreferences(ctx context.Context, prefs domain.Preferences) error {
	doc, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("postgres: failed to marshal preferences: %w", err)
	}

	query := `
		INSERT INTO preferences (id, doc, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()
	`
	if _, err := r.pool.Exec(ctx, query, doc); err != nil {
		return fmt.Errorf("postgres: failed to save preferences: %w", err)
	}
	return nil
}

// AppendTrip appends a confirmed-trip event to the history table.
func (r *PostgresRepository) AppendTrip(ctx context.Context, ev domain.TripEvent) error {
	modes := make([]string, len(ev.Modes))
	for i, m := range ev.Modes {
		modes[i] = string(m)
	}

	query := `
		INSERT INTO trip_history (ts, origin, dest, total_min, modes)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.pool.Exec(ctx, query, ev.Timestamp, ev.Origin, ev.Dest, ev.TotalMin, modes); err != nil {
		return fmt.Errorf("postgres: failed to append trip: %w", err)
	}
	return nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}
