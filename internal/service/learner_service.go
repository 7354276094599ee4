package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/citycommute/backend/internal/domain"
	"github.com/citycommute/backend/pkg/utils"
)

// LearnerService nudges the stored mode biases toward the modes a rider
// actually used. The rule is a deliberately simple asymmetric nudge: +rate
// for every used mode, -rate/2 for every unused one, so a single incidental
// walking leg does not crater the subway or bus bias. Biases are clamped to
// [BiasMin, BiasMax] after every update.
type LearnerService struct {
	store  domain.PreferenceStore
	rate   float64
	logger zerolog.Logger

	// mu serializes the load-modify-save cycle. Two interleaved updates from
	// a stale read would silently lose one of them.
	mu      sync.Mutex
	metrics Metrics
}

// NewLearnerService creates a preference learner with the given learning rate.
func NewLearnerService(store domain.PreferenceStore, rate float64, logger zerolog.Logger, m Metrics) *LearnerService {
	if rate <= 0 {
		rate = 0.5
	}
	return &LearnerService{
		store:   store,
		rate:    rate,
		logger:  logger.With().Str("component", "learner").Logger(),
		metrics: m,
	}
}

// Learn applies one learning update from the segment sequence the rider
// confirmed, persists the result, and returns the updated preferences.
// The update itself always succeeds; the only failure mode is persistence,
// which is surfaced to the caller.
func (l *LearnerService) Learn(ctx context.Context, chosen []domain.Segment) (domain.Preferences, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	prefs := l.store.LoadPreferences(ctx).Normalized()

	used := make(map[domain.Mode]bool, 3)
	for _, s := range chosen {
		used[s.Mode] = true
	}
	for _, m := range domain.AllModes() {
		if used[m] {
			prefs.ModeBias[m] += l.rate
		} else {
			prefs.ModeBias[m] -= l.rate / 2
		}
		prefs.ModeBias[m] = utils.Clamp(prefs.ModeBias[m], domain.BiasMin, domain.BiasMax)
	}
	prefs.Runs++

	if err := l.store.SavePreferences(ctx, prefs); err != nil {
		return domain.Preferences{}, fmt.Errorf("save preferences: %w", err)
	}

	if l.metrics != nil {
		l.metrics.LearnInc()
	}
	l.logger.Info().
		Int("runs", prefs.Runs).
		Float64("subway_bias", prefs.ModeBias[domain.ModeSubway]).
		Float64("bus_bias", prefs.ModeBias[domain.ModeBus]).
		Float64("walk_bias", prefs.ModeBias[domain.ModeWalk]).
		Msg("preferences updated")
	return prefs, nil
}
