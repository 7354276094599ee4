package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/citycommute/backend/internal/domain"
	"github.com/citycommute/backend/pkg/utils"
)

// PlannerService runs the full recommendation flow: geocode the endpoints,
// fetch raw candidates, normalize them into segment sequences, score them
// against the rider's preferences and pick the best. When the provider
// yields nothing it synthesizes a straight-line walking route so the caller
// always gets something renderable.
type PlannerService struct {
	search   RouteSearcher
	geo      Geocoder
	segments *SegmentService
	selector Selector
	store    domain.PreferenceStore
	history  domain.HistoryStore
	events   TripPublisher
	metrics  Metrics
	logger   zerolog.Logger
	now      func() time.Time

	wgBg sync.WaitGroup // tracks background persistence for graceful shutdown
}

// NewPlannerService creates a planner. events may be nil when no publisher
// is configured.
func NewPlannerService(
	search RouteSearcher,
	geo Geocoder,
	segments *SegmentService,
	store domain.PreferenceStore,
	history domain.HistoryStore,
	events TripPublisher,
	logger zerolog.Logger,
	m Metrics,
) *PlannerService {
	return &PlannerService{
		search:   search,
		geo:      geo,
		segments: segments,
		selector: NewSelector(),
		store:    store,
		history:  history,
		events:   events,
		metrics:  m,
		logger:   logger.With().Str("component", "planner").Logger(),
		now:      time.Now,
	}
}

// Plan recommends one itinerary between two place queries. A non-nil
// override replaces the stored preferences wholesale for this call only,
// bias map included; it is never merged field-by-field and never persisted.
func (p *PlannerService) Plan(ctx context.Context, originQ, destQ string, override *domain.Preferences) (domain.PlanData, error) {
	origin, err := p.geo.Resolve(ctx, originQ)
	if err != nil {
		return domain.PlanData{}, fmt.Errorf("resolve origin %q: %w", originQ, err)
	}
	dest, err := p.geo.Resolve(ctx, destQ)
	if err != nil {
		return domain.PlanData{}, fmt.Errorf("resolve destination %q: %w", destQ, err)
	}

	prefs := p.effectivePrefs(ctx, override)
	now := p.now()

	raw, err := p.search.Search(ctx, origin, dest)
	if err != nil {
		// Provider trouble is not fatal: degrade to the walking fallback.
		p.logger.Warn().Err(err).Msg("route search failed, continuing without candidates")
		raw = nil
	}

	candidates := make([]domain.RouteCandidate, 0, len(raw))
	for _, it := range raw {
		segs := p.segments.Build(ctx, it.Legs, now)
		if len(segs) == 0 {
			continue
		}
		candidates = append(candidates, domain.RouteCandidate{Segments: segs})
	}

	if p.metrics != nil {
		p.metrics.PlanInc()
		p.metrics.CandidatesObserve(len(candidates))
	}

	idx, best := p.selector.Select(candidates, prefs)
	fallback := idx == -1
	if fallback {
		best = p.fallbackWalk(origin, dest)
	}
	score := p.selector.Score(best.Segments, prefs)
	if p.metrics != nil {
		p.metrics.SelectedScoreObserve(score)
	}

	p.logger.Info().
		Int("candidates", len(candidates)).
		Int("selected", idx).
		Bool("fallback", fallback).
		Float64("score", score).
		Msg("route selected")

	return domain.PlanData{
		Index:      idx,
		Segments:   best.Segments,
		Score:      score,
		TotalMin:   utils.RoundTo(best.TotalMinutes(), 1),
		Candidates: len(candidates),
		Fallback:   fallback,
	}, nil
}

// RecordTrip appends a confirmed trip to history and publishes the event.
// Persistence runs in the background so confirmation latency stays flat;
// WaitBackground drains it at shutdown.
func (p *PlannerService) RecordTrip(origin, dest string, route domain.RouteCandidate) domain.TripEvent {
	ev := domain.TripEvent{
		Timestamp: p.now(),
		Origin:    origin,
		Dest:      dest,
		TotalMin:  utils.RoundTo(route.TotalMinutes(), 1),
		Modes:     route.Modes(),
	}

	p.wgBg.Add(1)
	go func() {
		defer p.wgBg.Done()
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if p.history != nil {
			if err := p.history.AppendTrip(bgCtx, ev); err != nil {
				p.logger.Error().Err(err).Msg("failed to append trip history")
			}
		}
		if p.events != nil {
			if err := p.events.PublishTrip(ev); err != nil {
				p.logger.Error().Err(err).Msg("failed to publish trip event")
			}
		}
	}()

	return ev
}

// WaitBackground blocks until all background persistence goroutines complete.
// Call during graceful shutdown to avoid dropped writes.
func (p *PlannerService) WaitBackground() {
	p.wgBg.Wait()
}

// effectivePrefs snapshots the preferences for one scoring pass.
func (p *PlannerService) effectivePrefs(ctx context.Context, override *domain.Preferences) domain.Preferences {
	if override != nil {
		return override.Normalized()
	}
	return p.store.LoadPreferences(ctx).Normalized()
}

// fallbackWalk builds a single straight-line walking segment between two
// points using great-circle distance and the fixed walking speed.
func (p *PlannerService) fallbackWalk(origin, dest domain.LatLng) domain.RouteCandidate {
	dist := utils.HaversineM(origin.Lat, origin.Lng, dest.Lat, dest.Lng)
	return domain.RouteCandidate{Segments: []domain.Segment{{
		Mode:        domain.ModeWalk,
		Name:        "direct walk",
		DistanceM:   dist,
		DurationMin: utils.RoundTo(dist/(walkSpeedMPS*60), 2),
		Crowd:       CrowdMin,
		Poly:        []domain.LatLng{origin, dest},
	}}}
}
