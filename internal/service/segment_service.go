package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/citycommute/backend/internal/domain"
	"github.com/citycommute/backend/pkg/utils"
)

// SegmentService normalizes raw provider legs into Segments, consulting the
// crowd estimator per leg. Legs with an unsupported traffic type are dropped
// silently, preserving the order of the rest.
type SegmentService struct {
	crowd  *CrowdService
	logger zerolog.Logger
}

// NewSegmentService creates a new segment builder.
func NewSegmentService(crowd *CrowdService, logger zerolog.Logger) *SegmentService {
	return &SegmentService{
		crowd:  crowd,
		logger: logger.With().Str("component", "segments").Logger(),
	}
}

// Build converts one raw itinerary into an ordered segment sequence.
// Segment durations are pure travel time; bias and crowd surcharges are
// applied only by the scorer.
func (s *SegmentService) Build(ctx context.Context, legs []domain.RawLeg, at time.Time) []domain.Segment {
	segs := make([]domain.Segment, 0, len(legs))
	for _, leg := range legs {
		switch leg.TrafficType {
		case domain.TrafficSubway:
			level := s.crowd.SubwayLevel(ctx, leg.StartName, at)
			segs = append(segs, domain.Segment{
				Mode:        domain.ModeSubway,
				Name:        leg.LaneName,
				DistanceM:   leg.DistanceM,
				DurationMin: utils.RoundTo(leg.SectionMin, 2),
				Crowd:       level,
				BestCar:     s.crowd.BestCar(level),
				Poly:        leg.Stops,
			})
		case domain.TrafficBus:
			segs = append(segs, domain.Segment{
				Mode:        domain.ModeBus,
				Name:        leg.LaneName,
				DistanceM:   leg.DistanceM,
				DurationMin: utils.RoundTo(leg.SectionMin, 2),
				Crowd:       s.crowd.BusLevel(ctx, leg.RouteID, at),
				Poly:        leg.Stops,
			})
		case domain.TrafficWalk:
			segs = append(segs, domain.Segment{
				Mode:        domain.ModeWalk,
				Name:        "walk",
				DistanceM:   leg.DistanceM,
				DurationMin: utils.RoundTo(leg.DistanceM/walkSpeedMPS/60, 2),
				Crowd:       CrowdMin,
				Poly:        leg.Stops,
			})
		default:
			s.logger.Debug().Int("traffic_type", leg.TrafficType).Msg("dropping unsupported leg")
		}
	}
	return segs
}
