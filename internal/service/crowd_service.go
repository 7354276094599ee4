package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/citycommute/backend/internal/domain"
)

// Crowd level bounds.
const (
	CrowdMin = 1
	CrowdMax = 4
)

// Default level reported when no observation is available for a leg.
const defaultCrowdLevel = 2

// CrowdService estimates a discretized congestion level (1-4) for a transit
// leg from historical observations, and suggests a subway car. Every lookup
// failure degrades to the default level; this service never returns an error
// to its callers.
type CrowdService struct {
	repo   domain.CrowdRepository
	logger zerolog.Logger

	// rng backs the best-car advisory. Seeded for reproducibility and
	// injectable via NewCrowdServiceWithRand.
	rng     *rand.Rand
	rngMu   sync.Mutex
	metrics Metrics
}

// NewCrowdService creates a crowd estimator with a fixed-seed random source,
// so advisory output is reproducible by default.
func NewCrowdService(repo domain.CrowdRepository, logger zerolog.Logger, m Metrics) *CrowdService {
	return NewCrowdServiceWithRand(repo, rand.New(rand.NewSource(42)), logger, m)
}

// NewCrowdServiceWithRand creates a crowd estimator with an injected random
// source for the best-car advisory.
func NewCrowdServiceWithRand(repo domain.CrowdRepository, rng *rand.Rand, logger zerolog.Logger, m Metrics) *CrowdService {
	return &CrowdService{
		repo:    repo,
		rng:     rng,
		logger:  logger.With().Str("component", "crowd").Logger(),
		metrics: m,
	}
}

// SubwayLevel returns the congestion level for a station at the given time.
func (s *CrowdService) SubwayLevel(ctx context.Context, station string, at time.Time) int {
	if s.repo == nil {
		return defaultCrowdLevel
	}
	pct, ok, err := s.repo.SubwayCongestion(ctx, station, dayType(at), halfHourBucket(at))
	if err != nil {
		s.logger.Warn().Err(err).Str("station", station).Msg("subway crowd lookup failed, using default level")
		s.miss()
		return defaultCrowdLevel
	}
	if !ok {
		s.miss()
		return defaultCrowdLevel
	}
	return pctToLevel(pct)
}

// BusLevel returns the congestion level for a bus route at the given time.
func (s *CrowdService) BusLevel(ctx context.Context, routeID string, at time.Time) int {
	if s.repo == nil || routeID == "" {
		return defaultCrowdLevel
	}
	mean, ok, err := s.repo.BusBoardings(ctx, routeID, at.Hour())
	if err != nil {
		s.logger.Warn().Err(err).Str("route", routeID).Msg("bus crowd lookup failed, using default level")
		s.miss()
		return defaultCrowdLevel
	}
	if !ok {
		s.miss()
		return defaultCrowdLevel
	}
	return boardingsToLevel(mean)
}

// BestCar suggests a subway car for the given congestion level. This is a
// heuristic, not a measurement: crowded trains tend to be emptiest at the
// ends, so higher levels push the suggestion toward an end car. Advisory
// only; there is no observed ground truth behind the exact choice.
func (s *CrowdService) BestCar(level int) *int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()

	var car int
	switch {
	case level >= 3:
		car = []int{1, 10}[s.rng.Intn(2)]
	case level == 2:
		car = []int{2, 9}[s.rng.Intn(2)]
	default:
		car = 1 + s.rng.Intn(10)
	}
	return &car
}

func (s *CrowdService) miss() {
	if s.metrics != nil {
		s.metrics.CrowdMissInc()
	}
}

// dayType maps a timestamp to the historical-data day-type code:
// 1=weekday, 2=Saturday, 3=Sunday.
func dayType(t time.Time) int {
	switch t.Weekday() {
	case time.Saturday:
		return 2
	case time.Sunday:
		return 3
	default:
		return 1
	}
}

// halfHourBucket rounds a timestamp down to ":00" or ":30" and formats it
// as "HHMM", matching the historical table key.
func halfHourBucket(t time.Time) string {
	min := 0
	if t.Minute() >= 30 {
		min = 30
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), min, 0, 0, t.Location()).Format("1504")
}

// pctToLevel discretizes a subway congestion percentage.
func pctToLevel(pct float64) int {
	switch {
	case pct < 70:
		return 1
	case pct < 100:
		return 2
	case pct < 150:
		return 3
	default:
		return 4
	}
}

// boardingsToLevel discretizes a mean bus boarding count.
func boardingsToLevel(mean float64) int {
	switch {
	case mean < 10:
		return 1
	case mean < 25:
		return 2
	case mean < 40:
		return 3
	default:
		return 4
	}
}
