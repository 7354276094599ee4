package service

import (
	"sort"

	"github.com/citycommute/backend/internal/domain"
)

// Selector picks the minimum-cost candidate. It never mutates its inputs and
// never fabricates routes; an empty candidate set yields (-1, empty).
type Selector struct {
	scorer Scorer
}

// NewSelector creates a route selector.
func NewSelector() Selector {
	return Selector{}
}

// Select scores every candidate and returns the 1-based index and the
// candidate with the lowest score. Ties are broken by original order: the
// first-seen candidate with the minimal score wins.
func (s Selector) Select(candidates []domain.RouteCandidate, prefs domain.Preferences) (int, domain.RouteCandidate) {
	if len(candidates) == 0 {
		return -1, domain.RouteCandidate{}
	}

	type scored struct {
		score float64
		index int // 1-based original position
	}
	ranked := make([]scored, len(candidates))
	for i, c := range candidates {
		ranked[i] = scored{score: s.scorer.Score(c.Segments, prefs), index: i + 1}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score < ranked[j].score
	})

	best := ranked[0]
	return best.index, candidates[best.index-1]
}

// Score exposes the underlying scorer for callers that need per-candidate
// costs (debug listings, response summaries).
func (s Selector) Score(segs []domain.Segment, prefs domain.Preferences) float64 {
	return s.scorer.Score(segs, prefs)
}
