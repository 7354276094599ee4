package service

import (
	"github.com/citycommute/backend/internal/domain"
)

// Penalty constants. OverCrowdPenalty is applied per segment whose crowd
// level exceeds the rider's comfort cap; WalkBudgetPenalty is applied once
// per route when total walking minutes exceed the budget.
const (
	OverCrowdPenalty  = 1000.0
	WalkBudgetPenalty = 999.0
)

// Scorer computes the personalized cost of a segment sequence. Lower is
// better. Score is a pure function: no I/O, no clock, no mutation of its
// inputs.
type Scorer struct{}

// Score accumulates cost over segments in order: pure travel time, minus the
// per-mode bias, plus crowd_weight*(crowd-1), plus the over-crowd penalty
// per offending segment, plus the walk-budget penalty once when the summed
// WALK minutes exceed the limit.
//
// The preferences passed in are used as-is: a session override is a full
// value replacement, including the whole bias map, never a per-key merge.
func (Scorer) Score(segs []domain.Segment, prefs domain.Preferences) float64 {
	var cost, walkMin float64
	for _, s := range segs {
		if s.Mode == domain.ModeWalk {
			walkMin += s.DurationMin
		}
		cost += s.DurationMin
		cost -= prefs.Bias(s.Mode)
		cost += prefs.CrowdWeight * float64(s.Crowd-1)
		if s.Crowd > prefs.MaxCrowd {
			cost += OverCrowdPenalty
		}
	}
	if walkMin > prefs.WalkLimitMin {
		cost += WalkBudgetPenalty
	}
	return cost
}
