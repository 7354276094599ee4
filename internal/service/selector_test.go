package service

import (
	"testing"

	"github.com/citycommute/backend/internal/domain"
)

func candidate(mode domain.Mode, minutes float64, crowd int) domain.RouteCandidate {
	return domain.RouteCandidate{Segments: []domain.Segment{
		{Mode: mode, DurationMin: minutes, Crowd: crowd},
	}}
}

func TestSelectPicksMinimumScore(t *testing.T) {
	sel := NewSelector()
	candidates := []domain.RouteCandidate{
		candidate(domain.ModeSubway, 30, 1),
		candidate(domain.ModeBus, 12, 1),
		candidate(domain.ModeSubway, 20, 1),
	}

	idx, best := sel.Select(candidates, testPrefs())
	if idx != 2 {
		t.Fatalf("Select index = %d, want 2", idx)
	}
	if best.Segments[0].DurationMin != 12 {
		t.Fatalf("selected duration = %v, want 12", best.Segments[0].DurationMin)
	}
}

func TestSelectTieBreaksByOriginalOrder(t *testing.T) {
	sel := NewSelector()
	candidates := []domain.RouteCandidate{
		candidate(domain.ModeSubway, 30, 1),
		candidate(domain.ModeBus, 15, 1),
		candidate(domain.ModeSubway, 15, 1),
	}

	idx, _ := sel.Select(candidates, testPrefs())
	if idx != 2 {
		t.Fatalf("tied Select index = %d, want first-seen 2", idx)
	}
}

func TestSelectEmptyCandidates(t *testing.T) {
	sel := NewSelector()
	idx, best := sel.Select(nil, testPrefs())
	if idx != -1 {
		t.Fatalf("Select index = %d, want -1", idx)
	}
	if len(best.Segments) != 0 {
		t.Fatalf("Select returned %d segments, want empty", len(best.Segments))
	}
}

func TestSelectDoesNotMutateInputs(t *testing.T) {
	sel := NewSelector()
	candidates := []domain.RouteCandidate{
		candidate(domain.ModeBus, 12, 1),
		candidate(domain.ModeSubway, 30, 1),
	}
	prefs := testPrefs()
	prefs.ModeBias[domain.ModeBus] = 2

	sel.Select(candidates, prefs)

	if candidates[0].Segments[0].Mode != domain.ModeBus || candidates[1].Segments[0].DurationMin != 30 {
		t.Fatal("Select reordered or mutated the candidate slice")
	}
	if prefs.ModeBias[domain.ModeBus] != 2 || prefs.Runs != 0 {
		t.Fatal("Select mutated preferences")
	}
}

func TestSelectPrefersUncrowdedWithHighCrowdWeight(t *testing.T) {
	sel := NewSelector()
	candidates := []domain.RouteCandidate{
		candidate(domain.ModeSubway, 10, 4),
		candidate(domain.ModeSubway, 14, 1),
	}

	prefs := testPrefs()
	prefs.CrowdWeight = 0
	if idx, _ := sel.Select(candidates, prefs); idx != 1 {
		t.Fatalf("crowd_weight 0: index = %d, want 1 (faster wins)", idx)
	}

	prefs.CrowdWeight = 5
	if idx, _ := sel.Select(candidates, prefs); idx != 2 {
		t.Fatalf("crowd_weight 5: index = %d, want 2 (calmer wins)", idx)
	}
}
