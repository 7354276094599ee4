package domain

import "encoding/json"

// Bias clamp bounds applied after every learning update.
const (
	BiasMin = -10.0
	BiasMax = 10.0
)

// Preferences is the rider's persisted scoring configuration.
type Preferences struct {
	// CrowdWeight is the cost added per unit of (crowd level - 1).
	CrowdWeight float64 `json:"crowd_weight"`
	// MaxCrowd is the congestion level above which a segment is heavily
	// penalized. Valid range 1-4.
	MaxCrowd int `json:"max_crowd"`
	// WalkLimitMin is the total walking-minute budget for a whole route.
	WalkLimitMin float64 `json:"walk_limit_min"`
	// ModeBias is the signed per-mode preference, subtracted from cost.
	// Invariant: contains an entry for every Mode after Normalized().
	ModeBias map[Mode]float64 `json:"mode_bias"`
	// Runs counts applied learning updates. Observability only.
	Runs int `json:"runs"`
}

// DefaultPreferences returns the schema defaults used when no stored
// preferences exist.
func DefaultPreferences() Preferences {
	return Preferences{
		CrowdWeight:  2.0,
		MaxCrowd:     4,
		WalkLimitMin: 15,
		ModeBias: map[Mode]float64{
			ModeSubway: 0,
			ModeBus:    0,
			ModeWalk:   0,
		},
		Runs: 0,
	}
}

// Bias returns the bias for a mode, 0 when absent.
func (p Preferences) Bias(m Mode) float64 {
	return p.ModeBias[m]
}

// Clone returns a deep copy so callers can snapshot stored preferences
// without aliasing the bias map.
func (p Preferences) Clone() Preferences {
	out := p
	out.ModeBias = make(map[Mode]float64, len(p.ModeBias))
	for m, v := range p.ModeBias {
		out.ModeBias[m] = v
	}
	return out
}

// Normalized returns a copy with an entry for every supported mode,
// missing entries defaulting to 0.
func (p Preferences) Normalized() Preferences {
	out := p.Clone()
	for _, m := range AllModes() {
		if _, ok := out.ModeBias[m]; !ok {
			out.ModeBias[m] = 0
		}
	}
	return out
}

// prefsDoc is the on-disk/JSONB shape, including legacy fields written by
// earlier releases where bias was split into preference and penalty maps.
type prefsDoc struct {
	CrowdWeight  *float64         `json:"crowd_weight"`
	MaxCrowd     *int             `json:"max_crowd"`
	WalkLimitMin *float64         `json:"walk_limit_min"`
	ModeBias     map[Mode]float64 `json:"mode_bias"`
	Runs         *int             `json:"runs"`

	// Legacy: mode_bias = mode_preference - mode_penalty.
	ModePenalty    map[Mode]float64 `json:"mode_penalty"`
	ModePreference map[Mode]float64 `json:"mode_preference"`
}

// PreferencesFromJSON decodes a stored preferences document, merging it
// over the schema defaults and migrating legacy bias fields. It never
// fails: corrupt or partial input degrades to defaults for the unreadable
// fields.
func PreferencesFromJSON(data []byte) Preferences {
	p := DefaultPreferences()
	if len(data) == 0 {
		return p
	}
	var doc prefsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return p
	}
	if doc.CrowdWeight != nil && *doc.CrowdWeight >= 0 {
		p.CrowdWeight = *doc.CrowdWeight
	}
	if doc.MaxCrowd != nil && *doc.MaxCrowd >= 1 && *doc.MaxCrowd <= 4 {
		p.MaxCrowd = *doc.MaxCrowd
	}
	if doc.WalkLimitMin != nil && *doc.WalkLimitMin >= 0 {
		p.WalkLimitMin = *doc.WalkLimitMin
	}
	if doc.Runs != nil && *doc.Runs >= 0 {
		p.Runs = *doc.Runs
	}
	switch {
	case doc.ModeBias != nil:
		p.ModeBias = doc.ModeBias
	case doc.ModePenalty != nil || doc.ModePreference != nil:
		bias := make(map[Mode]float64, 3)
		for _, m := range AllModes() {
			bias[m] = doc.ModePreference[m] - doc.ModePenalty[m]
		}
		p.ModeBias = bias
	}
	return p.Normalized()
}
