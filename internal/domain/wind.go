package domain

const (
	// CalmThresholdKnots is the highest wind speed reported as calm.
	CalmThresholdKnots = 2

	// LowVisibilityMeters is the visibility below which automatic ENGM
	// configuration is withheld.
	LowVisibilityMeters = 1500

	// cavokMeters stands in for CAVOK and "9999" (10 km or more).
	cavokMeters = 10000

	knotsPerMPS          = 1.943844
	metersPerStatuteMile = 1609.344
)

// VariableRange is a bounded arc of wind direction, read clockwise From → To.
type VariableRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Midpoint returns the heading halfway along the arc, handling arcs that
// cross north (e.g. 340V020 → 360).
func (r VariableRange) Midpoint() int {
	span := NormalizeHeading(r.To - r.From)
	mid := NormalizeHeading(r.From + span/2)
	if mid == 0 {
		return 360
	}
	return mid
}

// WindObservation is the surface wind read from a METAR.
//
// Exactly one of Calm, Variable, or a non-nil Direction describes the
// direction state; Calm wins over Variable.
type WindObservation struct {
	Direction  *int           `json:"direction,omitempty"`
	SpeedKnots int            `json:"speed_kt"`
	GustKnots  *int           `json:"gust_kt,omitempty"`
	Calm       bool           `json:"calm,omitempty"`
	Variable   bool           `json:"variable,omitempty"`
	Range      *VariableRange `json:"range,omitempty"`
}

// Steady reports whether the wind has a single confident direction.
func (w WindObservation) Steady() bool {
	return !w.Calm && !w.Variable && w.Direction != nil
}

// EffectiveDirection returns the heading used for runway geometry: the
// reported direction for a steady wind, the arc midpoint for a bounded
// variable wind. ok is false for calm and unbounded variable winds.
func (w WindObservation) EffectiveDirection() (int, bool) {
	switch {
	case w.Calm:
		return 0, false
	case w.Variable && w.Range != nil:
		return w.Range.Midpoint(), true
	case w.Variable:
		return 0, false
	case w.Direction != nil:
		return *w.Direction, true
	default:
		return 0, false
	}
}

// VisibilityObservation is the prevailing visibility read from a METAR.
type VisibilityObservation struct {
	Meters *int `json:"meters,omitempty"` // nil when not reported
	Fog    bool `json:"fog,omitempty"`
}

// Low reports whether visibility is below LowVisibilityMeters or fog is
// present. Unknown visibility is not low.
func (v VisibilityObservation) Low() bool {
	if v.Fog {
		return true
	}
	return v.Meters != nil && *v.Meters < LowVisibilityMeters
}
