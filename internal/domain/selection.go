package domain

import "time"

// Reason is why a runway configuration was chosen.
type Reason string

const (
	ReasonWindOptimal      Reason = "wind-optimal"
	ReasonCalmFallback     Reason = "calm-fallback"
	ReasonVariableFallback Reason = "variable-fallback"
	ReasonOperatorChoice   Reason = "operator-choice"
)

// Mode is an ENGM operating mode. Ordinary airports have no mode.
type Mode string

const (
	ModeMixed      Mode = "MPO"
	ModeSegregated Mode = "SPO"
	ModeSingle     Mode = "SRO"
)

// Components is the wind split along and across the chosen runway end.
type Components struct {
	HeadwindKnots  float64 `json:"headwind_kt"`
	CrosswindKnots float64 `json:"crosswind_kt"`
}

// SelectionResult is the runway configuration decided for one airport.
type SelectionResult struct {
	ICAO        string      `json:"icao"`
	Active      []string    `json:"active"`
	Departures  []string    `json:"departures"`
	Arrivals    []string    `json:"arrivals"`
	Mode        Mode        `json:"mode,omitempty"`
	Orientation string      `json:"orientation,omitempty"`
	Reason      Reason      `json:"reason"`
	Components  *Components `json:"components,omitempty"`
}

// Decision is a SelectionResult together with the report it was derived from
// and the time it was made. It is what the sinks persist.
type Decision struct {
	SelectionResult
	METAR     string    `json:"metar"`
	DecidedAt time.Time `json:"decided_at"`
}

// NewDecision stamps a result with the current time.
func NewDecision(result SelectionResult, metar string) Decision {
	return Decision{SelectionResult: result, METAR: metar, DecidedAt: now()}
}

func singleRunway(icao, id string, reason Reason) SelectionResult {
	return SelectionResult{
		ICAO:       icao,
		Active:     []string{id},
		Departures: []string{id},
		Arrivals:   []string{id},
		Reason:     reason,
	}
}
