package domain

import (
	"context"
	"errors"
	"log/slog"
	"slices"
)

// ENGM is Oslo Gardermoen, the one airport resolved with operating modes.
const ENGM = "ENGM"

// ErrOperatorUnavailable is returned when ENGM needs an operator choice and no
// prompter is configured.
var ErrOperatorUnavailable = errors.New("operator choice required but no operator prompt is available")

// ModeState is a step of ENGM configuration resolution.
type ModeState string

const (
	StateEvaluatingWind         ModeState = "EvaluatingWind"
	StateOrientationDecided     ModeState = "OrientationDecided"
	StateAutoModeSelected       ModeState = "AutoModeSelected"
	StateAwaitingOperatorChoice ModeState = "AwaitingOperatorChoice"
	StateResolved               ModeState = "Resolved"
)

// ENGMOption is one of the six configurations an operator can pick.
type ENGMOption struct {
	Number      int
	Label       string
	Orientation string
	Mode        Mode
}

var engmOptions = [...]ENGMOption{
	{Number: 1, Label: "19 MPO", Orientation: "19", Mode: ModeMixed},
	{Number: 2, Label: "01 MPO", Orientation: "01", Mode: ModeMixed},
	{Number: 3, Label: "19 Segregated (19L Departures, 19R Arrivals)", Orientation: "19", Mode: ModeSegregated},
	{Number: 4, Label: "01 Segregated (01L Departures, 01R Arrivals)", Orientation: "01", Mode: ModeSegregated},
	{Number: 5, Label: "19 Single (19R only)", Orientation: "19", Mode: ModeSingle},
	{Number: 6, Label: "01 Single (01L only)", Orientation: "01", Mode: ModeSingle},
}

// ENGMOptions returns the six operator configurations in prompt order.
func ENGMOptions() []ENGMOption {
	return engmOptions[:]
}

// OperatorRequest is what the operator is shown when ENGM cannot be
// configured automatically.
type OperatorRequest struct {
	ICAO                 string
	METAR                string
	Cause                string
	SuggestedOrientation string
	Options              []ENGMOption
	Attempt              int
}

// OperatorPrompter asks a human to pick an ENGM configuration and returns the
// option number. It returns an error wrapping ErrInvalidOperatorInput for a
// response that is not a number.
type OperatorPrompter interface {
	ChooseConfiguration(ctx context.Context, req OperatorRequest) (int, error)
}

// ModeResolution is the outcome of ENGM resolution and the states it passed
// through.
type ModeResolution struct {
	Result SelectionResult
	Path   []ModeState
}

// Took reports whether resolution passed through state s.
func (r ModeResolution) Took(s ModeState) bool {
	return slices.Contains(r.Path, s)
}

// ModeResolver decides the ENGM orientation and operating mode. It is
// recomputed every cycle and keeps no state between calls.
type ModeResolver struct {
	prompter OperatorPrompter
	logger   *slog.Logger
}

// NewModeResolver creates a ModeResolver. A nil prompter makes every
// operator-choice situation fail with ErrOperatorUnavailable.
func NewModeResolver(prompter OperatorPrompter, logger *slog.Logger) *ModeResolver {
	return &ModeResolver{prompter: prompter, logger: logger}
}

// Resolve selects the ENGM configuration for one observation.
//
// A steady wind in good visibility selects mixed operations in the headwind
// orientation. Calm or variable wind, or low visibility, asks the operator,
// repeating the question until a valid option number is given.
func (r *ModeResolver) Resolve(ctx context.Context, airport AirportConfig, obs Observation) (ModeResolution, error) {
	res := ModeResolution{Path: []ModeState{StateEvaluatingWind}}

	orientation, err := decideOrientation(airport, obs.Wind)
	if err != nil {
		return res, err
	}
	res.Path = append(res.Path, StateOrientationDecided)

	cause := uncertainty(obs)
	if cause == "" {
		res.Path = append(res.Path, StateAutoModeSelected, StateResolved)
		res.Result = engmConfiguration(airport.ICAO, orientation, ModeMixed, ReasonWindOptimal)
		dir := *obs.Wind.Direction
		headwind, crosswind := WindComponents(orientationHeading(airport, orientation), dir, obs.Wind.SpeedKnots)
		res.Result.Components = &Components{HeadwindKnots: headwind, CrosswindKnots: crosswind}
		return res, nil
	}

	res.Path = append(res.Path, StateAwaitingOperatorChoice)
	opt, err := r.askOperator(ctx, OperatorRequest{
		ICAO:                 airport.ICAO,
		METAR:                obs.Raw,
		Cause:                cause,
		SuggestedOrientation: orientation,
		Options:              ENGMOptions(),
	})
	if err != nil {
		return res, err
	}
	res.Path = append(res.Path, StateResolved)
	res.Result = engmConfiguration(airport.ICAO, opt.Orientation, opt.Mode, ReasonOperatorChoice)
	return res, nil
}

func (r *ModeResolver) askOperator(ctx context.Context, req OperatorRequest) (ENGMOption, error) {
	if r.prompter == nil {
		return ENGMOption{}, ErrOperatorUnavailable
	}
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return ENGMOption{}, err
		}
		req.Attempt = attempt
		n, err := r.prompter.ChooseConfiguration(ctx, req)
		if errors.Is(err, ErrInvalidOperatorInput) {
			r.logger.Warn("invalid operator input, asking again", "icao", req.ICAO, "error", err)
			continue
		}
		if err != nil {
			return ENGMOption{}, &OperatorError{ICAO: req.ICAO, Err: err}
		}
		if n < 1 || n > len(engmOptions) {
			r.logger.Warn("operator choice out of range, asking again", "icao", req.ICAO, "choice", n)
			continue
		}
		return engmOptions[n-1], nil
	}
}

// uncertainty returns why automatic selection is not trusted, or "".
func uncertainty(obs Observation) string {
	switch {
	case obs.Wind.Calm:
		return "calm wind"
	case obs.Wind.Variable:
		return "variable wind"
	case obs.Visibility.Low():
		return "low visibility"
	case !obs.Wind.Steady():
		return "no wind direction"
	}
	return ""
}

// decideOrientation compares the two ends of the dominant (first listed)
// runway against a steady wind. Ties and non-steady winds use the
// orientation of the preferred runway.
func decideOrientation(airport AirportConfig, wind WindObservation) (string, error) {
	if len(airport.Runways) == 0 {
		return "", &ConfigurationError{ICAO: airport.ICAO}
	}
	fallback := orientationOf(airport.PreferredRunway)
	if !wind.Steady() {
		return fallback, nil
	}

	dir := *wind.Direction
	a, b := airport.Runways[0].Ends[0], airport.Runways[0].Ends[1]
	da, db := HeadingDifference(a.Heading, dir), HeadingDifference(b.Heading, dir)
	switch {
	case da < db:
		return orientationOf(a.ID), nil
	case db < da:
		return orientationOf(b.ID), nil
	default:
		return fallback, nil
	}
}

// orientationHeading returns the heading of the dominant runway end facing
// the given orientation.
func orientationHeading(airport AirportConfig, orientation string) int {
	for _, e := range airport.Runways[0].Ends {
		if orientationOf(e.ID) == orientation {
			return e.Heading
		}
	}
	return airport.Runways[0].Ends[0].Heading
}

func orientationOf(id string) string {
	num, _ := splitRunwayID(id)
	return num
}

// singleRunwayOps is the runway used in single runway operations for each
// orientation.
var singleRunwayOps = map[string]string{"19": "19R", "01": "01L"}

// engmConfiguration maps an orientation and mode onto runway assignments.
func engmConfiguration(icao, orientation string, mode Mode, reason Reason) SelectionResult {
	left, right := orientation+"L", orientation+"R"
	r := SelectionResult{
		ICAO:        icao,
		Mode:        mode,
		Orientation: orientation,
		Reason:      reason,
	}
	switch mode {
	case ModeMixed:
		r.Active = []string{left, right}
		r.Departures = []string{left, right}
		r.Arrivals = []string{left, right}
	case ModeSegregated:
		r.Active = []string{left, right}
		r.Departures = []string{left}
		r.Arrivals = []string{right}
	case ModeSingle:
		single, ok := singleRunwayOps[orientation]
		if !ok {
			single = right
		}
		r.Active = []string{single}
		r.Departures = []string{single}
		r.Arrivals = []string{single}
	}
	return r
}
