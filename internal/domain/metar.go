package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// windRe matches the wind group: "19010KT", "24015G28KT", "VRB03KT", "09005MPS".
	windRe = regexp.MustCompile(`^(\d{3}|VRB)(\d{2,3})(?:G(\d{2,3}))?(KT|MPS)$`)

	// variableRe matches the variable-direction group, e.g. "180V240".
	variableRe = regexp.MustCompile(`^(\d{3})V(\d{3})$`)

	// visibilityRe matches metric prevailing visibility, e.g. "9999" or "0400NDV".
	visibilityRe = regexp.MustCompile(`^(\d{4})(?:NDV)?$`)

	// statuteMileRe matches "10SM", "P6SM", "M1/4SM", "1/2SM".
	statuteMileRe = regexp.MustCompile(`^[MP]?(?:(\d+)|(\d+)/(\d+))SM$`)

	// wholeMilesRe matches the whole-number half of a split group like "1 1/2SM".
	wholeMilesRe = regexp.MustCompile(`^\d{1,2}$`)
)

// endOfBody lists groups after which the report no longer describes
// current conditions.
var endOfBody = map[string]bool{
	"RMK":   true,
	"TEMPO": true,
	"BECMG": true,
}

// ExtractWind reads the wind and visibility groups from a raw METAR.
// Unrecognized groups are ignored; only a missing or malformed wind group
// is an error.
func ExtractWind(report string) (WindObservation, VisibilityObservation, error) {
	var (
		wind      WindObservation
		vis       VisibilityObservation
		foundWind bool
	)

	tokens := strings.Fields(report)
	for i := 0; i < len(tokens); i++ {
		tok := strings.TrimSuffix(tokens[i], "=")
		if endOfBody[tok] {
			break
		}

		if !foundWind {
			m := windRe.FindStringSubmatch(tok)
			if m == nil {
				continue
			}
			w, err := parseWindGroup(m)
			if err != nil {
				return WindObservation{}, VisibilityObservation{}, &ParseError{Report: report, Reason: err.Error()}
			}
			wind = w
			foundWind = true

			if i+1 < len(tokens) {
				if r, ok := parseVariableGroup(strings.TrimSuffix(tokens[i+1], "=")); ok {
					wind.Variable = true
					wind.Direction = nil
					wind.Range = &r
					i++
				}
			}
			continue
		}

		switch {
		case tok == "FG" || tok == "FZFG":
			vis.Fog = true
		case vis.Meters != nil:
		case tok == "CAVOK":
			vis.Meters = intPtr(cavokMeters)
		case wholeMilesRe.MatchString(tok) && i+1 < len(tokens):
			if m, ok := parseMixedMiles(tok, strings.TrimSuffix(tokens[i+1], "=")); ok {
				vis.Meters = &m
				i++
			}
		default:
			if m, ok := parseVisibility(tok); ok {
				vis.Meters = &m
			}
		}
	}

	if !foundWind {
		return WindObservation{}, VisibilityObservation{}, &ParseError{Report: report, Reason: "no wind group"}
	}

	if wind.SpeedKnots <= CalmThresholdKnots {
		wind.Calm = true
		wind.Variable = false
		wind.Direction = nil
		wind.Range = nil
	}
	return wind, vis, nil
}

func parseWindGroup(m []string) (WindObservation, error) {
	speed, err := strconv.Atoi(m[2])
	if err != nil {
		return WindObservation{}, err
	}
	mps := m[4] == "MPS"
	w := WindObservation{SpeedKnots: toKnots(speed, mps)}

	if m[3] != "" {
		gust, err := strconv.Atoi(m[3])
		if err != nil {
			return WindObservation{}, err
		}
		if gust < speed {
			return WindObservation{}, &gustError{speed: speed, gust: gust}
		}
		w.GustKnots = intPtr(toKnots(gust, mps))
	}

	if m[1] == "VRB" {
		w.Variable = true
		return w, nil
	}

	dir, err := strconv.Atoi(m[1])
	if err != nil {
		return WindObservation{}, err
	}
	if dir > 360 {
		return WindObservation{}, &directionRangeError{dir: dir}
	}
	w.Direction = &dir
	return w, nil
}

func parseVariableGroup(tok string) (VariableRange, bool) {
	m := variableRe.FindStringSubmatch(tok)
	if m == nil {
		return VariableRange{}, false
	}
	from, _ := strconv.Atoi(m[1])
	to, _ := strconv.Atoi(m[2])
	if from > 360 || to > 360 {
		return VariableRange{}, false
	}
	return VariableRange{From: from, To: to}, true
}

func parseVisibility(tok string) (int, bool) {
	if m := visibilityRe.FindStringSubmatch(tok); m != nil {
		v, _ := strconv.Atoi(m[1])
		if v == 9999 {
			v = cavokMeters
		}
		return v, true
	}

	m := statuteMileRe.FindStringSubmatch(tok)
	if m == nil {
		return 0, false
	}
	var miles float64
	if m[1] != "" {
		n, _ := strconv.Atoi(m[1])
		miles = float64(n)
	} else {
		num, _ := strconv.Atoi(m[2])
		den, _ := strconv.Atoi(m[3])
		if den == 0 {
			return 0, false
		}
		miles = float64(num) / float64(den)
	}
	return int(math.Round(miles * metersPerStatuteMile)), true
}

// parseMixedMiles joins a whole-mile token with a following fraction,
// e.g. "1" and "1/2SM" for 1.5 statute miles.
func parseMixedMiles(whole, frac string) (int, bool) {
	m := statuteMileRe.FindStringSubmatch(frac)
	if m == nil || m[2] == "" || strings.HasPrefix(frac, "M") || strings.HasPrefix(frac, "P") {
		return 0, false
	}
	n, _ := strconv.Atoi(whole)
	num, _ := strconv.Atoi(m[2])
	den, _ := strconv.Atoi(m[3])
	if den == 0 {
		return 0, false
	}
	miles := float64(n) + float64(num)/float64(den)
	return int(math.Round(miles * metersPerStatuteMile)), true
}

func toKnots(v int, mps bool) int {
	if !mps {
		return v
	}
	return int(math.Round(float64(v) * knotsPerMPS))
}

func intPtr(v int) *int { return &v }

type directionRangeError struct {
	dir int
}

func (e *directionRangeError) Error() string {
	return "wind direction " + strconv.Itoa(e.dir) + " out of range"
}

type gustError struct {
	speed, gust int
}

func (e *gustError) Error() string {
	return "gust " + strconv.Itoa(e.gust) + " below speed " + strconv.Itoa(e.speed)
}

// ReportICAO returns the station identifier of a METAR, skipping the
// optional "METAR"/"SPECI"/"COR" prefixes. It returns "" when the report
// does not start with a four-letter code.
func ReportICAO(report string) string {
	for _, tok := range strings.Fields(report) {
		switch tok {
		case "METAR", "SPECI", "COR":
			continue
		}
		if len(tok) == 4 && strings.ToUpper(tok) == tok {
			return tok
		}
		return ""
	}
	return ""
}

// Observation is the part of a METAR that runway selection depends on.
type Observation struct {
	ICAO       string
	Raw        string
	Wind       WindObservation
	Visibility VisibilityObservation
}

// ParseObservation extracts wind and visibility from a raw METAR.
func ParseObservation(report string) (Observation, error) {
	wind, vis, err := ExtractWind(report)
	if err != nil {
		return Observation{}, err
	}
	return Observation{
		ICAO:       ReportICAO(report),
		Raw:        report,
		Wind:       wind,
		Visibility: vis,
	}, nil
}
