package domain

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// RunwayEnd is one usable direction of a physical runway.
type RunwayEnd struct {
	ID      string `json:"id"`
	Heading int    `json:"heading"` // magnetic, the direction an aircraft faces
}

// PhysicalRunway is one strip of concrete with its two ends, as listed in the
// geometry file.
type PhysicalRunway struct {
	ICAO string
	Ends [2]RunwayEnd
}

// AirportConfig holds the runway geometry of one airport.
type AirportConfig struct {
	ICAO            string
	Runways         []PhysicalRunway
	RunwayEnds      []RunwayEnd // file order, unique IDs
	PreferredRunway string
}

// HasRunway reports whether id is one of the airport's runway ends.
func (a AirportConfig) HasRunway(id string) bool {
	return slices.ContainsFunc(a.RunwayEnds, func(e RunwayEnd) bool { return e.ID == id })
}

// GeometryTable is the read-only runway geometry of every configured airport.
// It is built once at start-up and never modified.
type GeometryTable struct {
	airports map[string]AirportConfig
}

// NewGeometryTable groups physical runways by airport and assigns each
// airport its preferred runway. Airports absent from preferred fall back to
// their lowest-numbered runway end.
func NewGeometryTable(runways []PhysicalRunway, preferred map[string]string) (*GeometryTable, error) {
	airports := make(map[string]AirportConfig)
	for _, rwy := range runways {
		icao := strings.ToUpper(strings.TrimSpace(rwy.ICAO))
		if icao == "" {
			return nil, fmt.Errorf("runway %s/%s: missing airport", rwy.Ends[0].ID, rwy.Ends[1].ID)
		}
		ap := airports[icao]
		ap.ICAO = icao
		for _, end := range rwy.Ends {
			if ap.HasRunway(end.ID) {
				return nil, fmt.Errorf("airport %s: duplicate runway end %s", icao, end.ID)
			}
			ap.RunwayEnds = append(ap.RunwayEnds, end)
		}
		rwy.ICAO = icao
		ap.Runways = append(ap.Runways, rwy)
		airports[icao] = ap
	}

	for icao, ap := range airports {
		if p, ok := preferred[icao]; ok && p != "" {
			ap.PreferredRunway = p
		} else {
			ap.PreferredRunway = lowestNumberedEnd(ap.RunwayEnds)
		}
		airports[icao] = ap
	}

	return &GeometryTable{airports: airports}, nil
}

// Lookup returns a copy of an airport's configuration, or a
// *ConfigurationError when the airport has no geometry.
func (t *GeometryTable) Lookup(icao string) (AirportConfig, error) {
	ap, ok := t.airports[icao]
	if !ok {
		return AirportConfig{}, &ConfigurationError{ICAO: icao}
	}
	ap.Runways = slices.Clone(ap.Runways)
	ap.RunwayEnds = slices.Clone(ap.RunwayEnds)
	return ap, nil
}

// Airports returns the configured ICAO codes in sorted order.
func (t *GeometryTable) Airports() []string {
	return slices.Sorted(maps.Keys(t.airports))
}

func lowestNumberedEnd(ends []RunwayEnd) string {
	best, bestNum := "", 0
	for _, e := range ends {
		n := runwayNumber(e.ID)
		if n < 0 {
			continue
		}
		if best == "" || n < bestNum {
			best, bestNum = e.ID, n
		}
	}
	if best == "" && len(ends) > 0 {
		return ends[0].ID
	}
	return best
}

// DefaultPreferredRunways returns the built-in fallback runway per airport,
// used when the wind is calm or fully variable.
func DefaultPreferredRunways() map[string]string {
	return map[string]string{
		"ENGM": "19R",
		"ENBR": "17",
		"ENTO": "18",
		"ENRY": "30",
		"ENZV": "18",
		"ENHD": "13",
		"ENAL": "24",
		"ENML": "07",
		"ENKB": "07",
		"ENVA": "09",
		"ENBO": "07",
		"ENTC": "18",
		"ENCN": "21",
		"ENRO": "31",
		"ENSG": "24",
		"ENFL": "07",
		"ENEV": "17",
		"ENDU": "28",
		"ENAT": "11",
		"ENNA": "34",
		"ENKR": "24",
		"ENSB": "09",
		"ENNO": "12",
		"ENSD": "26",
		"ENSO": "14",
		"ENMS": "33",
		"ENBN": "03",
		"ENST": "20",
		"ENRA": "31",
		"ENLK": "02",
		"ENSH": "36",
		"ENAN": "14",
		"ENOL": "15",
	}
}

// DefaultIgnoredAirports lists uncontrolled airports or airports without a
// METAR, which are never processed.
func DefaultIgnoredAirports() []string {
	return []string{"ENRE", "ENGK", "ENLI", "ENKJ", "ENHA", "ENEG", "ENJA", "ENBM", "ENAX"}
}
