package domain

import (
	"math"
	"strconv"
	"strings"
)

// NormalizeHeading maps any integer heading into [0, 360).
func NormalizeHeading(h int) int {
	h %= 360
	if h < 0 {
		h += 360
	}
	return h
}

// HeadingDifference returns the smaller angle between two headings, in [0, 180].
// It is symmetric in its arguments.
func HeadingDifference(a, b int) int {
	d := NormalizeHeading(a - b)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// WindComponents splits a wind into headwind and crosswind components
// relative to a runway heading. Headwind is negative for a tailwind;
// crosswind is always non-negative.
func WindComponents(runwayHeading, windDirection, speedKnots int) (headwind, crosswind float64) {
	delta := float64(windDirection-runwayHeading) * math.Pi / 180
	headwind = float64(speedKnots) * math.Cos(delta)
	crosswind = math.Abs(float64(speedKnots) * math.Sin(delta))
	return headwind, crosswind
}

// OppositeRunwayID returns the identifier of the other end of a runway,
// e.g. "01L" → "19R", "18" → "36", "9" → "27". It returns "" for
// identifiers that are not runway designators.
func OppositeRunwayID(id string) string {
	num, side := splitRunwayID(id)
	v, err := strconv.Atoi(num)
	if err != nil || v < 1 || v > 36 {
		return ""
	}

	switch side {
	case "L":
		side = "R"
	case "R":
		side = "L"
	}

	opp := (v + 18) % 36
	if opp == 0 {
		opp = 36
	}
	return pad2(opp, len(num) == 2) + side
}

// runwayNumber returns the numeric part of a runway designator, or -1.
func runwayNumber(id string) int {
	num, _ := splitRunwayID(id)
	v, err := strconv.Atoi(num)
	if err != nil {
		return -1
	}
	return v
}

func splitRunwayID(id string) (num, side string) {
	id = strings.ToUpper(strings.TrimSpace(id))
	if id == "" {
		return "", ""
	}
	switch last := id[len(id)-1]; last {
	case 'L', 'R', 'C':
		return id[:len(id)-1], string(last)
	}
	return id, ""
}

func pad2(v int, pad bool) string {
	if pad && v < 10 {
		return "0" + strconv.Itoa(v)
	}
	return strconv.Itoa(v)
}
