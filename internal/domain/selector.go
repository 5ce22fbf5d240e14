package domain

// SelectRunway picks the runway end of an ordinary airport that best faces
// the wind.
//
// Calm wind returns the preferred runway with ReasonCalmFallback, and
// unbounded variable wind returns it with ReasonVariableFallback. Otherwise
// the end with the smallest angular difference to the wind (or to the
// midpoint of a bounded variable arc) wins; ties go to the first end in table
// order.
func SelectRunway(airport AirportConfig, wind WindObservation) (SelectionResult, error) {
	if len(airport.RunwayEnds) == 0 {
		return SelectionResult{}, &ConfigurationError{ICAO: airport.ICAO}
	}

	dir, ok := wind.EffectiveDirection()
	if !ok {
		reason := ReasonVariableFallback
		if wind.Calm {
			reason = ReasonCalmFallback
		}
		return singleRunway(airport.ICAO, airport.PreferredRunway, reason), nil
	}

	best := closestEnd(airport.RunwayEnds, dir)
	result := singleRunway(airport.ICAO, best.ID, ReasonWindOptimal)
	headwind, crosswind := WindComponents(best.Heading, dir, wind.SpeedKnots)
	result.Components = &Components{HeadwindKnots: headwind, CrosswindKnots: crosswind}
	return result, nil
}

// closestEnd returns the end whose heading is nearest the wind direction.
// ends must not be empty.
func closestEnd(ends []RunwayEnd, dir int) RunwayEnd {
	best := ends[0]
	bestDiff := HeadingDifference(best.Heading, dir)
	for _, e := range ends[1:] {
		if d := HeadingDifference(e.Heading, dir); d < bestDiff {
			best, bestDiff = e, d
		}
	}
	return best
}
