// Package domain selects active runways from METAR surface wind.
//
// # Data Source
//
// METAR reports come from the VATSIM METAR service as plain text, one report
// per line, the first token being the ICAO airport code. Only the wind,
// wind-variability, visibility, and present-weather groups are read; every
// other group (time, clouds, temperature, QNH, trends, remarks) is skipped.
//
// # METAR Conventions
//
// Wind group:
//
//	dddssKT       e.g. "19010KT"    → 190° at 10 kt
//	dddssGggKT    e.g. "24015G28KT" → 240° at 15 kt gusting 28 kt
//	VRBssKT       e.g. "VRB03KT"    → variable direction at 3 kt
//	00000KT                         → calm
//	dddssMPS      e.g. "09005MPS"   → metres per second, converted to knots
//
// Variable-direction group, directly after the wind group:
//
//	dddVddd       e.g. "180V240"    → direction varies clockwise from 180° to 240°
//
// Visibility group:
//
//	dddd          e.g. "9999"       → metres, 9999 meaning 10 km or more
//	CAVOK                           → 10 km or more
//	nSM, n/dSM    e.g. "1/2SM"      → statute miles, converted to metres
//
// Present weather "FG" or "FZFG" (fog, freezing fog) is treated as low
// visibility whatever the visibility group says.
//
// # Selection Policy
//
// Wind state is exactly one of calm, variable, or steady, with calm taking
// precedence. A steady wind selects the runway end with the smallest angular
// difference to the wind direction. A bounded variable arc is resolved through
// its midpoint. Calm and unbounded variable winds fall back to the airport's
// preferred runway.
//
// ENGM (Oslo Gardermoen) runs two parallel runways in one of three modes:
//
//	MPO  mixed parallel operations: both runways depart and land
//	SPO  segregated parallel operations: L departs, R lands
//	SRO  single runway operations: 19R or 01L only
//
// Steady wind in good visibility selects MPO in the headwind orientation.
// Calm, variable, or low-visibility conditions are handed to an operator, who
// picks one of six configurations.
package domain
