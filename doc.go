// Package dtcalc implements a date and time arithmetic calculator.
//
// Expressions mix ISO 8601 timestamps, unit-suffixed durations, and plain
// numbers with the four arithmetic operators and parentheses:
//
//	2019-04-05T07:00:00Z + 4d
//	now + 5 * 4d + 3h
//	(deadline - now) / 1d
//
// Duration units are the fixed-length week, day, hour, minute, and second,
// written w, d, h, m, and s. Months and years vary in length and are not
// units.
//
// Every evaluated value carries a dimension: an instant, a duration, or a
// dimensionless number. Operations that make no dimensional sense, such as
// adding two instants or multiplying an instant by a number, fail with a
// DimensionError instead of producing a value.
//
// Identifiers name instants that are supplied at evaluation time, so an
// expression parses once and can be evaluated against many Contexts. The
// identifier "now" defaults to the current time when no binding is given.
package dtcalc
