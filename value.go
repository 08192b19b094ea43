package dtcalc

import (
	"math"
	"math/big"
	"time"
)

// Value is the result of evaluating an expression: an instant, a duration,
// or a dimensionless number.
type Value struct {
	dim Dim
	t   time.Time
	f   *big.Float
}

// Dim returns the dimension of the value.
func (v *Value) Dim() Dim {
	return v.dim
}

// Instant returns the value as an absolute point in time. Panics if the
// value is not an instant.
func (v *Value) Instant() time.Time {
	if v.dim != Instant {
		panic("dtcalc: Instant called on " + v.dim.String() + " value")
	}
	return v.t
}

// Seconds returns a copy of the duration's magnitude in seconds. Panics if
// the value is not a duration.
func (v *Value) Seconds() *big.Float {
	if v.dim != Duration {
		panic("dtcalc: Seconds called on " + v.dim.String() + " value")
	}
	return new(big.Float).Copy(v.f)
}

// Float returns a copy of the numeric value. Panics if the value is not a
// number.
func (v *Value) Float() *big.Float {
	if v.dim != Number {
		panic("dtcalc: Float called on " + v.dim.String() + " value")
	}
	return new(big.Float).Copy(v.f)
}

// String renders the value in the same form the expression grammar accepts:
// instants as ISO 8601 timestamps, durations as a magnitude with a unit
// code, and numbers in decimal notation.
func (v *Value) String() string {
	switch v.dim {
	case Instant:
		return v.t.Format(time.RFC3339Nano)
	case Duration:
		return formatSeconds(v.f)
	case Number:
		return v.f.Text('g', -1)
	}
	return "<invalid>"
}

// renderUnits are the unit factors tried for rendering, largest first.
// Seconds are the fallback, so they are not listed.
var renderUnits = []struct {
	code string
	secs int64
}{
	{"w", 604800},
	{"d", 86400},
	{"h", 3600},
	{"m", 60},
}

// formatSeconds renders a duration magnitude using the largest unit that
// divides it to an integer, falling back to a decimal number of seconds.
func formatSeconds(f *big.Float) string {
	sign := ""
	s := new(big.Float).Copy(f)
	if s.Signbit() {
		sign = "-"
		s.Neg(s)
	}
	if s.Sign() != 0 {
		for _, u := range renderUnits {
			q := new(big.Float).Quo(s, new(big.Float).SetInt64(u.secs))
			if q.IsInt() {
				return sign + q.Text('g', -1) + u.code
			}
		}
	}
	return sign + s.Text('g', -1) + "s"
}

// addSeconds offsets an instant by a magnitude of seconds. The arithmetic is
// on the absolute point in time, so the instant keeps its fixed offset. The
// second result is false when the offset is beyond the representable range
// of about 292 years, where Int64 saturates.
func addSeconds(t time.Time, f *big.Float) (time.Time, bool) {
	ns, _ := new(big.Float).Mul(f, big.NewFloat(1e9)).Int64()
	if ns == math.MaxInt64 || ns == math.MinInt64 {
		return time.Time{}, false
	}
	return t.Add(time.Duration(ns)), true
}

// subInstants sets dst to the number of seconds from b to a.
func subInstants(dst *big.Float, a, b time.Time) *big.Float {
	sec := new(big.Float).SetInt64(a.Unix() - b.Unix())
	ns := new(big.Float).SetInt64(int64(a.Nanosecond() - b.Nanosecond()))
	return dst.Add(sec, ns.Quo(ns, big.NewFloat(1e9)))
}
