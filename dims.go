package dtcalc

import "strconv"

// Dim classifies an evaluated value as an absolute point in time, a span of
// time, or a dimensionless number.
type Dim int8

const (
	dimNone Dim = iota
	// Instant is an absolute point in time, optionally offset-aware.
	Instant
	// Duration is a signed span of time, held as total seconds.
	Duration
	// Number is a dimensionless real quantity.
	Number
)

func (d Dim) String() string {
	switch d {
	case Instant:
		return "instant"
	case Duration:
		return "duration"
	case Number:
		return "number"
	}
	return "Dim(" + strconv.Itoa(int(d)) + ")"
}

// opKey identifies one cell of the operator dimension table.
type opKey struct {
	op   nodeKind
	l, r Dim
}

// binDims lists every legal combination of binary operator and operand
// dimensions with its result dimension. A combination absent from the table
// is a DimensionError.
var binDims = map[opKey]Dim{
	{nodeAdd, Instant, Duration}:  Instant,
	{nodeAdd, Duration, Instant}:  Instant,
	{nodeAdd, Duration, Duration}: Duration,
	{nodeAdd, Number, Number}:     Number,

	{nodeSub, Instant, Duration}:  Instant,
	{nodeSub, Instant, Instant}:   Duration,
	{nodeSub, Duration, Duration}: Duration,
	{nodeSub, Number, Number}:     Number,

	{nodeMul, Number, Duration}: Duration,
	{nodeMul, Duration, Number}: Duration,
	{nodeMul, Number, Number}:   Number,

	{nodeDiv, Duration, Duration}: Number,
	{nodeDiv, Duration, Number}:   Duration,
	{nodeDiv, Number, Number}:     Number,
}
